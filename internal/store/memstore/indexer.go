package memstore

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/ngram"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

const trigramAnalyzer = "clip_trigram"

// Indexer is the in-memory full-text index over clip text. Without database
// triggers, every mutation path in MemoryStore calls it explicitly.
type Indexer struct {
	mu  sync.RWMutex
	idx bleve.Index
}

// NewIndexer creates an empty in-memory index.
func NewIndexer() (*Indexer, error) {
	idx, err := newBleveIndex()
	if err != nil {
		return nil, err
	}
	return &Indexer{idx: idx}, nil
}

func newBleveIndex() (bleve.Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return idx, nil
}

// buildIndexMapping indexes the whole text as lowercase character trigrams,
// the same substring semantics as the SQLite trigram tokenizer.
func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	if err := im.AddCustomTokenFilter("trigram_filter", map[string]interface{}{
		"type": ngram.Name,
		"min":  3.0,
		"max":  3.0,
	}); err != nil {
		panic(err)
	}
	if err := im.AddCustomAnalyzer(trigramAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name, "trigram_filter"},
	}); err != nil {
		panic(err)
	}

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = trigramAnalyzer
	textField.Store = false
	textField.IncludeInAll = false
	textField.IncludeTermVectors = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("text", textField)

	im.DefaultMapping = doc
	im.DefaultAnalyzer = trigramAnalyzer
	return im
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Index adds or replaces the text for a clip.
func (i *Indexer) Index(id int64, text string) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if err := i.idx.Index(docID(id), map[string]interface{}{"text": text}); err != nil {
		return fmt.Errorf("failed to index clip %d: %w", id, err)
	}
	return nil
}

// Remove drops a clip from the index.
func (i *Indexer) Remove(id int64) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if err := i.idx.Delete(docID(id)); err != nil {
		return fmt.Errorf("failed to unindex clip %d: %w", id, err)
	}
	return nil
}

// Search returns candidate clip ids with their scores. Trigram matching is
// a superset of substring matching, so callers confirm each candidate.
func (i *Indexer) Search(text string) (map[int64]float64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	count, err := i.idx.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to get doc count: %w", err)
	}
	if count == 0 {
		return map[int64]float64{}, nil
	}

	q := bleve.NewMatchQuery(text)
	q.SetField("text")
	q.Analyzer = trigramAnalyzer
	q.SetOperator(query.MatchQueryOperatorAnd)

	req := bleve.NewSearchRequestOptions(q, int(count), 0, false)
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	out := make(map[int64]float64, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		out[id] = hit.Score
	}
	return out, nil
}

// Has reports whether a clip id is present in the index.
func (i *Indexer) Has(id int64) (bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	doc, err := i.idx.Document(docID(id))
	if err != nil {
		return false, err
	}
	return doc != nil, nil
}

// Count returns the number of indexed clips.
func (i *Indexer) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.idx.DocCount()
}

// Rebuild replaces the index with one built from docs.
func (i *Indexer) Rebuild(docs map[int64]string) error {
	idx, err := newBleveIndex()
	if err != nil {
		return err
	}
	batch := idx.NewBatch()
	for id, text := range docs {
		if err := batch.Index(docID(id), map[string]interface{}{"text": text}); err != nil {
			idx.Close()
			return fmt.Errorf("failed to index clip %d: %w", id, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return fmt.Errorf("failed to batch index clips: %w", err)
	}

	i.mu.Lock()
	old := i.idx
	i.idx = idx
	i.mu.Unlock()
	return old.Close()
}

// Close releases the index.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.idx.Close()
}
