// Package memstore provides an in-memory implementation of the store interfaces.
// It backs unit tests and the demo, and keeps its full-text index in sync by
// calling an explicit Indexer from every mutation path.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/yiblet/clipvault/internal/store"
)

type pair [2]int64

// MemoryStore is an in-memory implementation of store.Store.
// All tables share one lock so cascades are atomic.
type MemoryStore struct {
	mu sync.RWMutex

	clips      map[int64]*store.Clip
	tags       map[int64]*store.Tag
	colls      map[int64]*store.Collection
	clipTags   map[pair]struct{}
	clipColls  map[pair]struct{}
	embeddings map[int64]*store.Embedding
	settings   map[string]string

	nextClip, nextTag, nextColl, nextEmb int64
	lastNow                              time.Time

	index *Indexer
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() (*MemoryStore, error) {
	idx, err := NewIndexer()
	if err != nil {
		return nil, err
	}
	return &MemoryStore{
		clips:      make(map[int64]*store.Clip),
		tags:       make(map[int64]*store.Tag),
		colls:      make(map[int64]*store.Collection),
		clipTags:   make(map[pair]struct{}),
		clipColls:  make(map[pair]struct{}),
		embeddings: make(map[int64]*store.Embedding),
		settings:   map[string]string{"history_limit": "1000"},
		nextClip:   1,
		nextTag:    1,
		nextColl:   1,
		nextEmb:    1,
		index:      idx,
	}, nil
}

// Clips returns the clip store.
func (m *MemoryStore) Clips() store.ClipStore { return (*memoryClipStore)(m) }

// Tags returns the tag store.
func (m *MemoryStore) Tags() store.TagStore { return (*memoryTagStore)(m) }

// Collections returns the collection store.
func (m *MemoryStore) Collections() store.CollectionStore { return (*memoryCollectionStore)(m) }

// Embeddings returns the embedding store.
func (m *MemoryStore) Embeddings() store.EmbeddingStore { return (*memoryEmbeddingStore)(m) }

// Config returns the settings store.
func (m *MemoryStore) Config() store.ConfigStore { return (*memoryConfigStore)(m) }

// Close releases the index.
func (m *MemoryStore) Close() error {
	return m.index.Close()
}

// now returns a strictly increasing UTC clock so recency order is stable
// even when captures land in the same tick. Callers hold mu.
func (m *MemoryStore) now() time.Time {
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(m.lastNow) {
		t = m.lastNow.Add(time.Microsecond)
	}
	m.lastNow = t
	return t
}

// memoryClipStore implements store.ClipStore.
type memoryClipStore MemoryStore

func (s *memoryClipStore) Capture(ctx context.Context, in *store.CaptureInput, policy store.DuplicatePolicy) (*store.CaptureResult, error) {
	if in == nil || !in.ContentType.Valid() {
		return nil, fmt.Errorf("failed to capture clip: %w", store.ErrInvalidInput)
	}
	hash := in.ContentHash
	if hash == "" {
		hash = store.HashContent(in)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m := (*MemoryStore)(s)

	ts := m.now()
	if !in.Timestamp.IsZero() {
		ts = in.Timestamp.UTC().Truncate(time.Microsecond)
	}

	if policy != store.DuplicateInsert {
		var existing *store.Clip
		for _, c := range s.clips {
			if c.ContentHash == hash && c.ContentType == in.ContentType && (existing == nil || newer(c, existing)) {
				existing = c
			}
		}
		if existing != nil {
			existing.UpdatedAt = ts
			existing.AccessCount++
			if in.AppName != "" {
				existing.AppName = in.AppName
			}
			return &store.CaptureResult{Clip: existing.Clone(), Duplicate: true}, nil
		}
	}

	c := &store.Clip{
		ID:           s.nextClip,
		ContentType:  in.ContentType,
		ContentText:  in.ContentText,
		ContentHTML:  in.ContentHTML,
		ContentRTF:   in.ContentRTF,
		ImagePath:    in.ImagePath,
		SVGPath:      in.SVGPath,
		PDFPath:      in.PDFPath,
		OfficePath:   in.OfficePath,
		DetectedType: in.DetectedType,
		Metadata:     in.Metadata,
		AppName:      in.AppName,
		ContentHash:  hash,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if len(in.FilePaths) > 0 {
		c.FilePaths = append([]string(nil), in.FilePaths...)
	}
	if err := s.index.Index(c.ID, c.ContentText); err != nil {
		return nil, err
	}
	s.nextClip++
	s.clips[c.ID] = c
	return &store.CaptureResult{Clip: c.Clone()}, nil
}

func (s *memoryClipStore) Get(ctx context.Context, id int64) (*store.Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clips[id]
	if !ok {
		return nil, store.NotFound("clip", id)
	}
	return c.Clone(), nil
}

func (s *memoryClipStore) GetMany(ctx context.Context, ids []int64) ([]*store.Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*store.Clip, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.clips[id]; ok {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (s *memoryClipStore) ListRecent(ctx context.Context, q *store.ListQuery) ([]*store.Clip, error) {
	if q == nil {
		q = &store.ListQuery{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []*store.Clip
	for _, c := range s.clips {
		if !matchesTypes(c, q.ContentTypes) {
			continue
		}
		if q.FavoritesOnly && !c.IsFavorite {
			continue
		}
		if q.PinnedOnly && !c.IsPinned {
			continue
		}
		rows = append(rows, c)
	}
	sortRecent(rows)
	return clonePage(rows, q.Limit, q.Offset), nil
}

func (s *memoryClipStore) Search(ctx context.Context, q *store.SearchQuery) ([]*store.SearchHit, error) {
	if q == nil || strings.TrimSpace(q.Query) == "" {
		return []*store.SearchHit{}, nil
	}
	text := strings.TrimSpace(q.Query)
	needle := strings.ToLower(text)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []*store.SearchHit
	if utf8.RuneCountInString(text) < 3 {
		for _, c := range s.clips {
			if matchesTypes(c, q.ContentTypes) && strings.Contains(strings.ToLower(c.ContentText), needle) {
				hits = append(hits, &store.SearchHit{Clip: c, Score: 1})
			}
		}
	} else {
		scores, err := s.index.Search(text)
		if err != nil {
			return nil, fmt.Errorf("failed to search clips: %w", err)
		}
		for id, score := range scores {
			c, ok := s.clips[id]
			if !ok || !matchesTypes(c, q.ContentTypes) {
				continue
			}
			if !strings.Contains(strings.ToLower(c.ContentText), needle) {
				continue
			}
			hits = append(hits, &store.SearchHit{Clip: c, Score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return newer(hits[i].Clip, hits[j].Clip)
	})

	start, end := window(len(hits), q.Limit, q.Offset)
	out := make([]*store.SearchHit, 0, end-start)
	for _, h := range hits[start:end] {
		out = append(out, &store.SearchHit{Clip: h.Clip.Clone(), Score: h.Score})
	}
	return out, nil
}

func (s *memoryClipStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clips[id]; !ok {
		return store.NotFound("clip", id)
	}
	return (*MemoryStore)(s).deleteClipLocked(id)
}

// deleteClipLocked removes a clip and everything hanging off it.
func (m *MemoryStore) deleteClipLocked(id int64) error {
	if err := m.index.Remove(id); err != nil {
		return err
	}
	delete(m.clips, id)
	delete(m.embeddings, id)
	for k := range m.clipTags {
		if k[0] == id {
			delete(m.clipTags, k)
		}
	}
	for k := range m.clipColls {
		if k[0] == id {
			delete(m.clipColls, k)
		}
	}
	return nil
}

func (s *memoryClipStore) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clips[id]
	if !ok {
		return false, store.NotFound("clip", id)
	}
	c.IsFavorite = !c.IsFavorite
	return c.IsFavorite, nil
}

func (s *memoryClipStore) TogglePin(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clips[id]
	if !ok {
		return false, store.NotFound("clip", id)
	}
	c.IsPinned = !c.IsPinned
	return c.IsPinned, nil
}

func (s *memoryClipStore) Touch(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clips[id]
	if !ok {
		return store.NotFound("clip", id)
	}
	c.AccessCount++
	return nil
}

func (s *memoryClipStore) UpdateText(ctx context.Context, id int64, text string) (*store.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clips[id]
	if !ok {
		return nil, store.NotFound("clip", id)
	}
	if err := s.index.Index(id, text); err != nil {
		return nil, err
	}
	c.ContentText = text
	c.ContentHash = store.HashContent(&store.CaptureInput{
		ContentType: c.ContentType,
		ContentText: text,
		ContentHTML: c.ContentHTML,
		ContentRTF:  c.ContentRTF,
		ImagePath:   c.ImagePath,
		SVGPath:     c.SVGPath,
		OfficePath:  c.OfficePath,
	})
	c.UpdatedAt = (*MemoryStore)(s).now()
	return c.Clone(), nil
}

func (s *memoryClipStore) DeleteOldest(ctx context.Context, count int) ([]*store.Clip, error) {
	if count <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []*store.Clip
	for _, c := range s.clips {
		if !c.IsPinned && !c.IsFavorite {
			candidates = append(candidates, c)
		}
	}
	sortRecent(candidates)
	// Oldest are at the tail.
	if count > len(candidates) {
		count = len(candidates)
	}
	victims := candidates[len(candidates)-count:]
	removed := make([]*store.Clip, 0, len(victims))
	for i := len(victims) - 1; i >= 0; i-- {
		c := victims[i]
		if err := (*MemoryStore)(s).deleteClipLocked(c.ID); err != nil {
			return removed, err
		}
		removed = append(removed, c)
	}
	return removed, nil
}

func (s *memoryClipStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clips), nil
}

func (s *memoryClipStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips = make(map[int64]*store.Clip)
	s.clipTags = make(map[pair]struct{})
	s.clipColls = make(map[pair]struct{})
	s.embeddings = make(map[int64]*store.Embedding)
	return s.index.Rebuild(nil)
}

// Reindex rebuilds the index from the clip rows.
func (s *memoryClipStore) Reindex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make(map[int64]string, len(s.clips))
	for id, c := range s.clips {
		docs[id] = c.ContentText
	}
	if err := s.index.Rebuild(docs); err != nil {
		return fmt.Errorf("failed to rebuild search index: %w", err)
	}
	s.settings["last_reindex"] = (*MemoryStore)(s).now().Format(time.RFC3339)
	return nil
}

// VerifyIndex checks that every clip, and nothing else, is indexed.
func (s *memoryClipStore) VerifyIndex(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.index.Count()
	if err != nil {
		return fmt.Errorf("failed to count index: %w", err)
	}
	if int(n) != len(s.clips) {
		return fmt.Errorf("%w: %d indexed, %d clips", store.ErrIndexDrift, n, len(s.clips))
	}
	for id := range s.clips {
		ok, err := s.index.Has(id)
		if err != nil {
			return fmt.Errorf("failed to read index: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: clip %d missing", store.ErrIndexDrift, id)
		}
	}
	return nil
}

func newer(a, b *store.Clip) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}

func sortRecent(rows []*store.Clip) {
	sort.Slice(rows, func(i, j int) bool { return newer(rows[i], rows[j]) })
}

func matchesTypes(c *store.Clip, types []store.ContentType) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if c.ContentType == t {
			return true
		}
	}
	return false
}

func window(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

func clonePage(rows []*store.Clip, limit, offset int) []*store.Clip {
	start, end := window(len(rows), limit, offset)
	out := make([]*store.Clip, 0, end-start)
	for _, c := range rows[start:end] {
		out = append(out, c.Clone())
	}
	return out
}
