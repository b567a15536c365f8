// Package search ranks clips for a query using the full-text index,
// embedding similarity, or a weighted blend of both.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/embedding"
	"github.com/yiblet/clipvault/internal/store"
)

// Mode selects how semantic requests are ranked.
type Mode string

const (
	ModeKeyword  Mode = "keyword"
	ModeSemantic Mode = "semantic"
	ModeHybrid   Mode = "hybrid"
)

// ParseMode maps a config value to a Mode. Empty means hybrid.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeHybrid:
		return ModeHybrid, nil
	case ModeKeyword:
		return ModeKeyword, nil
	case ModeSemantic:
		return ModeSemantic, nil
	}
	return "", fmt.Errorf("unknown search mode %q: %w", s, store.ErrInvalidInput)
}

// DefaultThreshold is the minimum cosine similarity for semantic hits.
const DefaultThreshold = 0.5

// FusionCandidates caps how many hits each ranking contributes to a hybrid
// search. Hybrid results end after this many fused rows at most.
const FusionCandidates = 500

// Request is one paginated search.
type Request struct {
	Query        string
	ContentTypes []store.ContentType
	Limit        int
	Offset       int

	// Semantic asks for embedding-based ranking. Without an embedder the
	// request is served by keyword search.
	Semantic bool
	// Threshold overrides the engine's similarity threshold when non-nil.
	Threshold *float64
}

// Engine answers search requests.
type Engine struct {
	clips     store.ClipStore
	vectors   store.EmbeddingStore
	embedder  embedding.Embedder
	mode      Mode
	threshold float64
	fusion    FusionConfig
	log       zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

func WithEmbedder(e embedding.Embedder) Option {
	return func(en *Engine) { en.embedder = e }
}

func WithMode(m Mode) Option {
	return func(en *Engine) { en.mode = m }
}

func WithThreshold(t float64) Option {
	return func(en *Engine) { en.threshold = t }
}

func WithFusion(cfg FusionConfig) Option {
	return func(en *Engine) { en.fusion = cfg }
}

func WithLogger(l zerolog.Logger) Option {
	return func(en *Engine) { en.log = l }
}

// NewEngine creates an engine over clips and vectors.
func NewEngine(clips store.ClipStore, vectors store.EmbeddingStore, opts ...Option) *Engine {
	e := &Engine{
		clips:     clips,
		vectors:   vectors,
		mode:      ModeHybrid,
		threshold: DefaultThreshold,
		fusion:    DefaultFusionConfig,
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// SemanticAvailable reports whether semantic requests can be honored.
func (e *Engine) SemanticAvailable() bool {
	return e.embedder != nil && e.mode != ModeKeyword
}

// Search returns one page of hits, best first.
func (e *Engine) Search(ctx context.Context, req *Request) ([]*store.SearchHit, error) {
	if req == nil || strings.TrimSpace(req.Query) == "" {
		return []*store.SearchHit{}, nil
	}
	if !req.Semantic || !e.SemanticAvailable() {
		return e.keyword(ctx, req, req.Limit, req.Offset)
	}

	threshold := e.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	vec, err := e.embedder.Embed(ctx, req.Query)
	if err != nil {
		e.log.Warn().Err(err).Msg("query embedding failed, using keyword search")
		return e.keyword(ctx, req, req.Limit, req.Offset)
	}

	semantic, err := e.semantic(ctx, req, vec, threshold)
	if err != nil {
		return nil, err
	}
	if e.mode == ModeSemantic {
		return page(semantic, req.Limit, req.Offset), nil
	}

	// Both rankings are cut to the same window on every page so the
	// normalized scores, and with them the fused order, do not depend on
	// the offset.
	keyword, err := e.keyword(ctx, req, FusionCandidates, 0)
	if err != nil {
		return nil, err
	}
	if len(semantic) > FusionCandidates {
		semantic = semantic[:FusionCandidates]
	}
	fused := fuseScores(normalizeScores(keyword), normalizeScores(semantic), e.fusion)
	return page(fused, req.Limit, req.Offset), nil
}

func (e *Engine) keyword(ctx context.Context, req *Request, limit, offset int) ([]*store.SearchHit, error) {
	return e.clips.Search(ctx, &store.SearchQuery{
		Query:        req.Query,
		ContentTypes: req.ContentTypes,
		Limit:        limit,
		Offset:       offset,
	})
}

// semantic scores every embedding of the engine's model against vec and
// returns the hits at or above threshold, best first. Stale embeddings are
// ignored.
func (e *Engine) semantic(ctx context.Context, req *Request, vec []float32, threshold float64) ([]*store.SearchHit, error) {
	embs, err := e.vectors.ListEmbeddings(ctx, e.embedder.Model())
	if err != nil {
		return nil, err
	}

	scores := make(map[int64]float64, len(embs))
	byClip := make(map[int64]*store.Embedding, len(embs))
	ids := make([]int64, 0, len(embs))
	for _, emb := range embs {
		sim := cosineSimilarity(vec, emb.Vector)
		if sim < threshold {
			continue
		}
		scores[emb.ClipID] = sim
		byClip[emb.ClipID] = emb
		ids = append(ids, emb.ClipID)
	}
	if len(ids) == 0 {
		return []*store.SearchHit{}, nil
	}

	clips, err := e.clips.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	hits := make([]*store.SearchHit, 0, len(clips))
	for _, c := range clips {
		// An embedding older than its clip describes text that is gone.
		if byClip[c.ID].Stale(c) || !typeAllowed(c, req.ContentTypes) {
			continue
		}
		hits = append(hits, &store.SearchHit{Clip: c, Score: scores[c.ID]})
	}
	sortHits(hits)
	return hits, nil
}

func typeAllowed(c *store.Clip, types []store.ContentType) bool {
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
