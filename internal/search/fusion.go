package search

import (
	"math"
	"sort"

	"github.com/yiblet/clipvault/internal/store"
)

// FusionConfig defines weights for hybrid score fusion.
type FusionConfig struct {
	SemanticWeight float64
	KeywordWeight  float64
}

// DefaultFusionConfig weighs semantic similarity at 70% and keyword rank at 30%.
var DefaultFusionConfig = FusionConfig{
	SemanticWeight: 0.7,
	KeywordWeight:  0.3,
}

// fuseScores merges keyword and semantic hits by clip id. Both lists must
// already be normalized. A clip found by only one ranking keeps that score
// scaled by its weight.
func fuseScores(keyword, semantic []*store.SearchHit, cfg FusionConfig) []*store.SearchHit {
	type pair struct {
		clip    *store.Clip
		kw, sem float64
	}
	merged := make(map[int64]*pair, len(keyword)+len(semantic))
	order := make([]int64, 0, len(keyword)+len(semantic))
	get := func(c *store.Clip) *pair {
		p, ok := merged[c.ID]
		if !ok {
			p = &pair{clip: c}
			merged[c.ID] = p
			order = append(order, c.ID)
		}
		return p
	}
	for _, h := range keyword {
		p := get(h.Clip)
		p.kw = h.Score
	}
	for _, h := range semantic {
		p := get(h.Clip)
		p.sem = h.Score
	}

	out := make([]*store.SearchHit, 0, len(order))
	for _, id := range order {
		p := merged[id]
		score := cfg.SemanticWeight*p.sem + cfg.KeywordWeight*p.kw
		out = append(out, &store.SearchHit{Clip: p.clip, Score: score})
	}
	sortHits(out)
	return out
}

// normalizeScores rescales scores to [0, 1] in place. When every score is
// equal they all become 1.
func normalizeScores(hits []*store.SearchHit) []*store.SearchHit {
	if len(hits) == 0 {
		return hits
	}
	lo, hi := hits[0].Score, hits[0].Score
	for _, h := range hits {
		lo = math.Min(lo, h.Score)
		hi = math.Max(hi, h.Score)
	}
	span := hi - lo
	for _, h := range hits {
		if span == 0 {
			h.Score = 1
		} else {
			h.Score = (h.Score - lo) / span
		}
	}
	return hits
}

// cosineSimilarity returns 0 for mismatched or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// sortHits orders by score, then recency, then id.
func sortHits(hits []*store.SearchHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Clip.UpdatedAt.Equal(b.Clip.UpdatedAt) {
			return a.Clip.UpdatedAt.After(b.Clip.UpdatedAt)
		}
		return a.Clip.ID > b.Clip.ID
	})
}

func page(hits []*store.SearchHit, limit, offset int) []*store.SearchHit {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(hits) {
		return []*store.SearchHit{}
	}
	end := len(hits)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return hits[offset:end]
}
