package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yiblet/clipvault/internal/embedding"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/store/memstore"
)

// tableEmbedder returns fixed vectors per text.
type tableEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (t *tableEmbedder) Model() string { return "table" }

func (t *tableEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if t.err != nil {
		return nil, t.err
	}
	if v, ok := t.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

type fixture struct {
	st     *memstore.MemoryStore
	emb    *tableEmbedder
	gen    *embedding.Generator
	byText map[string]*store.Clip
}

func newFixture(t *testing.T, texts ...string) *fixture {
	t.Helper()
	st, err := memstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	emb := &tableEmbedder{vectors: map[string][]float32{
		"apple pie recipe":   {1, 0, 0},
		"banana bread":       {0.9, 0.1, 0},
		"kubernetes cluster": {0, 1, 0},
		"fruit":              {1, 0.05, 0},
	}}
	f := &fixture{st: st, emb: emb, byText: map[string]*store.Clip{}}
	f.gen = embedding.NewGenerator(st.Clips(), st.Embeddings(), emb)

	ctx := context.Background()
	for _, text := range texts {
		res, err := st.Clips().Capture(ctx, &store.CaptureInput{
			ContentType: store.ContentText,
			ContentText: text,
		}, store.DuplicateInsert)
		require.NoError(t, err)
		f.byText[text] = res.Clip
		_, err = f.gen.Generate(ctx, res.Clip.ID)
		require.NoError(t, err)
	}
	return f
}

func ids(hits []*store.SearchHit) []int64 {
	out := make([]int64, len(hits))
	for i, h := range hits {
		out[i] = h.Clip.ID
	}
	return out
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeHybrid, m)

	m, err = ParseMode("Semantic")
	require.NoError(t, err)
	assert.Equal(t, ModeSemantic, m)

	_, err = ParseMode("vector")
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestEngine_KeywordWhenNotSemantic(t *testing.T) {
	f := newFixture(t, "apple pie recipe", "banana bread", "kubernetes cluster")
	e := NewEngine(f.st.Clips(), f.st.Embeddings(), WithEmbedder(f.emb))

	hits, err := e.Search(context.Background(), &Request{Query: "bread", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.byText["banana bread"].ID}, ids(hits))

	hits, err = e.Search(context.Background(), &Request{Query: "  ", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEngine_SemanticThreshold(t *testing.T) {
	f := newFixture(t, "apple pie recipe", "banana bread", "kubernetes cluster")
	e := NewEngine(f.st.Clips(), f.st.Embeddings(), WithEmbedder(f.emb), WithMode(ModeSemantic))

	hits, err := e.Search(context.Background(), &Request{Query: "fruit", Semantic: true, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.byText["apple pie recipe"].ID, f.byText["banana bread"].ID}, ids(hits))
	assert.Greater(t, hits[0].Score, hits[1].Score)

	strict := 0.999
	hits, err = e.Search(context.Background(), &Request{Query: "fruit", Semantic: true, Limit: 10, Threshold: &strict})
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = e.Search(context.Background(), &Request{Query: "fruit", Semantic: true, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.byText["banana bread"].ID}, ids(hits))
}

func TestEngine_SemanticIgnoresStaleEmbeddings(t *testing.T) {
	f := newFixture(t, "apple pie recipe", "banana bread")
	ctx := context.Background()
	_, err := f.st.Clips().UpdateText(ctx, f.byText["apple pie recipe"].ID, "something else entirely")
	require.NoError(t, err)

	e := NewEngine(f.st.Clips(), f.st.Embeddings(), WithEmbedder(f.emb), WithMode(ModeSemantic))
	hits, err := e.Search(ctx, &Request{Query: "fruit", Semantic: true, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.byText["banana bread"].ID}, ids(hits))
}

func TestEngine_HybridBlendsBothRankings(t *testing.T) {
	f := newFixture(t, "apple pie recipe", "banana bread", "kubernetes cluster")
	e := NewEngine(f.st.Clips(), f.st.Embeddings(), WithEmbedder(f.emb))

	// "bread" is a keyword hit only for banana bread, while its vector is
	// also close to apple pie.
	f.emb.vectors["bread"] = []float32{0.9, 0.1, 0}
	hits, err := e.Search(context.Background(), &Request{Query: "bread", Semantic: true, Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, f.byText["banana bread"].ID, hits[0].Clip.ID)
	assert.Contains(t, ids(hits), f.byText["apple pie recipe"].ID, "semantic neighbor is blended in")
	assert.NotContains(t, ids(hits), f.byText["kubernetes cluster"].ID)
}

func TestEngine_FallsBackToKeywordOnEmbedderFailure(t *testing.T) {
	f := newFixture(t, "apple pie recipe", "banana bread")
	f.emb.err = errors.New("connection refused")
	e := NewEngine(f.st.Clips(), f.st.Embeddings(), WithEmbedder(f.emb), WithMode(ModeSemantic))

	hits, err := e.Search(context.Background(), &Request{Query: "apple", Semantic: true, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.byText["apple pie recipe"].ID}, ids(hits))
}

func TestEngine_ContentTypeFilter(t *testing.T) {
	f := newFixture(t, "apple pie recipe")
	e := NewEngine(f.st.Clips(), f.st.Embeddings(), WithEmbedder(f.emb), WithMode(ModeSemantic))

	hits, err := e.Search(context.Background(), &Request{
		Query:        "fruit",
		Semantic:     true,
		ContentTypes: []store.ContentType{store.ContentHTML},
	})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEngine_PagesMatchFullRanking(t *testing.T) {
	st, err := memstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	emb := embedding.NewHashEmbedder(64)
	gen := embedding.NewGenerator(st.Clips(), st.Embeddings(), emb)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		text := fmt.Sprintf("grocery list %d%s", i, strings.Repeat(" milk eggs", i%4))
		if i%3 == 0 {
			text = fmt.Sprintf("meeting %d about the grocery budget", i)
		}
		res, err := st.Clips().Capture(ctx, &store.CaptureInput{ContentType: store.ContentText, ContentText: text}, store.DuplicateInsert)
		require.NoError(t, err)
		_, err = gen.Generate(ctx, res.Clip.ID)
		require.NoError(t, err)
	}

	zero := 0.0
	for _, mode := range []Mode{ModeHybrid, ModeSemantic} {
		t.Run(string(mode), func(t *testing.T) {
			e := NewEngine(st.Clips(), st.Embeddings(), WithEmbedder(emb), WithMode(mode))
			full, err := e.Search(ctx, &Request{Query: "grocery", Semantic: true, Threshold: &zero})
			require.NoError(t, err)
			require.Len(t, full, 12)

			for _, size := range []int{2, 3, 5} {
				var walked []int64
				for offset := 0; ; offset += size {
					hits, err := e.Search(ctx, &Request{Query: "grocery", Semantic: true, Threshold: &zero, Limit: size, Offset: offset})
					require.NoError(t, err)
					walked = append(walked, ids(hits)...)
					if len(hits) < size {
						break
					}
				}
				assert.Equal(t, ids(full), walked, "page size %d", size)
			}
		})
	}
}
