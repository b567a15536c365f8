package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.5, -1, 2}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "nomic-embed-text")
	vec, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1, 2}, vec)
	assert.Equal(t, "nomic-embed-text", p.Model())
}

func TestOllamaProvider_Errors(t *testing.T) {
	code := http.StatusServiceUnavailable
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", code)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "m")
	_, err := p.Embed(context.Background(), "hello")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Retryable())

	code = http.StatusNotFound
	_, err = p.Embed(context.Background(), "hello")
	require.ErrorAs(t, err, &se)
	assert.False(t, se.Retryable())

	_, err = p.Embed(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestHashEmbedder(t *testing.T) {
	h := NewHashEmbedder(64)
	ctx := context.Background()

	a, err := h.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)
	b, err := h.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)
	assert.Equal(t, a, b, "deterministic")
	assert.Len(t, a, 64)

	_, err = h.Embed(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyText)

	short, err := h.Embed(ctx, "ab")
	require.NoError(t, err)
	assert.Len(t, short, 64)
}

func TestNew(t *testing.T) {
	e, err := New("none", "", "")
	require.NoError(t, err)
	assert.Nil(t, e)

	e, err = New("ollama", "nomic-embed-text", "")
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", e.Model())

	e, err = New("hash", "", "")
	require.NoError(t, err)
	assert.NotNil(t, e)

	_, err = New("openai", "", "")
	assert.Error(t, err)
}
