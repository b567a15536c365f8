// Package embedding turns clip text into dense vectors and keeps the
// embeddings table in step with the clips it describes.
package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrEmptyText is returned when there is nothing to embed.
var ErrEmptyText = errors.New("empty text")

// Embedder produces a vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Model names the model whose vectors Embed returns. Vectors from
	// different models are never compared.
	Model() string
}

// Provider names accepted by New.
const (
	ProviderNone   = "none"
	ProviderOllama = "ollama"
	ProviderHash   = "hash"
)

// New builds the embedder for provider. ProviderNone returns nil, nil.
func New(provider, model, baseURL string) (Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderNone:
		return nil, nil
	case ProviderOllama:
		return NewOllamaProvider(baseURL, model), nil
	case ProviderHash:
		return NewHashEmbedder(256), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// OllamaProvider calls the Ollama embeddings API.
type OllamaProvider struct {
	client *resty.Client
	model  string
}

// NewOllamaProvider creates a provider talking to baseURL, falling back to
// the local default port when empty.
func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(2 * time.Minute)
	return &OllamaProvider{client: c, model: model}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// StatusError is a non-200 reply from the embeddings endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ollama status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

func (p *OllamaProvider) Model() string { return p.model }

// Embed generates a vector for text.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&embedRequest{Model: p.model, Prompt: text}).
		Post("/api/embeddings")
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}

	var er embedResponse
	if err := json.Unmarshal(resp.Body(), &er); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(er.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}

	vec := make([]float32, len(er.Embedding))
	for i, v := range er.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// HashEmbedder is a deterministic, offline embedder that hashes character
// trigrams into a fixed number of buckets. Texts sharing many trigrams get
// a high cosine similarity.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a hash embedder with dims buckets.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 256
	}
	return &HashEmbedder{dims: dims}
}

func (h *HashEmbedder) Model() string { return fmt.Sprintf("hash-trigram-%d", h.dims) }

func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runes := []rune(strings.ToLower(strings.TrimSpace(text)))
	if len(runes) == 0 {
		return nil, ErrEmptyText
	}

	vec := make([]float32, h.dims)
	add := func(gram []rune) {
		f := fnv.New32a()
		f.Write([]byte(string(gram)))
		vec[f.Sum32()%uint32(h.dims)]++
	}
	if len(runes) < 3 {
		add(runes)
	}
	for i := 0; i+3 <= len(runes); i++ {
		add(runes[i : i+3])
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}
