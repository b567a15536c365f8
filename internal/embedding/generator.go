package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/events"
	"github.com/yiblet/clipvault/internal/store"
)

var generated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "clipvault",
		Subsystem: "embedding",
		Name:      "generated_total",
		Help:      "Embedding generation attempts by outcome.",
	},
	[]string{"result"},
)

// Outcome of a single Generate call.
type Outcome string

const (
	Generated Outcome = "generated"
	Fresh     Outcome = "fresh"
	Skipped   Outcome = "skipped"
	Failed    Outcome = "failed"
)

// RetryConfig bounds the retries around a provider call.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig is used when a Generator is built without one.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:      3,
	InitialInterval: 200 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

// Generator computes and stores embeddings for clips.
type Generator struct {
	clips    store.ClipStore
	vectors  store.EmbeddingStore
	embedder Embedder
	retry    RetryConfig
	log      zerolog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

func WithRetry(cfg RetryConfig) GeneratorOption {
	return func(g *Generator) { g.retry = cfg }
}

func WithLogger(l zerolog.Logger) GeneratorOption {
	return func(g *Generator) { g.log = l }
}

// NewGenerator creates a generator. embedder must not be nil.
func NewGenerator(clips store.ClipStore, vectors store.EmbeddingStore, embedder Embedder, opts ...GeneratorOption) *Generator {
	g := &Generator{
		clips:    clips,
		vectors:  vectors,
		embedder: embedder,
		retry:    DefaultRetryConfig,
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Model returns the embedder's model name.
func (g *Generator) Model() string { return g.embedder.Model() }

// Generate embeds one clip unless its stored embedding is already current
// for this model. Clips without text are skipped.
func (g *Generator) Generate(ctx context.Context, clipID int64) (Outcome, error) {
	clip, err := g.clips.Get(ctx, clipID)
	if err != nil {
		generated.WithLabelValues(string(Failed)).Inc()
		return Failed, err
	}
	if strings.TrimSpace(clip.ContentText) == "" {
		generated.WithLabelValues(string(Skipped)).Inc()
		return Skipped, nil
	}

	existing, err := g.vectors.GetEmbedding(ctx, clipID)
	switch {
	case err == nil:
		if existing.Model == g.embedder.Model() && !existing.Stale(clip) {
			generated.WithLabelValues(string(Fresh)).Inc()
			return Fresh, nil
		}
	case !store.IsNotFound(err):
		generated.WithLabelValues(string(Failed)).Inc()
		return Failed, err
	}

	vec, err := g.embed(ctx, clip.ContentText)
	if err != nil {
		generated.WithLabelValues(string(Failed)).Inc()
		return Failed, fmt.Errorf("embed clip %d: %w", clipID, err)
	}

	err = g.vectors.UpsertEmbedding(ctx, &store.Embedding{
		ClipID:     clipID,
		Model:      g.embedder.Model(),
		Dimensions: len(vec),
		Vector:     vec,
	})
	if err != nil {
		generated.WithLabelValues(string(Failed)).Inc()
		return Failed, err
	}
	generated.WithLabelValues(string(Generated)).Inc()
	g.log.Debug().Int64("clip_id", clipID).Int("dims", len(vec)).Msg("embedding stored")
	return Generated, nil
}

// GenerateStale embeds up to limit clips whose embeddings are missing or
// out of date. Per-clip failures are logged and counted, not returned.
func (g *Generator) GenerateStale(ctx context.Context, limit int) (done, failed int, err error) {
	ids, err := g.vectors.StaleClipIDs(ctx, g.embedder.Model(), limit)
	if err != nil {
		return 0, 0, err
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, failed, err
		}
		outcome, err := g.Generate(ctx, id)
		if err != nil {
			failed++
			g.log.Warn().Err(err).Int64("clip_id", id).Msg("embedding failed")
			continue
		}
		if outcome == Generated {
			done++
		}
	}
	return done, failed, nil
}

func (g *Generator) embed(ctx context.Context, text string) ([]float32, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = g.retry.InitialInterval
	exp.Multiplier = 2
	exp.MaxInterval = g.retry.MaxInterval
	exp.Reset()

	var vec []float32
	op := func() error {
		v, err := g.embedder.Embed(ctx, text)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		vec = v
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(exp, g.retry.MaxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return vec, nil
}

func retryable(err error) bool {
	if errors.Is(err, ErrEmptyText) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}

// Worker embeds clips as capture and edit events arrive.
type Worker struct {
	gen *Generator
	log zerolog.Logger
}

// NewWorker creates a worker around gen.
func NewWorker(gen *Generator, log zerolog.Logger) *Worker {
	return &Worker{gen: gen, log: log}
}

// Run consumes events until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context, in <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-in:
			if !ok {
				return
			}
			w.handle(ctx, evt)
		}
	}
}

func (w *Worker) handle(ctx context.Context, evt events.Event) {
	if evt.Kind != events.ClipCaptured && evt.Kind != events.ClipUpdated {
		return
	}
	id := evt.ClipID
	if evt.Clip != nil {
		id = evt.Clip.ID
	}
	if id == 0 {
		return
	}
	if _, err := w.gen.Generate(ctx, id); err != nil && !store.IsNotFound(err) {
		w.log.Warn().Err(err).Int64("clip_id", id).Msg("background embedding failed")
	}
}
