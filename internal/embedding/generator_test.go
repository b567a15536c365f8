package embedding

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yiblet/clipvault/internal/events"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/store/memstore"
)

type flakyEmbedder struct {
	failures int32
	calls    atomic.Int32
	err      error
}

func (f *flakyEmbedder) Model() string { return "flaky" }

func (f *flakyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

var fastRetry = RetryConfig{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func newStore(t *testing.T) *memstore.MemoryStore {
	t.Helper()
	st, err := memstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func captureText(t *testing.T, st store.Store, text string) *store.Clip {
	t.Helper()
	res, err := st.Clips().Capture(context.Background(), &store.CaptureInput{
		ContentType: store.ContentText,
		ContentText: text,
	}, store.DuplicateInsert)
	require.NoError(t, err)
	return res.Clip
}

func TestGenerator_GenerateAndFreshness(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	clip := captureText(t, st, "hello world")

	gen := NewGenerator(st.Clips(), st.Embeddings(), NewHashEmbedder(32))

	out, err := gen.Generate(ctx, clip.ID)
	require.NoError(t, err)
	assert.Equal(t, Generated, out)

	out, err = gen.Generate(ctx, clip.ID)
	require.NoError(t, err)
	assert.Equal(t, Fresh, out)

	_, err = st.Clips().UpdateText(ctx, clip.ID, "hello again")
	require.NoError(t, err)

	out, err = gen.Generate(ctx, clip.ID)
	require.NoError(t, err)
	assert.Equal(t, Generated, out, "edited clip must be re-embedded")
}

func TestGenerator_SkipsEmptyText(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	res, err := st.Clips().Capture(ctx, &store.CaptureInput{
		ContentType: store.ContentImage,
		ImagePath:   "/tmp/x.png",
	}, store.DuplicateInsert)
	require.NoError(t, err)

	gen := NewGenerator(st.Clips(), st.Embeddings(), NewHashEmbedder(32))
	out, err := gen.Generate(ctx, res.Clip.ID)
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)
}

func TestGenerator_RetriesTransientErrors(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	clip := captureText(t, st, "retry me")

	emb := &flakyEmbedder{failures: 2, err: &StatusError{Code: 503}}
	gen := NewGenerator(st.Clips(), st.Embeddings(), emb, WithRetry(fastRetry))

	out, err := gen.Generate(ctx, clip.ID)
	require.NoError(t, err)
	assert.Equal(t, Generated, out)
	assert.Equal(t, int32(3), emb.calls.Load())
}

func TestGenerator_PermanentErrorsStopImmediately(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	clip := captureText(t, st, "bad model")

	emb := &flakyEmbedder{failures: 10, err: &StatusError{Code: 404}}
	gen := NewGenerator(st.Clips(), st.Embeddings(), emb, WithRetry(fastRetry))

	out, err := gen.Generate(ctx, clip.ID)
	require.Error(t, err)
	assert.Equal(t, Failed, out)
	assert.Equal(t, int32(1), emb.calls.Load())

	var se *StatusError
	assert.True(t, errors.As(err, &se))
}

func TestGenerator_GenerateStale(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	captureText(t, st, "one")
	captureText(t, st, "two")
	captureText(t, st, "three")

	gen := NewGenerator(st.Clips(), st.Embeddings(), NewHashEmbedder(32))
	done, failed, err := gen.GenerateStale(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, done)
	assert.Zero(t, failed)

	ids, err := st.Embeddings().StaleClipIDs(ctx, gen.Model(), 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestWorker_EmbedsCapturedClips(t *testing.T) {
	st := newStore(t)
	clip := captureText(t, st, "from the bus")

	bus := events.NewBus()
	ch, unsub := bus.Subscribe(8)
	defer unsub()

	gen := NewGenerator(st.Clips(), st.Embeddings(), NewHashEmbedder(32))
	w := NewWorker(gen, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, ch)
		close(done)
	}()

	bus.Publish(events.Event{Kind: events.ClipDeleted, ClipID: 999})
	bus.Publish(events.Event{Kind: events.ClipCaptured, Clip: clip})

	require.Eventually(t, func() bool {
		_, err := st.Embeddings().GetEmbedding(context.Background(), clip.ID)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
