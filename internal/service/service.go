// Package service is clipvault's command facade. One Service is built at
// startup and handed to the CLI, the TUI and the capture daemon. It serves
// the History Store as its Backend and the action catalog as its Env.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/action"
	"github.com/yiblet/clipvault/internal/blobfs"
	"github.com/yiblet/clipvault/internal/capture"
	"github.com/yiblet/clipvault/internal/clipboard"
	"github.com/yiblet/clipvault/internal/content"
	"github.com/yiblet/clipvault/internal/embedding"
	"github.com/yiblet/clipvault/internal/events"
	"github.com/yiblet/clipvault/internal/history"
	"github.com/yiblet/clipvault/internal/launch"
	"github.com/yiblet/clipvault/internal/search"
	"github.com/yiblet/clipvault/internal/store"
)

var (
	// ErrNoClipboard is returned by clipboard operations when the service
	// was built without one.
	ErrNoClipboard = errors.New("no clipboard available")
	// ErrEmbeddingsDisabled is returned when no embedding provider is set.
	ErrEmbeddingsDisabled = errors.New("embeddings are disabled (set embed_provider)")
)

// SettingLastReindex is the settings key recording the last full reindex.
const SettingLastReindex = "last_reindex"

var (
	_ history.Backend = (*Service)(nil)
	_ action.Env      = (*Service)(nil)
)

// Service wires the stores to capture, search, embeddings, the clipboard and
// external programs.
type Service struct {
	store    store.Store
	clips    store.ClipStore
	bus      *events.Bus
	blobs    *blobfs.BlobFS
	board    clipboard.Clipboard
	launcher *launch.Launcher
	embedder embedding.Embedder

	captureOpts []capture.Option
	searchOpts  []search.Option
	retry       *embedding.RetryConfig

	capturer *capture.Capturer
	engine   *search.Engine
	gen      *embedding.Generator
	log      zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithClipboard(b clipboard.Clipboard) Option {
	return func(s *Service) { s.board = b }
}

func WithLauncher(l *launch.Launcher) Option {
	return func(s *Service) { s.launcher = l }
}

func WithBlobs(b *blobfs.BlobFS) Option {
	return func(s *Service) { s.blobs = b }
}

func WithBus(b *events.Bus) Option {
	return func(s *Service) { s.bus = b }
}

// WithEmbedder enables embedding generation and semantic search.
func WithEmbedder(e embedding.Embedder) Option {
	return func(s *Service) { s.embedder = e }
}

// WithEmbeddingRetry overrides the retry policy around embedder calls.
func WithEmbeddingRetry(cfg embedding.RetryConfig) Option {
	return func(s *Service) { s.retry = &cfg }
}

// WithCaptureOptions passes options through to the capturer.
func WithCaptureOptions(opts ...capture.Option) Option {
	return func(s *Service) { s.captureOpts = append(s.captureOpts, opts...) }
}

// WithSearchOptions passes options through to the search engine.
func WithSearchOptions(opts ...search.Option) Option {
	return func(s *Service) { s.searchOpts = append(s.searchOpts, opts...) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New builds a service over st. The service owns st and closes it on Close.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, clips: st.Clips(), log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	if s.bus == nil {
		s.bus = events.NewBus()
	}
	if s.launcher == nil {
		s.launcher = launch.New(launch.WithLogger(s.log))
	}

	copts := []capture.Option{capture.WithBus(s.bus), capture.WithLogger(s.log)}
	if s.blobs != nil {
		copts = append(copts, capture.WithBlobs(s.blobs))
	}
	s.capturer = capture.NewCapturer(s.clips, append(copts, s.captureOpts...)...)

	sopts := []search.Option{search.WithLogger(s.log)}
	if s.embedder != nil {
		sopts = append(sopts, search.WithEmbedder(s.embedder))
		gopts := []embedding.GeneratorOption{embedding.WithLogger(s.log)}
		if s.retry != nil {
			gopts = append(gopts, embedding.WithRetry(*s.retry))
		}
		s.gen = embedding.NewGenerator(s.clips, st.Embeddings(), s.embedder, gopts...)
	}
	s.engine = search.NewEngine(s.clips, st.Embeddings(), append(sopts, s.searchOpts...)...)
	return s
}

// Close shuts the event bus and the store.
func (s *Service) Close() error {
	s.bus.Close()
	return s.store.Close()
}

func (s *Service) Store() store.Store             { return s.store }
func (s *Service) Bus() *events.Bus               { return s.bus }
func (s *Service) Capturer() *capture.Capturer    { return s.capturer }
func (s *Service) Engine() *search.Engine         { return s.engine }
func (s *Service) Launcher() *launch.Launcher     { return s.launcher }
func (s *Service) Clipboard() clipboard.Clipboard { return s.board }

// SemanticAvailable reports whether semantic search can be served.
func (s *Service) SemanticAvailable() bool { return s.engine.SemanticAvailable() }

// Capture stores a payload handed over by a capture collaborator.
func (s *Service) Capture(ctx context.Context, in *store.CaptureInput) (*store.CaptureResult, error) {
	return s.capturer.Capture(ctx, in)
}

// Watch captures system clipboard changes until ctx is done.
func (s *Service) Watch(ctx context.Context) error {
	if s.board == nil || !s.board.IsSupported() {
		return ErrNoClipboard
	}
	return s.capturer.Watch(ctx, s.board)
}

// StartEmbedWorker embeds captured and edited clips in the background until
// ctx is done. The returned channel is closed when the worker has stopped.
func (s *Service) StartEmbedWorker(ctx context.Context) (<-chan struct{}, error) {
	if s.gen == nil {
		return nil, ErrEmbeddingsDisabled
	}
	in, unsubscribe := s.bus.Subscribe(256)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer unsubscribe()
		embedding.NewWorker(s.gen, s.log).Run(ctx, in)
	}()
	return done, nil
}

// RecentClips returns one page of clips in recency order.
func (s *Service) RecentClips(ctx context.Context, limit, offset int) ([]*store.Clip, error) {
	return s.clips.ListRecent(ctx, &store.ListQuery{Limit: limit, Offset: offset})
}

// ListClips returns one page of clips matching q.
func (s *Service) ListClips(ctx context.Context, q *store.ListQuery) ([]*store.Clip, error) {
	return s.clips.ListRecent(ctx, q)
}

// Search returns one page of ranked hits.
func (s *Service) Search(ctx context.Context, req *search.Request) ([]*store.SearchHit, error) {
	return s.engine.Search(ctx, req)
}

// SearchClips returns one page of search results, best first.
func (s *Service) SearchClips(ctx context.Context, req *search.Request) ([]*store.Clip, error) {
	hits, err := s.engine.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make([]*store.Clip, len(hits))
	for i, h := range hits {
		out[i] = h.Clip
	}
	return out, nil
}

func (s *Service) GetClip(ctx context.Context, id int64) (*store.Clip, error) {
	return s.clips.Get(ctx, id)
}

// DeleteClip removes a clip, its attachments and its related rows.
func (s *Service) DeleteClip(ctx context.Context, id int64) error {
	clip, err := s.clips.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.clips.Delete(ctx, id); err != nil {
		return err
	}
	s.removeBlobs(clip)
	s.bus.Publish(events.Event{Kind: events.ClipDeleted, ClipID: id})
	return nil
}

// Delete is DeleteClip for actions.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.DeleteClip(ctx, id)
}

// ClearAllClips removes every clip and the attachments they owned.
func (s *Service) ClearAllClips(ctx context.Context) error {
	var owned []*store.Clip
	if s.blobs != nil {
		const page = 500
		for offset := 0; ; offset += page {
			rows, err := s.clips.ListRecent(ctx, &store.ListQuery{Limit: page, Offset: offset})
			if err != nil {
				return fmt.Errorf("failed to list attachments: %w", err)
			}
			for _, c := range rows {
				if s.blobs.Owns(c.ImagePath) || s.blobs.Owns(c.SVGPath) || s.blobs.Owns(c.PDFPath) || s.blobs.Owns(c.OfficePath) {
					owned = append(owned, c)
				}
			}
			if len(rows) < page {
				break
			}
		}
	}
	if err := s.clips.Clear(ctx); err != nil {
		return err
	}
	for _, c := range owned {
		s.removeBlobs(c)
	}
	s.bus.Publish(events.Event{Kind: events.ClipsCleared})
	s.log.Info().Int("attachments", len(owned)).Msg("history cleared")
	return nil
}

func (s *Service) removeBlobs(c *store.Clip) {
	if s.blobs == nil {
		return
	}
	if err := s.blobs.RemoveClip(c); err != nil {
		s.log.Warn().Err(err).Int64("clip_id", c.ID).Msg("failed to remove attachments")
	}
}

func (s *Service) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	return s.clips.ToggleFavorite(ctx, id)
}

func (s *Service) TogglePin(ctx context.Context, id int64) (bool, error) {
	return s.clips.TogglePin(ctx, id)
}

// Copy writes text to the clipboard. A non-zero clipID counts as a use of
// that clip.
func (s *Service) Copy(ctx context.Context, text string, clipID int64) error {
	if s.board == nil {
		return ErrNoClipboard
	}
	if err := s.board.WriteText(ctx, text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	if clipID > 0 {
		if err := s.clips.Touch(ctx, clipID); err != nil && !store.IsNotFound(err) {
			return err
		}
	}
	return nil
}

// Paste copies text and then runs the configured paste command. Without a
// paste command the text is still copied and an error wrapping
// launch.ErrNoPasteCommand is returned.
func (s *Service) Paste(ctx context.Context, text string, clipID int64) error {
	if err := s.Copy(ctx, text, clipID); err != nil {
		return err
	}
	if err := s.launcher.Paste(ctx); err != nil {
		return fmt.Errorf("copied to clipboard: %w", err)
	}
	return nil
}

// Open hands target to the desktop's default application.
func (s *Service) Open(ctx context.Context, target string) error {
	return s.launcher.Open(ctx, target)
}

// Edit opens the clip's text in the editor and stores the result when it
// changed.
func (s *Service) Edit(ctx context.Context, c content.Content) error {
	if c.Clip == nil {
		return fmt.Errorf("nothing to edit: %w", store.ErrInvalidInput)
	}
	edited, err := s.launcher.Edit(ctx, c.Text, editExtension(c))
	if err != nil {
		return err
	}
	if edited == c.Text || strings.TrimRight(edited, "\n") == c.Text {
		return nil
	}
	_, err = s.UpdateClipText(ctx, c.Clip.ID, edited)
	return err
}

// EditClip is Edit by id.
func (s *Service) EditClip(ctx context.Context, id int64) error {
	clip, err := s.clips.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.Edit(ctx, content.ClipToContent(clip))
}

func editExtension(c content.Content) string {
	switch c.Type {
	case content.TypeJSON:
		return "json"
	case content.TypeCSV:
		return "csv"
	case content.TypeCode:
		if m, ok := c.Metadata.(content.CodeMetadata); ok && m.Language != "" {
			return strings.ToLower(m.Language)
		}
	}
	return "txt"
}

// UpdateClipText replaces a clip's text. Its embedding becomes stale and is
// recomputed by the embed worker when one runs.
func (s *Service) UpdateClipText(ctx context.Context, id int64, text string) (*store.Clip, error) {
	clip, err := s.clips.UpdateText(ctx, id, text)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.Event{Kind: events.ClipUpdated, Clip: clip.Clone(), ClipID: id})
	return clip, nil
}

// GenerateEmbedding computes the embedding for one clip.
func (s *Service) GenerateEmbedding(ctx context.Context, id int64) (embedding.Outcome, error) {
	if s.gen == nil {
		return embedding.Failed, ErrEmbeddingsDisabled
	}
	return s.gen.Generate(ctx, id)
}

// GenerateStaleEmbeddings embeds up to limit clips whose embedding is
// missing or stale.
func (s *Service) GenerateStaleEmbeddings(ctx context.Context, limit int) (done, failed int, err error) {
	if s.gen == nil {
		return 0, 0, ErrEmbeddingsDisabled
	}
	return s.gen.GenerateStale(ctx, limit)
}

// Reindex rebuilds the full-text index and records when it happened.
func (s *Service) Reindex(ctx context.Context) error {
	start := time.Now()
	if err := s.clips.Reindex(ctx); err != nil {
		return err
	}
	if err := s.store.Config().Set(ctx, SettingLastReindex, start.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record reindex: %w", err)
	}
	s.log.Info().Dur("took", time.Since(start)).Msg("search index rebuilt")
	return nil
}

// VerifyIndex returns an error wrapping store.ErrIndexDrift when the
// full-text index needs a Reindex.
func (s *Service) VerifyIndex(ctx context.Context) error {
	return s.clips.VerifyIndex(ctx)
}

// LastReindex returns when Reindex last ran, or the zero time.
func (s *Service) LastReindex(ctx context.Context) (time.Time, error) {
	v, err := s.store.Config().Get(ctx, SettingLastReindex)
	if store.IsNotFound(err) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}
