// Package capture turns clipboard payloads into stored clips: it derives
// searchable text, classifies it, applies the duplicate policy, keeps the
// history within its limit, and announces each change on the event bus.
package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/blobfs"
	"github.com/yiblet/clipvault/internal/clipboard"
	"github.com/yiblet/clipvault/internal/events"
	"github.com/yiblet/clipvault/internal/store"
)

const (
	DefaultHistoryLimit = 1000
	MaxHistoryLimit     = 100000
)

// ErrBinary is returned for text payloads that are not text.
var ErrBinary = errors.New("payload looks binary")

var (
	captures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clipvault",
			Subsystem: "capture",
			Name:      "clips_total",
			Help:      "Captured payloads by content type and result.",
		},
		[]string{"content_type", "result"},
	)
	pruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clipvault",
			Subsystem: "capture",
			Name:      "pruned_total",
			Help:      "Clips removed to stay within the history limit.",
		},
	)
)

// Capturer stores payloads as clips.
type Capturer struct {
	clips        store.ClipStore
	blobs        *blobfs.BlobFS
	bus          *events.Bus
	historyLimit int
	policy       store.DuplicatePolicy
	log          zerolog.Logger
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithBlobs sets where image payloads are written. Without it image
// payloads are rejected.
func WithBlobs(b *blobfs.BlobFS) Option {
	return func(c *Capturer) { c.blobs = b }
}

func WithBus(b *events.Bus) Option {
	return func(c *Capturer) { c.bus = b }
}

// WithHistoryLimit caps the number of clips kept. Values outside
// 1..MaxHistoryLimit fall back to the default.
func WithHistoryLimit(n int) Option {
	return func(c *Capturer) {
		if n > 0 && n <= MaxHistoryLimit {
			c.historyLimit = n
		}
	}
}

func WithDuplicatePolicy(p store.DuplicatePolicy) Option {
	return func(c *Capturer) { c.policy = p }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Capturer) { c.log = l }
}

// NewCapturer creates a capturer over clips.
func NewCapturer(clips store.ClipStore, opts ...Option) *Capturer {
	c := &Capturer{
		clips:        clips,
		historyLimit: DefaultHistoryLimit,
		policy:       store.DuplicateBump,
		log:          zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// HistoryLimit returns the configured history limit.
func (c *Capturer) HistoryLimit() int { return c.historyLimit }

// Capture stores in. Missing content_text is derived from the payload and
// text without a detected type is classified. The result is published as a
// ClipCaptured event.
func (c *Capturer) Capture(ctx context.Context, in *store.CaptureInput) (*store.CaptureResult, error) {
	if in == nil || !in.ContentType.Valid() {
		return nil, fmt.Errorf("invalid capture input: %w", store.ErrInvalidInput)
	}
	cp := *in
	cp.ContentText = DeriveText(&cp)
	if cp.DetectedType == "" && cp.ContentText != "" && (cp.ContentType == store.ContentText || cp.ContentType == store.ContentHTML || cp.ContentType == store.ContentRTF) {
		d := Detect(cp.ContentText)
		cp.DetectedType = string(d.Type)
		if len(d.Metadata) > 0 && cp.Metadata == "" {
			if raw, err := json.Marshal(d.Metadata); err == nil {
				cp.Metadata = string(raw)
			}
		}
	}
	res, err := c.clips.Capture(ctx, &cp, c.policy)
	if err != nil {
		captures.WithLabelValues(string(cp.ContentType), "error").Inc()
		return nil, fmt.Errorf("failed to store clip: %w", err)
	}
	result := "new"
	if res.Duplicate {
		result = "duplicate"
	}
	captures.WithLabelValues(string(cp.ContentType), result).Inc()
	c.log.Debug().
		Int64("clip_id", res.Clip.ID).
		Str("content_type", string(res.Clip.ContentType)).
		Str("detected_type", res.Clip.DetectedType).
		Bool("duplicate", res.Duplicate).
		Msg("clip captured")

	c.publish(events.Event{Kind: events.ClipCaptured, Clip: res.Clip.Clone(), ClipID: res.Clip.ID, Duplicate: res.Duplicate})

	if !res.Duplicate {
		if err := c.prune(ctx); err != nil {
			return res, fmt.Errorf("failed to cleanup: %w", err)
		}
	}
	return res, nil
}

// CapturePayload stores a clipboard payload. Images are written to the blob
// directory first.
func (c *Capturer) CapturePayload(ctx context.Context, p clipboard.Payload, appName string) (*store.CaptureResult, error) {
	switch p.Format {
	case clipboard.FormatImage:
		if c.blobs == nil {
			return nil, fmt.Errorf("no blob directory configured for image clips: %w", store.ErrInvalidInput)
		}
		path, err := c.blobs.Put("images", p.Data, "png")
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		return c.Capture(ctx, &store.CaptureInput{
			ContentType: store.ContentImage,
			ImagePath:   path,
			AppName:     appName,
		})
	default:
		if isBinary(p.Data) {
			return nil, ErrBinary
		}
		text := string(p.Data)
		if strings.TrimSpace(text) == "" {
			return nil, clipboard.ErrEmpty
		}
		return c.Capture(ctx, &store.CaptureInput{
			ContentType: store.ContentText,
			ContentText: text,
			AppName:     appName,
		})
	}
}

// Watch captures every change delivered by board until ctx is done. Errors
// on individual payloads are logged and skipped.
func (c *Capturer) Watch(ctx context.Context, board clipboard.Clipboard) error {
	c.log.Info().Int("history_limit", c.historyLimit).Str("duplicate_policy", string(c.policy)).Msg("watching clipboard")
	for p := range board.Watch(ctx) {
		res, err := c.CapturePayload(ctx, p, "")
		switch {
		case errors.Is(err, clipboard.ErrEmpty), errors.Is(err, ErrBinary):
			c.log.Debug().Err(err).Str("format", p.Format.String()).Msg("payload skipped")
		case err != nil:
			c.log.Warn().Err(err).Str("format", p.Format.String()).Msg("capture failed")
		default:
			c.log.Info().Int64("clip_id", res.Clip.ID).Bool("duplicate", res.Duplicate).Msg("captured")
		}
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// prune removes the oldest unprotected clips beyond the history limit,
// together with their attachments.
func (c *Capturer) prune(ctx context.Context) error {
	count, err := c.clips.Count(ctx)
	if err != nil {
		return err
	}
	if count <= c.historyLimit {
		return nil
	}

	removed, err := c.clips.DeleteOldest(ctx, count-c.historyLimit)
	if err != nil {
		return err
	}
	pruned.Add(float64(len(removed)))
	for _, clip := range removed {
		if c.blobs != nil {
			if err := c.blobs.RemoveClip(clip); err != nil {
				c.log.Warn().Err(err).Int64("clip_id", clip.ID).Msg("failed to remove attachments")
			}
		}
		c.publish(events.Event{Kind: events.ClipDeleted, ClipID: clip.ID})
	}
	if len(removed) > 0 {
		c.log.Debug().Int("removed", len(removed)).Msg("history pruned")
	}
	return nil
}

func (c *Capturer) publish(evt events.Event) {
	if c.bus != nil {
		c.bus.Publish(evt)
	}
}
