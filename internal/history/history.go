// Package history keeps the in-memory window of clips shown to a user and
// walks it through two paginated traversals: Browse, newest first, and
// Search, ranked by a query.
//
// Every transition is a short reducer run under one mutex. Backend calls
// happen outside the lock and re-enter through the same reducers, so a live
// capture can land while a page is in flight without tearing state. Each
// fetch carries the generation, mode and query it was issued for; a response
// whose tag no longer matches is dropped.
package history

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/events"
	"github.com/yiblet/clipvault/internal/search"
	"github.com/yiblet/clipvault/internal/store"
)

// Mode is the traversal the cache currently holds.
type Mode int

const (
	Browse Mode = iota
	Search
)

func (m Mode) String() string {
	if m == Search {
		return "search"
	}
	return "browse"
}

// RecapturePolicy decides what happens when a live capture arrives for a
// clip that is already cached.
type RecapturePolicy string

const (
	// MoveToFront replaces the entry with the new row and moves it to the
	// top of the list.
	MoveToFront RecapturePolicy = "move_to_front"
	// UpdateInPlace replaces the entry where it is.
	UpdateInPlace RecapturePolicy = "update_in_place"
)

// ParseRecapturePolicy maps a config value to a policy. Empty means
// MoveToFront.
func ParseRecapturePolicy(s string) (RecapturePolicy, error) {
	switch RecapturePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MoveToFront:
		return MoveToFront, nil
	case UpdateInPlace:
		return UpdateInPlace, nil
	}
	return "", fmt.Errorf("unknown recapture policy %q: %w", s, store.ErrInvalidInput)
}

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 50

// Backend is the storage side of the history store.
type Backend interface {
	RecentClips(ctx context.Context, limit, offset int) ([]*store.Clip, error)
	SearchClips(ctx context.Context, req *search.Request) ([]*store.Clip, error)
	ToggleFavorite(ctx context.Context, id int64) (bool, error)
	TogglePin(ctx context.Context, id int64) (bool, error)
	DeleteClip(ctx context.Context, id int64) error
	ClearAllClips(ctx context.Context) error
}

// SearchOptions are passed through to every search page.
type SearchOptions struct {
	ContentTypes []store.ContentType
	Semantic     bool
	Threshold    *float64
}

// State is a copy of the store's state at one instant.
type State struct {
	Clips   []*store.Clip
	Mode    Mode
	Query   string
	Offset  int
	HasMore bool
	Loading bool
	// Err is the last backend failure, cleared by the next successful fetch.
	Err string
}

// tag identifies the context a fetch was issued in.
type tag struct {
	generation uint64
	mode       Mode
	query      string
}

// Store is the history cache. The zero value is not usable; call New.
type Store struct {
	backend  Backend
	pageSize int
	policy   RecapturePolicy
	search   SearchOptions
	log      zerolog.Logger
	onChange func(State)

	mu         sync.Mutex
	clips      []*store.Clip
	mode       Mode
	query      string
	offset     int
	hasMore    bool
	loading    bool
	err        string
	generation uint64
	toggleSeq  uint64
	toggles    map[toggleKey]uint64
}

// toggleKey names a clip flag; toggles maps it to the sequence number of
// its newest unresolved flip.
type toggleKey struct {
	id    int64
	field string
}

// Option configures a Store.
type Option func(*Store)

func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithRecapturePolicy(p RecapturePolicy) Option {
	return func(s *Store) { s.policy = p }
}

func WithSearchOptions(o SearchOptions) Option {
	return func(s *Store) { s.search = o }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithListener registers fn to receive a snapshot after every change. fn
// runs outside the store's lock and may call back into the store.
func WithListener(fn func(State)) Option {
	return func(s *Store) { s.onChange = fn }
}

// New creates a store in Browse mode with an empty cache.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		pageSize: DefaultPageSize,
		policy:   MoveToFront,
		log:      zerolog.Nop(),
		hasMore:  true,
		toggles:  make(map[toggleKey]uint64),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	clips := make([]*store.Clip, len(s.clips))
	for i, c := range s.clips {
		clips[i] = c.Clone()
	}
	return State{
		Clips:   clips,
		Mode:    s.mode,
		Query:   s.query,
		Offset:  s.offset,
		HasMore: s.hasMore,
		Loading: s.loading,
		Err:     s.err,
	}
}

// update runs fn under the lock and notifies the listener if fn reports a
// change.
func (s *Store) update(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	var st State
	if changed && s.onChange != nil {
		st = s.snapshotLocked()
	}
	s.mu.Unlock()
	if changed && s.onChange != nil {
		s.onChange(st)
	}
}

func (s *Store) currentTagLocked() tag {
	return tag{generation: s.generation, mode: s.mode, query: s.query}
}

// resetLocked switches to mode/query with an empty cache and a fresh
// generation, and marks the first page as loading.
func (s *Store) resetLocked(mode Mode, query string) tag {
	s.generation++
	s.mode = mode
	s.query = query
	s.clips = nil
	s.offset = 0
	s.hasMore = true
	s.loading = true
	s.err = ""
	return s.currentTagLocked()
}

// EnterSearch switches to Search(query) and loads its first page. A blank
// query exits search instead.
func (s *Store) EnterSearch(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ExitSearch(ctx)
	}
	var t tag
	s.update(func() bool {
		t = s.resetLocked(Search, query)
		return true
	})
	return s.fetchFirst(ctx, t)
}

// ExitSearch returns to Browse and loads the newest page. It does nothing
// when already browsing.
func (s *Store) ExitSearch(ctx context.Context) error {
	var t tag
	leaving := false
	s.update(func() bool {
		if s.mode != Search {
			return false
		}
		leaving = true
		t = s.resetLocked(Browse, "")
		return true
	})
	if !leaving {
		return nil
	}
	return s.fetchFirst(ctx, t)
}

// Refresh discards the cache and reloads the first page of the current
// mode.
func (s *Store) Refresh(ctx context.Context) error {
	var t tag
	s.update(func() bool {
		t = s.resetLocked(s.mode, s.query)
		return true
	})
	return s.fetchFirst(ctx, t)
}

func (s *Store) fetchFirst(ctx context.Context, t tag) error {
	rows, err := s.fetch(ctx, t, s.pageSize, 0)
	var out error
	s.update(func() bool {
		if t != s.currentTagLocked() {
			staleResponses.Inc()
			return false
		}
		s.loading = false
		if err != nil {
			s.err = err.Error()
			out = err
			return true
		}
		// Live captures prepended while the page was in flight stay in
		// front. Those the page did not include shift the backend rows
		// down by one each.
		live := s.clips
		s.clips = nil
		s.appendLocked(live)
		missed := len(s.clips)
		for _, c := range rows {
			for _, l := range live {
				if l.ID == c.ID {
					missed--
					break
				}
			}
		}
		s.appendLocked(rows)
		s.offset = len(rows) + missed
		s.hasMore = len(rows) == s.pageSize
		return true
	})
	return out
}

// LoadMore appends the next page of the current mode. It returns false
// without fetching when there is nothing more to load or a fetch is already
// in flight.
func (s *Store) LoadMore(ctx context.Context, limit int) (bool, error) {
	if limit <= 0 {
		limit = s.pageSize
	}
	var (
		t      tag
		offset int
		start  bool
	)
	s.update(func() bool {
		if !s.hasMore || s.loading {
			return false
		}
		s.loading = true
		t = s.currentTagLocked()
		offset = s.offset
		start = true
		return true
	})
	if !start {
		return false, nil
	}

	rows, err := s.fetch(ctx, t, limit, offset)
	var out error
	s.update(func() bool {
		if t != s.currentTagLocked() {
			staleResponses.Inc()
			return false
		}
		s.loading = false
		if err != nil {
			s.err = err.Error()
			out = err
			return true
		}
		s.err = ""
		s.appendLocked(rows)
		s.offset += len(rows)
		s.hasMore = len(rows) == limit
		return true
	})
	return true, out
}

// appendLocked adds rows that are not already cached. A row can already be
// cached when a live capture was prepended while the page was in flight.
func (s *Store) appendLocked(rows []*store.Clip) {
	seen := make(map[int64]struct{}, len(s.clips))
	for _, c := range s.clips {
		seen[c.ID] = struct{}{}
	}
	for _, c := range rows {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		s.clips = append(s.clips, c)
	}
}

func (s *Store) fetch(ctx context.Context, t tag, limit, offset int) ([]*store.Clip, error) {
	var (
		rows []*store.Clip
		err  error
	)
	if t.mode == Search {
		rows, err = s.backend.SearchClips(ctx, &search.Request{
			Query:        t.query,
			ContentTypes: s.search.ContentTypes,
			Limit:        limit,
			Offset:       offset,
			Semantic:     s.search.Semantic,
			Threshold:    s.search.Threshold,
		})
	} else {
		rows, err = s.backend.RecentClips(ctx, limit, offset)
	}
	if err != nil {
		fetches.WithLabelValues(t.mode.String(), "error").Inc()
		s.log.Warn().Err(err).Str("mode", t.mode.String()).Int("offset", offset).Msg("history fetch failed")
		return nil, err
	}
	fetches.WithLabelValues(t.mode.String(), "ok").Inc()
	return rows, nil
}

func (s *Store) indexLocked(id int64) int {
	for i, c := range s.clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// ToggleFavorite flips the cached flag at once, then confirms with the
// backend. On failure the flag is restored and the error surfaced.
func (s *Store) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	return s.toggle(ctx, id, "favorite", s.backend.ToggleFavorite, func(c *store.Clip) *bool { return &c.IsFavorite })
}

// TogglePin is ToggleFavorite for the pinned flag.
func (s *Store) TogglePin(ctx context.Context, id int64) (bool, error) {
	return s.toggle(ctx, id, "pin", s.backend.TogglePin, func(c *store.Clip) *bool { return &c.IsPinned })
}

func (s *Store) toggle(
	ctx context.Context,
	id int64,
	field string,
	call func(context.Context, int64) (bool, error),
	flag func(*store.Clip) *bool,
) (bool, error) {
	var (
		prev   bool
		cached bool
		mine   uint64
	)
	key := toggleKey{id: id, field: field}
	s.update(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		cached = true
		f := flag(s.clips[i])
		prev = *f
		*f = !prev
		s.toggleSeq++
		mine = s.toggleSeq
		s.toggles[key] = mine
		return true
	})

	value, err := call(ctx, id)
	s.update(func() bool {
		i := s.indexLocked(id)
		// A later toggle of the same flag owns the cached value until it
		// resolves.
		latest := !cached || s.toggles[key] == mine
		if cached && latest {
			delete(s.toggles, key)
		}
		if err != nil {
			s.err = err.Error()
			if cached && latest && i >= 0 {
				*flag(s.clips[i]) = prev
				rollbacks.WithLabelValues(field).Inc()
			}
			return true
		}
		if latest && i >= 0 {
			*flag(s.clips[i]) = value
			return true
		}
		return false
	})
	if err != nil {
		s.log.Warn().Err(err).Int64("clip_id", id).Str("field", field).Msg("toggle failed")
		return prev, err
	}
	return value, nil
}

// Delete removes the clip from the backend, then drops the cached entry and
// shrinks offset by one so the next page starts at the right row.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.backend.DeleteClip(ctx, id); err != nil {
		s.update(func() bool {
			s.err = err.Error()
			return true
		})
		return err
	}
	s.update(func() bool { return s.removeLocked(id) })
	return nil
}

func (s *Store) removeLocked(id int64) bool {
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.clips = append(s.clips[:i], s.clips[i+1:]...)
	if s.offset > 0 {
		s.offset--
	}
	return true
}

// ClearAll removes every clip from the backend and empties the cache.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.backend.ClearAllClips(ctx); err != nil {
		s.update(func() bool {
			s.err = err.Error()
			return true
		})
		return err
	}
	s.update(func() bool {
		s.clearLocked()
		return true
	})
	return nil
}

func (s *Store) clearLocked() {
	s.generation++
	s.clips = nil
	s.offset = 0
	s.hasMore = false
	s.loading = false
	s.err = ""
}

// AddNewClip merges a live capture. While browsing, a new clip is prepended
// and offset grows by one; a cached clip is handled by the recapture
// policy. While searching, only a cached clip is refreshed in place, since
// a new row has no rank among the results.
func (s *Store) AddNewClip(clip *store.Clip) {
	if clip == nil {
		return
	}
	clip = clip.Clone()
	s.update(func() bool {
		i := s.indexLocked(clip.ID)
		switch {
		case s.mode == Search && i < 0:
			liveEvents.WithLabelValues("ignored").Inc()
			return false
		case s.mode == Search, i >= 0 && s.policy == UpdateInPlace:
			s.clips[i] = clip
			liveEvents.WithLabelValues("updated").Inc()
		case i >= 0:
			copy(s.clips[1:i+1], s.clips[:i])
			s.clips[0] = clip
			liveEvents.WithLabelValues("moved").Inc()
		default:
			s.clips = append([]*store.Clip{clip}, s.clips...)
			s.offset++
			liveEvents.WithLabelValues("prepended").Inc()
		}
		return true
	})
}

// Apply merges one bus event into the cache.
func (s *Store) Apply(evt events.Event) {
	switch evt.Kind {
	case events.ClipCaptured:
		s.AddNewClip(evt.Clip)
	case events.ClipUpdated:
		if evt.Clip == nil {
			return
		}
		clip := evt.Clip.Clone()
		s.update(func() bool {
			i := s.indexLocked(clip.ID)
			if i < 0 {
				return false
			}
			s.clips[i] = clip
			return true
		})
	case events.ClipDeleted:
		s.update(func() bool { return s.removeLocked(evt.ClipID) })
	case events.ClipsCleared:
		s.update(func() bool {
			s.clearLocked()
			return true
		})
	}
}

// Consume applies events until ctx is done or the channel closes.
func (s *Store) Consume(ctx context.Context, in <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-in:
			if !ok {
				return
			}
			s.Apply(evt)
		}
	}
}
