// Package events is the in-process pub-sub used to announce clipboard
// changes to the history store, the embedding worker and the UI.
package events

import (
	"sync"
	"time"

	"github.com/yiblet/clipvault/internal/store"
)

// Kind is the type of a clip event.
type Kind string

const (
	// ClipCaptured carries a newly stored or bumped clip.
	ClipCaptured Kind = "clip_captured"
	// ClipUpdated carries a clip whose content changed.
	ClipUpdated Kind = "clip_updated"
	// ClipDeleted carries only the id of a removed clip.
	ClipDeleted Kind = "clip_deleted"
	// ClipsCleared announces that every clip was removed.
	ClipsCleared Kind = "clips_cleared"
)

// Event is one notification. Clip is a full row for captured and updated
// events.
type Event struct {
	Kind      Kind
	Clip      *store.Clip
	ClipID    int64
	Duplicate bool
	At        time.Time
}

// Bus fans each published event out to every subscriber. Publishing never
// blocks: a subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	next   int
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// function unsubscribes and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers evt to every subscriber that has room and returns how
// many received it.
func (b *Bus) Publish(evt Event) int {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- evt:
			delivered++
		default:
		}
	}
	return delivered
}

// Close closes every subscriber channel. Later subscriptions get a closed
// channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
