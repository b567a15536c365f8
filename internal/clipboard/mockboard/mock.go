// Package mockboard provides an in-memory clipboard for tests and demos.
package mockboard

import (
	"context"
	"sync"

	"github.com/yiblet/clipvault/internal/clipboard"
)

// MockClipboard implements clipboard.Clipboard in memory. Set and WriteText
// notify every active watcher.
type MockClipboard struct {
	mu       sync.Mutex
	current  clipboard.Payload
	has      bool
	watchers map[chan clipboard.Payload]struct{}
	writes   []string
}

// New creates an empty MockClipboard.
func New() *MockClipboard {
	return &MockClipboard{watchers: make(map[chan clipboard.Payload]struct{})}
}

func (m *MockClipboard) Read(ctx context.Context) (clipboard.Payload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.has || len(m.current.Data) == 0 {
		return clipboard.Payload{}, clipboard.ErrEmpty
	}
	return clipboard.Payload{Format: m.current.Format, Data: append([]byte(nil), m.current.Data...)}, nil
}

func (m *MockClipboard) WriteText(ctx context.Context, text string) error {
	m.mu.Lock()
	m.writes = append(m.writes, text)
	m.mu.Unlock()
	m.Set(clipboard.Payload{Format: clipboard.FormatText, Data: []byte(text)})
	return nil
}

// Set replaces the clipboard as if another application had copied p.
func (m *MockClipboard) Set(p clipboard.Payload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = p
	m.has = true
	for ch := range m.watchers {
		select {
		case ch <- p:
		default:
		}
	}
}

// SetText is Set for a text payload.
func (m *MockClipboard) SetText(text string) {
	m.Set(clipboard.Payload{Format: clipboard.FormatText, Data: []byte(text)})
}

// Writes returns every text passed to WriteText, oldest first.
func (m *MockClipboard) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

func (m *MockClipboard) Watch(ctx context.Context) <-chan clipboard.Payload {
	ch := make(chan clipboard.Payload, 16)
	m.mu.Lock()
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()
	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, ch)
		close(ch)
		m.mu.Unlock()
	}()
	return ch
}

// IsSupported always returns true for the mock clipboard.
func (m *MockClipboard) IsSupported() bool {
	return true
}
