// Package clipboard defines the system clipboard boundary: reading the
// current payload, writing text back, and watching for changes.
package clipboard

import (
	"bytes"
	"context"
	"errors"
)

// Format is the kind of data a payload carries.
type Format int

const (
	FormatText Format = iota
	FormatImage
)

func (f Format) String() string {
	if f == FormatImage {
		return "image"
	}
	return "text"
}

// ErrEmpty is returned by Read when the clipboard holds nothing usable.
var ErrEmpty = errors.New("clipboard is empty")

// Payload is one clipboard value. Image data is PNG encoded.
type Payload struct {
	Format Format
	Data   []byte
}

// Equal reports whether two payloads carry the same bytes in the same format.
func (p Payload) Equal(o Payload) bool {
	return p.Format == o.Format && bytes.Equal(p.Data, o.Data)
}

// Clipboard is implemented by the system clipboard and by test doubles.
type Clipboard interface {
	// Read returns the current payload, preferring text over image.
	Read(ctx context.Context) (Payload, error)

	// WriteText replaces the clipboard with text.
	WriteText(ctx context.Context, text string) error

	// Watch delivers each new payload until ctx is done, then closes the
	// channel.
	Watch(ctx context.Context) <-chan Payload

	// IsSupported reports whether clipboard access works on this system.
	IsSupported() bool
}
