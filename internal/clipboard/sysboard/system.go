// Package sysboard implements the system clipboard. It uses the native
// clipboard through golang.design/x/clipboard when that initializes, and
// otherwise falls back to platform commands: pbcopy/pbpaste on macOS and
// xclip or xsel on Linux.
package sysboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/yiblet/clipvault/internal/clipboard"
	xclip "golang.design/x/clipboard"
)

// PollInterval is how often the command fallback checks for changes.
const PollInterval = 500 * time.Millisecond

// SystemClipboard implements clipboard.Clipboard for the host system.
type SystemClipboard struct {
	native bool
}

var (
	initOnce sync.Once
	initErr  error
)

// New creates a SystemClipboard, initializing the native backend once per
// process.
func New() *SystemClipboard {
	initOnce.Do(func() { initErr = xclip.Init() })
	return &SystemClipboard{native: initErr == nil}
}

// Native reports whether the native backend is in use.
func (s *SystemClipboard) Native() bool { return s.native }

// IsSupported returns true if clipboard operations are supported on this system
func (s *SystemClipboard) IsSupported() bool {
	if s.native {
		return true
	}
	switch runtime.GOOS {
	case "darwin":
		_, err1 := exec.LookPath("pbcopy")
		_, err2 := exec.LookPath("pbpaste")
		return err1 == nil && err2 == nil
	case "linux":
		if _, err := exec.LookPath("xclip"); err == nil {
			return true
		}
		_, err := exec.LookPath("xsel")
		return err == nil
	default:
		return false
	}
}

// Read returns the clipboard's text, or its image when there is no text.
func (s *SystemClipboard) Read(ctx context.Context) (clipboard.Payload, error) {
	if s.native {
		if data := xclip.Read(xclip.FmtText); len(data) > 0 {
			return clipboard.Payload{Format: clipboard.FormatText, Data: data}, nil
		}
		if data := xclip.Read(xclip.FmtImage); len(data) > 0 {
			return clipboard.Payload{Format: clipboard.FormatImage, Data: data}, nil
		}
		return clipboard.Payload{}, clipboard.ErrEmpty
	}

	data, err := readCommand(ctx)
	if err != nil {
		return clipboard.Payload{}, err
	}
	if len(data) == 0 {
		return clipboard.Payload{}, clipboard.ErrEmpty
	}
	return clipboard.Payload{Format: clipboard.FormatText, Data: data}, nil
}

// WriteText replaces the clipboard with text.
func (s *SystemClipboard) WriteText(ctx context.Context, text string) error {
	if s.native {
		xclip.Write(xclip.FmtText, []byte(text))
		return nil
	}
	return writeCommand(ctx, bytes.NewReader([]byte(text)))
}

// Watch delivers text and image changes until ctx is done.
func (s *SystemClipboard) Watch(ctx context.Context) <-chan clipboard.Payload {
	out := make(chan clipboard.Payload, 8)
	if !s.native {
		go s.poll(ctx, out)
		return out
	}

	text := xclip.Watch(ctx, xclip.FmtText)
	image := xclip.Watch(ctx, xclip.FmtImage)
	go func() {
		defer close(out)
		for text != nil || image != nil {
			var p clipboard.Payload
			select {
			case data, ok := <-text:
				if !ok {
					text = nil
					continue
				}
				p = clipboard.Payload{Format: clipboard.FormatText, Data: data}
			case data, ok := <-image:
				if !ok {
					image = nil
					continue
				}
				p = clipboard.Payload{Format: clipboard.FormatImage, Data: data}
			case <-ctx.Done():
				return
			}
			select {
			case out <- p:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// poll reads the clipboard on a ticker and emits when it changes.
func (s *SystemClipboard) poll(ctx context.Context, out chan<- clipboard.Payload) {
	defer close(out)
	var last clipboard.Payload
	if p, err := s.Read(ctx); err == nil {
		last = p
	}
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p, err := s.Read(ctx)
			if err != nil || p.Equal(last) {
				continue
			}
			last = p
			select {
			case out <- p:
			case <-ctx.Done():
				return
			}
		}
	}
}

func readCommand(ctx context.Context) ([]byte, error) {
	switch runtime.GOOS {
	case "darwin":
		return runRead(ctx, "pbpaste")
	case "linux":
		if data, err := runRead(ctx, "xclip", "-selection", "clipboard", "-o"); err == nil {
			return data, nil
		}
		data, err := runRead(ctx, "xsel", "--clipboard", "--output")
		if err != nil {
			return nil, fmt.Errorf("failed to read clipboard (tried xclip and xsel): %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("clipboard operations not supported on %s", runtime.GOOS)
	}
}

func writeCommand(ctx context.Context, r io.Reader) error {
	switch runtime.GOOS {
	case "darwin":
		if err := runWrite(ctx, r, "pbcopy"); err != nil {
			return fmt.Errorf("failed to run pbcopy: %w", err)
		}
		return nil
	case "linux":
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		if err := runWrite(ctx, bytes.NewReader(data), "xclip", "-selection", "clipboard"); err == nil {
			return nil
		}
		if err := runWrite(ctx, bytes.NewReader(data), "xsel", "--clipboard", "--input"); err != nil {
			return fmt.Errorf("failed to write clipboard (tried xclip and xsel): %w", err)
		}
		return nil
	default:
		return fmt.Errorf("clipboard operations not supported on %s", runtime.GOOS)
	}
}

// runRead executes a command and returns its output
func runRead(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// runWrite executes a command with r as stdin
func runWrite(ctx context.Context, r io.Reader, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r
	return cmd.Run()
}
