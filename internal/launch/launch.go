// Package launch hands clips to other programs: the desktop opener for
// URLs, mail and phone links and files, the user's editor, and an optional
// paste command.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNoPasteCommand is returned by Paste when no paste_command is set.
var ErrNoPasteCommand = errors.New("no paste command configured")

// execCommand is a variable so tests can replace the spawned programs.
var execCommand = exec.CommandContext

// Launcher runs external programs on behalf of actions.
type Launcher struct {
	editor       string
	pasteCommand string
	log          zerolog.Logger
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithEditor sets the editor command. It may carry arguments, e.g.
// "code --wait". Without it $VISUAL, then $EDITOR, then vi is used.
func WithEditor(cmd string) Option {
	return func(l *Launcher) { l.editor = cmd }
}

// WithPasteCommand sets the shell command run after copying to simulate a
// paste keystroke, e.g. "xdotool key ctrl+v".
func WithPasteCommand(cmd string) Option {
	return func(l *Launcher) { l.pasteCommand = cmd }
}

func WithLogger(log zerolog.Logger) Option {
	return func(l *Launcher) { l.log = log }
}

func New(opts ...Option) *Launcher {
	l := &Launcher{log: zerolog.Nop()}
	for _, o := range opts {
		o(l)
	}
	return l
}

// opener returns the platform's "open with default application" command.
func opener() (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", nil
	case "windows":
		return "cmd", []string{"/c", "start", ""}
	default:
		return "xdg-open", nil
	}
}

// Open hands target (a URL, mailto:/tel: link or file path) to the default
// application. It does not wait for the application to exit.
func (l *Launcher) Open(ctx context.Context, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("nothing to open")
	}
	name, args := opener()
	cmd := execCommand(context.WithoutCancel(ctx), name, append(args, target)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	l.log.Debug().Str("opener", name).Str("target", target).Msg("opened")
	go func() { _ = cmd.Wait() }()
	return nil
}

// Editor returns the editor command line that Edit will run.
func (l *Launcher) Editor() []string {
	for _, cand := range []string{l.editor, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if f := strings.Fields(cand); len(f) > 0 {
			return f
		}
	}
	return []string{"vi"}
}

// Edit writes text to a temporary file, runs the editor on it attached to
// the terminal, and returns the saved contents. ext picks the temp file
// suffix so editors can highlight, e.g. "json".
func (l *Launcher) Edit(ctx context.Context, text, ext string) (string, error) {
	pattern := "clipvault-*.txt"
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		pattern = "clipvault-*." + ext
	}
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	argv := l.Editor()
	cmd := execCommand(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor %s failed: %w", argv[0], err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}
	return string(data), nil
}

// Paste runs the configured paste command through the shell.
func (l *Launcher) Paste(ctx context.Context) error {
	if strings.TrimSpace(l.pasteCommand) == "" {
		return ErrNoPasteCommand
	}
	out, err := execCommand(ctx, "sh", "-c", l.pasteCommand).CombinedOutput()
	if err != nil {
		return fmt.Errorf("paste command failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
