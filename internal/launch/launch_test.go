package launch

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// recordExec swaps execCommand for one that records the program and runs
// "true" instead.
func recordExec(t *testing.T) *[][]string {
	t.Helper()
	var calls [][]string
	orig := execCommand
	execCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		calls = append(calls, append([]string{name}, args...))
		return exec.CommandContext(ctx, "true")
	}
	t.Cleanup(func() { execCommand = orig })
	return &calls
}

func TestOpen(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses true(1)")
	}
	calls := recordExec(t)
	l := New()

	if err := l.Open(context.Background(), "  https://example.com  "); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("expected 1 command, got %d", len(*calls))
	}
	got := (*calls)[0]
	if got[len(got)-1] != "https://example.com" {
		t.Errorf("expected trimmed target as last arg, got %v", got)
	}

	if err := l.Open(context.Background(), " "); err == nil {
		t.Error("expected error for empty target")
	}
}

func TestEditor(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "nano -w")

	if got := New().Editor(); len(got) != 2 || got[0] != "nano" {
		t.Errorf("Editor() = %v, want [nano -w]", got)
	}
	if got := New(WithEditor("code --wait")).Editor(); got[0] != "code" {
		t.Errorf("Editor() = %v, want configured editor first", got)
	}

	t.Setenv("EDITOR", "")
	if got := New().Editor(); got[0] != "vi" {
		t.Errorf("Editor() = %v, want vi fallback", got)
	}
}

func TestEdit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script editor")
	}
	script := filepath.Join(t.TempDir(), "fake-editor")
	body := "#!/bin/sh\nprintf 'edited:' > \"$1.tmp\"\ncat \"$1\" >> \"$1.tmp\"\nmv \"$1.tmp\" \"$1\"\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := New(WithEditor(script)).Edit(context.Background(), "hello", "md")
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if got != "edited:hello" {
		t.Errorf("Edit() = %q, want %q", got, "edited:hello")
	}
}

func TestEdit_EditorFails(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses false(1)")
	}
	if _, err := New(WithEditor("false")).Edit(context.Background(), "x", ""); err == nil {
		t.Error("expected error when the editor exits non-zero")
	}
}

func TestPaste(t *testing.T) {
	if err := New().Paste(context.Background()); !errors.Is(err, ErrNoPasteCommand) {
		t.Errorf("Paste() error = %v, want ErrNoPasteCommand", err)
	}

	calls := recordExec(t)
	if err := New(WithPasteCommand("xdotool key ctrl+v")).Paste(context.Background()); err != nil {
		t.Fatalf("Paste() error = %v", err)
	}
	if len(*calls) != 1 || (*calls)[0][1] != "-c" || (*calls)[0][2] != "xdotool key ctrl+v" {
		t.Errorf("unexpected paste invocation: %v", *calls)
	}
}
