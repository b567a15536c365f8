package store

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestContentTypeValid(t *testing.T) {
	tests := []struct {
		ct   ContentType
		want bool
	}{
		{ContentText, true},
		{ContentHTML, true},
		{ContentRTF, true},
		{ContentImage, true},
		{ContentFiles, true},
		{ContentOffice, true},
		{"", false},
		{"video", false},
	}
	for _, tt := range tests {
		if got := tt.ct.Valid(); got != tt.want {
			t.Errorf("ContentType(%q).Valid() = %v, want %v", tt.ct, got, tt.want)
		}
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := map[string]DuplicatePolicy{
		"":        DuplicateBump,
		"bump":    DuplicateBump,
		"insert":  DuplicateInsert,
		" INSERT": DuplicateInsert,
		"garbage": DuplicateBump,
	}
	for in, want := range tests {
		if got := ParseDuplicatePolicy(in); got != want {
			t.Errorf("ParseDuplicatePolicy(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestHashContent(t *testing.T) {
	a := HashContent(&CaptureInput{ContentType: ContentText, ContentText: "hello"})
	b := HashContent(&CaptureInput{ContentType: ContentText, ContentText: "hello", AppName: "other"})
	if a != b {
		t.Errorf("hash should ignore app name: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}

	c := HashContent(&CaptureInput{ContentType: ContentHTML, ContentText: "hello"})
	if a == c {
		t.Error("hash should depend on content type")
	}

	f1 := HashContent(&CaptureInput{ContentType: ContentFiles, FilePaths: []string{"/a", "/b"}})
	f2 := HashContent(&CaptureInput{ContentType: ContentFiles, FilePaths: []string{"/b", "/a"}})
	if f1 == f2 {
		t.Error("file order should change the hash")
	}
}

func TestEmbeddingStale(t *testing.T) {
	now := time.Now()
	clip := &Clip{ID: 1, UpdatedAt: now}

	fresh := &Embedding{ClipID: 1, UpdatedAt: now.Add(time.Second)}
	if fresh.Stale(clip) {
		t.Error("embedding newer than clip should not be stale")
	}

	old := &Embedding{ClipID: 1, UpdatedAt: now.Add(-time.Second)}
	if !old.Stale(clip) {
		t.Error("embedding older than clip should be stale")
	}

	var missing *Embedding
	if !missing.Stale(clip) {
		t.Error("missing embedding should be stale")
	}
}

func TestClipClone(t *testing.T) {
	orig := &Clip{ID: 7, FilePaths: []string{"/tmp/a"}}
	cp := orig.Clone()
	cp.FilePaths[0] = "/tmp/b"
	cp.IsFavorite = true

	if orig.FilePaths[0] != "/tmp/a" {
		t.Errorf("clone shares FilePaths backing array")
	}
	if orig.IsFavorite {
		t.Errorf("clone shares flags")
	}

	var nilClip *Clip
	if nilClip.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("clip", int64(42))
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound(%v) = false", err)
	}
	if err.Error() != "clip not found: 42: not found" {
		t.Errorf("unexpected message %q", err.Error())
	}

	wrapped := fmt.Errorf("failed to delete clip: %w", err)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped error lost ErrNotFound")
	}
	if IsNotFound(errors.New("boom")) {
		t.Error("plain error reported as not found")
	}
}
