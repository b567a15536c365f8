package dbstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/yiblet/clipvault/internal/store"
)

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	st, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	cleanup := func() {
		st.Close()
	}

	return st, cleanup
}

func captureText(t *testing.T, st *SQLiteStore, text string, ts time.Time) *store.Clip {
	t.Helper()
	res, err := st.Clips().Capture(context.Background(), &store.CaptureInput{
		ContentType: store.ContentText,
		ContentText: text,
		Timestamp:   ts,
	}, store.DuplicateInsert)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	return res.Clip
}

// TestNewSQLiteStore tests database initialization
func TestNewSQLiteStore(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	version, err := st.Config().Get(ctx, "db_version")
	if err != nil {
		t.Fatalf("failed to get db_version: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("expected db_version=%s, got %s", SchemaVersion, version)
	}

	limit, err := st.Config().Get(ctx, "history_limit")
	if err != nil {
		t.Fatalf("failed to get history_limit: %v", err)
	}
	if limit != "1000" {
		t.Errorf("expected history_limit=1000, got %s", limit)
	}

	// Reopening must not fail on the existing schema.
	st2, err := NewSQLiteStore(st.Path())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	st2.Close()
}

func TestSchemaObjects(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()

	want := map[string]string{
		"clips":                           "table",
		"tags":                            "table",
		"collections":                     "table",
		"clip_tags":                       "table",
		"clip_collections":                "table",
		"embeddings":                      "table",
		"clips_fts":                       "table",
		"clips_ai":                        "trigger",
		"clips_ad":                        "trigger",
		"clips_au":                        "trigger",
		"idx_clips_updated_at":            "index",
		"idx_clips_content_type":          "index",
		"idx_clips_pinned_favorite":       "index",
		"idx_clips_content_hash":          "index",
		"idx_clips_access_count":          "index",
		"idx_clip_tags_tag":               "index",
		"idx_clip_collections_collection": "index",
	}

	for name, typ := range want {
		var count int64
		err := st.db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE name = ? AND type = ?", name, typ).Scan(&count).Error
		if err != nil {
			t.Fatalf("sqlite_master query error = %v", err)
		}
		if count != 1 {
			t.Errorf("expected %s %s to exist", typ, name)
		}
	}

	// The hash index must not be unique.
	var unique int
	if err := st.db.Raw("SELECT \"unique\" FROM pragma_index_list('clips') WHERE name = 'idx_clips_content_hash'").Scan(&unique).Error; err != nil {
		t.Fatalf("pragma_index_list error = %v", err)
	}
	if unique != 0 {
		t.Error("idx_clips_content_hash must not be unique")
	}
}

func TestClipStore_Capture(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()

	tests := []struct {
		name  string
		input *store.CaptureInput
	}{
		{
			name:  "plain text",
			input: &store.CaptureInput{ContentType: store.ContentText, ContentText: "hello", DetectedType: "text"},
		},
		{
			name: "url with metadata",
			input: &store.CaptureInput{
				ContentType:  store.ContentText,
				ContentText:  "https://example.com/a",
				DetectedType: "url",
				Metadata:     `{"url":"https://example.com/a","domain":"example.com","protocol":"https"}`,
				AppName:      "Firefox",
			},
		},
		{
			name: "files",
			input: &store.CaptureInput{
				ContentType: store.ContentFiles,
				ContentText: "/tmp/a.txt\n/tmp/b.txt",
				FilePaths:   []string{"/tmp/a.txt", "/tmp/b.txt"},
			},
		},
		{
			name:  "malformed metadata is stored verbatim",
			input: &store.CaptureInput{ContentType: store.ContentText, ContentText: "x", Metadata: "not json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := st.Clips().Capture(context.Background(), tt.input, store.DuplicateInsert)
			if err != nil {
				t.Fatalf("Capture() error = %v", err)
			}
			if res.Clip.ID == 0 {
				t.Error("expected non-zero ID")
			}
			if res.Duplicate {
				t.Error("insert policy must never report a duplicate")
			}

			got, err := st.Clips().Get(context.Background(), res.Clip.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.ContentText != tt.input.ContentText {
				t.Errorf("expected content_text=%q, got %q", tt.input.ContentText, got.ContentText)
			}
			if got.Metadata != tt.input.Metadata {
				t.Errorf("expected metadata=%q, got %q", tt.input.Metadata, got.Metadata)
			}
			if len(got.FilePaths) != len(tt.input.FilePaths) {
				t.Errorf("expected %d file paths, got %d", len(tt.input.FilePaths), len(got.FilePaths))
			}
			if got.ContentHash != store.HashContent(tt.input) {
				t.Errorf("expected content hash to be computed")
			}
			if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
				t.Errorf("expected timestamps to be set")
			}
		})
	}

	if _, err := st.Clips().Capture(context.Background(), &store.CaptureInput{ContentType: "video"}, store.DuplicateBump); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown content type, got %v", err)
	}
}

func TestClipStore_DuplicatePolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("insert keeps both rows", func(t *testing.T) {
		st, cleanup := setupTestDB(t)
		defer cleanup()

		in := &store.CaptureInput{ContentType: store.ContentText, ContentText: "same"}
		a, err := st.Clips().Capture(ctx, in, store.DuplicateInsert)
		if err != nil {
			t.Fatalf("Capture() error = %v", err)
		}
		b, err := st.Clips().Capture(ctx, in, store.DuplicateInsert)
		if err != nil {
			t.Fatalf("Capture() error = %v", err)
		}
		if a.Clip.ID == b.Clip.ID {
			t.Fatal("expected two distinct rows")
		}
		if a.Clip.ContentHash != b.Clip.ContentHash {
			t.Error("expected identical hashes")
		}
		if n, _ := st.Clips().Count(ctx); n != 2 {
			t.Errorf("expected 2 rows, got %d", n)
		}
	})

	t.Run("bump refreshes the existing row", func(t *testing.T) {
		st, cleanup := setupTestDB(t)
		defer cleanup()

		first := captureText(t, st, "same", time.Now().Add(-time.Hour))
		other := captureText(t, st, "other", time.Now().Add(-time.Minute))

		res, err := st.Clips().Capture(ctx, &store.CaptureInput{
			ContentType: store.ContentText,
			ContentText: "same",
			AppName:     "Terminal",
		}, store.DuplicateBump)
		if err != nil {
			t.Fatalf("Capture() error = %v", err)
		}
		if !res.Duplicate {
			t.Fatal("expected duplicate")
		}
		if res.Clip.ID != first.ID {
			t.Errorf("expected id=%d, got %d", first.ID, res.Clip.ID)
		}
		if res.Clip.AccessCount != 1 {
			t.Errorf("expected access_count=1, got %d", res.Clip.AccessCount)
		}
		if res.Clip.AppName != "Terminal" {
			t.Errorf("expected app_name=Terminal, got %s", res.Clip.AppName)
		}
		if !res.Clip.UpdatedAt.After(first.UpdatedAt) {
			t.Error("expected updated_at to move forward")
		}
		if !res.Clip.CreatedAt.Equal(first.CreatedAt) {
			t.Error("expected created_at to be unchanged")
		}

		clips, err := st.Clips().ListRecent(ctx, &store.ListQuery{Limit: 10})
		if err != nil {
			t.Fatalf("ListRecent() error = %v", err)
		}
		if len(clips) != 2 || clips[0].ID != first.ID || clips[1].ID != other.ID {
			t.Errorf("expected bumped clip first, got %v", ids(clips))
		}
	})
}

func TestClipStore_ListRecentPagination(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	var want []int64
	for i := 0; i < 7; i++ {
		c := captureText(t, st, fmt.Sprintf("clip %d", i), base.Add(time.Duration(i)*time.Second))
		want = append([]int64{c.ID}, want...)
	}

	var got []int64
	offset := 0
	for {
		page, err := st.Clips().ListRecent(ctx, &store.ListQuery{Limit: 3, Offset: offset})
		if err != nil {
			t.Fatalf("ListRecent() error = %v", err)
		}
		got = append(got, ids(page)...)
		offset += len(page)
		if len(page) < 3 {
			break
		}
	}

	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestClipStore_ListRecentFilters(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	text := captureText(t, st, "text", time.Time{})
	img, err := st.Clips().Capture(ctx, &store.CaptureInput{ContentType: store.ContentImage, ImagePath: "/blobs/a.png"}, store.DuplicateInsert)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if _, err := st.Clips().ToggleFavorite(ctx, text.ID); err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}

	images, err := st.Clips().ListRecent(ctx, &store.ListQuery{ContentTypes: []store.ContentType{store.ContentImage}})
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(images) != 1 || images[0].ID != img.Clip.ID {
		t.Errorf("expected only the image, got %v", ids(images))
	}

	favs, err := st.Clips().ListRecent(ctx, &store.ListQuery{FavoritesOnly: true})
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(favs) != 1 || favs[0].ID != text.ID {
		t.Errorf("expected only the favorite, got %v", ids(favs))
	}
}

func TestClipStore_SearchFindsAndForgets(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	clip := captureText(t, st, "hello world", time.Time{})
	captureText(t, st, "something else", time.Time{})

	for _, q := range []string{"world", "hello world", "lo wo", "WORLD", "wo", "d"} {
		hits, err := st.Clips().Search(ctx, &store.SearchQuery{Query: q, Limit: 10})
		if err != nil {
			t.Fatalf("Search(%q) error = %v", q, err)
		}
		if len(hits) != 1 || hits[0].Clip.ID != clip.ID {
			t.Errorf("Search(%q): expected clip %d, got %d hits", q, clip.ID, len(hits))
		}
	}

	if err := st.Clips().Delete(ctx, clip.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	hits, err := st.Clips().Search(ctx, &store.SearchQuery{Query: "world", Limit: 10})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits after delete, got %d", len(hits))
	}
}

func TestClipStore_SearchSpecialCharacters(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	clip := captureText(t, st, `say "quoted" AND (x OR y) 100%_done`, time.Time{})

	for _, q := range []string{`"quoted"`, "AND (x", "OR y)", "%_", "100%"} {
		hits, err := st.Clips().Search(ctx, &store.SearchQuery{Query: q, Limit: 10})
		if err != nil {
			t.Fatalf("Search(%q) error = %v", q, err)
		}
		if len(hits) != 1 || hits[0].Clip.ID != clip.ID {
			t.Errorf("Search(%q): expected the clip, got %d hits", q, len(hits))
		}
	}
}

func TestClipStore_SearchPagination(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		captureText(t, st, fmt.Sprintf("needle %d", i), time.Time{})
	}
	captureText(t, st, "haystack", time.Time{})

	seen := map[int64]bool{}
	for offset := 0; offset < 6; offset += 2 {
		hits, err := st.Clips().Search(ctx, &store.SearchQuery{Query: "needle", Limit: 2, Offset: offset})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		for _, h := range hits {
			if seen[h.Clip.ID] {
				t.Errorf("clip %d returned twice", h.Clip.ID)
			}
			seen[h.Clip.ID] = true
		}
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 distinct hits, got %d", len(seen))
	}
}

func TestClipStore_UpdateTextReindexes(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	clip := captureText(t, st, "before edit", time.Now().Add(-time.Minute))
	updated, err := st.Clips().UpdateText(ctx, clip.ID, "after change")
	if err != nil {
		t.Fatalf("UpdateText() error = %v", err)
	}
	if !updated.UpdatedAt.After(clip.UpdatedAt) {
		t.Error("expected updated_at bump")
	}
	if updated.ContentHash == clip.ContentHash {
		t.Error("expected content hash to change")
	}

	old, _ := st.Clips().Search(ctx, &store.SearchQuery{Query: "before", Limit: 10})
	if len(old) != 0 {
		t.Errorf("expected stale text to be gone from index, got %d hits", len(old))
	}
	fresh, _ := st.Clips().Search(ctx, &store.SearchQuery{Query: "change", Limit: 10})
	if len(fresh) != 1 {
		t.Errorf("expected new text to be indexed, got %d hits", len(fresh))
	}

	if _, err := st.Clips().UpdateText(ctx, 9999, "x"); !store.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestClipStore_TogglesKeepRecency(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	clip := captureText(t, st, "flag me", time.Now().Add(-time.Hour))

	fav, err := st.Clips().ToggleFavorite(ctx, clip.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if !fav {
		t.Error("expected favorite=true")
	}
	pin, err := st.Clips().TogglePin(ctx, clip.ID)
	if err != nil {
		t.Fatalf("TogglePin() error = %v", err)
	}
	if !pin {
		t.Error("expected pinned=true")
	}
	fav, _ = st.Clips().ToggleFavorite(ctx, clip.ID)
	if fav {
		t.Error("expected favorite=false after second toggle")
	}

	got, err := st.Clips().Get(ctx, clip.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.UpdatedAt.Equal(clip.UpdatedAt) {
		t.Errorf("expected updated_at unchanged, got %v want %v", got.UpdatedAt, clip.UpdatedAt)
	}
	if !got.IsPinned || got.IsFavorite {
		t.Errorf("unexpected flags pinned=%v favorite=%v", got.IsPinned, got.IsFavorite)
	}

	if _, err := st.Clips().ToggleFavorite(ctx, 9999); !store.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := st.Clips().Touch(ctx, 9999); !store.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestClipStore_DeleteCascades(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	clip := captureText(t, st, "cascade", time.Time{})
	tag, err := st.Tags().CreateTag(ctx, "work", "#ff0000")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	coll, err := st.Collections().CreateCollection(ctx, "snippets", "")
	if err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	if err := st.Tags().TagClip(ctx, clip.ID, tag.ID); err != nil {
		t.Fatalf("TagClip() error = %v", err)
	}
	if err := st.Collections().AddToCollection(ctx, clip.ID, coll.ID); err != nil {
		t.Fatalf("AddToCollection() error = %v", err)
	}
	if err := st.Embeddings().UpsertEmbedding(ctx, &store.Embedding{ClipID: clip.ID, Model: "m", Vector: []float32{1, 0}}); err != nil {
		t.Fatalf("UpsertEmbedding() error = %v", err)
	}

	if err := st.Clips().Delete(ctx, clip.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	for _, table := range []string{"clip_tags", "clip_collections", "embeddings"} {
		var n int64
		st.db.Table(table).Where("clip_id = ?", clip.ID).Count(&n)
		if n != 0 {
			t.Errorf("expected %s rows to cascade, %d left", table, n)
		}
	}

	tags, _ := st.Tags().ListTags(ctx)
	if len(tags) != 1 {
		t.Errorf("deleting a clip must keep its tags, got %d", len(tags))
	}

	if err := st.Clips().Delete(ctx, clip.ID); !store.IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestTagDeleteKeepsClips(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	clip := captureText(t, st, "keep me", time.Time{})
	tag, _ := st.Tags().CreateTag(ctx, "tmp", "")
	coll, _ := st.Collections().CreateCollection(ctx, "tmp", "")
	if err := st.Tags().TagClip(ctx, clip.ID, tag.ID); err != nil {
		t.Fatalf("TagClip() error = %v", err)
	}
	if err := st.Tags().TagClip(ctx, clip.ID, tag.ID); err != nil {
		t.Fatalf("second TagClip() error = %v", err)
	}
	if err := st.Collections().AddToCollection(ctx, clip.ID, coll.ID); err != nil {
		t.Fatalf("AddToCollection() error = %v", err)
	}

	tagged, err := st.Tags().ClipsWithTag(ctx, tag.ID, 10, 0)
	if err != nil {
		t.Fatalf("ClipsWithTag() error = %v", err)
	}
	if len(tagged) != 1 {
		t.Errorf("expected 1 tagged clip, got %d", len(tagged))
	}

	if err := st.Tags().DeleteTag(ctx, tag.ID); err != nil {
		t.Fatalf("DeleteTag() error = %v", err)
	}
	if err := st.Collections().DeleteCollection(ctx, coll.ID); err != nil {
		t.Fatalf("DeleteCollection() error = %v", err)
	}

	if _, err := st.Clips().Get(ctx, clip.ID); err != nil {
		t.Errorf("clip should survive tag/collection deletion: %v", err)
	}
	var n int64
	st.db.Table("clip_tags").Count(&n)
	if n != 0 {
		t.Errorf("expected junction rows removed, got %d", n)
	}

	if err := st.Tags().TagClip(ctx, 9999, 1); !store.IsNotFound(err) {
		t.Errorf("expected not found for unknown clip, got %v", err)
	}
}

func TestCreateTagIsIdempotent(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	a, err := st.Tags().CreateTag(ctx, "dup", "red")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	b, err := st.Tags().CreateTag(ctx, "dup", "blue")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	if a.ID != b.ID {
		t.Errorf("expected same tag, got %d and %d", a.ID, b.ID)
	}
	if b.Color != "red" {
		t.Errorf("expected original color kept, got %s", b.Color)
	}
}

func TestDeleteOldestSkipsPinnedAndFavorite(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	pinned := captureText(t, st, "pinned", base)
	fav := captureText(t, st, "fav", base.Add(time.Second))
	old := captureText(t, st, "old", base.Add(2*time.Second))
	newer := captureText(t, st, "newer", base.Add(3*time.Second))

	st.Clips().TogglePin(ctx, pinned.ID)
	st.Clips().ToggleFavorite(ctx, fav.ID)

	removed, err := st.Clips().DeleteOldest(ctx, 1)
	if err != nil {
		t.Fatalf("DeleteOldest() error = %v", err)
	}
	if len(removed) != 1 || removed[0].ID != old.ID {
		t.Errorf("expected to remove %d, got %v", old.ID, ids(removed))
	}

	remaining, _ := st.Clips().ListRecent(ctx, nil)
	if fmt.Sprint(ids(remaining)) != fmt.Sprint([]int64{newer.ID, fav.ID, pinned.ID}) {
		t.Errorf("unexpected remaining clips %v", ids(remaining))
	}
}

func TestReindexRecoversFromDrift(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	clip := captureText(t, st, "drifting text", time.Time{})
	if err := st.Clips().VerifyIndex(ctx); err != nil {
		t.Fatalf("VerifyIndex() on fresh db error = %v", err)
	}

	// Remove the row from the index behind the triggers' back.
	err := st.db.Exec("INSERT INTO clips_fts(clips_fts, rowid, content_text) VALUES('delete', ?, ?)", clip.ID, clip.ContentText).Error
	if err != nil {
		t.Fatalf("manual index delete error = %v", err)
	}

	hits, _ := st.Clips().Search(ctx, &store.SearchQuery{Query: "drifting", Limit: 10})
	if len(hits) != 0 {
		t.Fatalf("expected drift to hide the clip, got %d hits", len(hits))
	}
	if err := st.Clips().VerifyIndex(ctx); !errors.Is(err, store.ErrIndexDrift) {
		t.Errorf("expected ErrIndexDrift, got %v", err)
	}

	if err := st.Clips().Reindex(ctx); err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}
	hits, _ = st.Clips().Search(ctx, &store.SearchQuery{Query: "drifting", Limit: 10})
	if len(hits) != 1 {
		t.Errorf("expected reindex to restore the clip, got %d hits", len(hits))
	}
	if err := st.Clips().VerifyIndex(ctx); err != nil {
		t.Errorf("VerifyIndex() after reindex error = %v", err)
	}
	if _, err := st.Config().Get(ctx, "last_reindex"); err != nil {
		t.Errorf("expected last_reindex to be recorded: %v", err)
	}
}

func TestEmbeddingStaleness(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	a := captureText(t, st, "alpha", time.Now().Add(-time.Hour))
	b := captureText(t, st, "beta", time.Now().Add(-time.Hour))

	stale, err := st.Embeddings().StaleClipIDs(ctx, "m", 10)
	if err != nil {
		t.Fatalf("StaleClipIDs() error = %v", err)
	}
	if len(stale) != 2 {
		t.Fatalf("expected both clips stale, got %v", stale)
	}

	if err := st.Embeddings().UpsertEmbedding(ctx, &store.Embedding{ClipID: a.ID, Model: "m", Vector: []float32{0.1, 0.2, 0.3}}); err != nil {
		t.Fatalf("UpsertEmbedding() error = %v", err)
	}
	stale, _ = st.Embeddings().StaleClipIDs(ctx, "m", 10)
	if len(stale) != 1 || stale[0] != b.ID {
		t.Errorf("expected only %d stale, got %v", b.ID, stale)
	}

	e, err := st.Embeddings().GetEmbedding(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetEmbedding() error = %v", err)
	}
	if e.Dimensions != 3 || len(e.Vector) != 3 {
		t.Errorf("expected 3 dimensions, got %d/%d", e.Dimensions, len(e.Vector))
	}

	// Editing the clip invalidates its embedding.
	if _, err := st.Clips().UpdateText(ctx, a.ID, "alpha edited"); err != nil {
		t.Fatalf("UpdateText() error = %v", err)
	}
	stale, _ = st.Embeddings().StaleClipIDs(ctx, "m", 10)
	if len(stale) != 2 {
		t.Errorf("expected edited clip to be stale again, got %v", stale)
	}

	// A different model makes everything stale.
	stale, _ = st.Embeddings().StaleClipIDs(ctx, "other", 10)
	if len(stale) != 2 {
		t.Errorf("expected model change to mark stale, got %v", stale)
	}

	// Upsert replaces rather than duplicating.
	if err := st.Embeddings().UpsertEmbedding(ctx, &store.Embedding{ClipID: a.ID, Model: "m", Vector: []float32{1}}); err != nil {
		t.Fatalf("UpsertEmbedding() error = %v", err)
	}
	all, _ := st.Embeddings().ListEmbeddings(ctx, "")
	if len(all) != 1 {
		t.Errorf("expected a single embedding row, got %d", len(all))
	}

	if err := st.Embeddings().UpsertEmbedding(ctx, &store.Embedding{ClipID: 9999, Model: "m", Vector: []float32{1}}); !store.IsNotFound(err) {
		t.Errorf("expected not found for unknown clip, got %v", err)
	}
}

func TestConfigStore(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := st.Config().Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := st.Config().Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, err := st.Config().Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v != "v2" {
		t.Errorf("expected v2, got %s", v)
	}
	all, _ := st.Config().List(ctx)
	if all["k"] != "v2" {
		t.Errorf("expected List to include k=v2, got %v", all)
	}
	if err := st.Config().Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := st.Config().Get(ctx, "k"); !store.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestClearRemovesEverything(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		captureText(t, st, fmt.Sprintf("clear %d", i), time.Time{})
	}
	if err := st.Clips().Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	n, _ := st.Clips().Count(ctx)
	if n != 0 {
		t.Errorf("expected 0 clips, got %d", n)
	}
	hits, _ := st.Clips().Search(ctx, &store.SearchQuery{Query: "clear", Limit: 10})
	if len(hits) != 0 {
		t.Errorf("expected empty index, got %d hits", len(hits))
	}
}

func ids(clips []*store.Clip) []int64 {
	out := make([]int64, len(clips))
	for i, c := range clips {
		out[i] = c.ID
	}
	return out
}
