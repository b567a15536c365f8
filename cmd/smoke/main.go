// Command smoke runs the whole stack against a throwaway SQLite database
// and exits non-zero on the first failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/clipboard/mockboard"
	"github.com/yiblet/clipvault/internal/config"
	"github.com/yiblet/clipvault/internal/embedding"
	"github.com/yiblet/clipvault/internal/logger"
	"github.com/yiblet/clipvault/internal/search"
	"github.com/yiblet/clipvault/internal/service"
	"github.com/yiblet/clipvault/internal/store"
)

type step struct {
	name string
	run  func(ctx context.Context) error
}

func main() {
	dir, err := os.MkdirTemp("", "clipvault-smoke-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	log, _ := logger.Init(os.Getenv("CLIPVAULT_LOG_LEVEL"), nil)
	if err := run(context.Background(), dir, log); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.RemoveAll(dir)
		os.Exit(1)
	}
	fmt.Println("PASS")
}

func run(ctx context.Context, dir string, log zerolog.Logger) error {
	cfg := config.DefaultConfig()
	cfg.DatabasePath = filepath.Join(dir, config.DatabaseFile)
	cfg.BlobDir = filepath.Join(dir, "blobs")
	cfg.EmbedProvider = embedding.ProviderHash
	cfg.SearchMode = string(search.ModeHybrid)

	board := mockboard.New()
	svc, err := service.Open(cfg, board, log)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer svc.Close()

	var ids []int64
	steps := []step{
		{"capture", func(ctx context.Context) error {
			for _, text := range []string{
				"https://example.com/docs",
				`{"name": "clipvault", "ok": true}`,
				"#336699",
				"remember to water the plants",
			} {
				res, err := svc.Capture(ctx, &store.CaptureInput{ContentType: store.ContentText, ContentText: text})
				if err != nil {
					return err
				}
				ids = append(ids, res.Clip.ID)
			}
			res, err := svc.Capture(ctx, &store.CaptureInput{ContentType: store.ContentText, ContentText: "#336699"})
			if err != nil {
				return err
			}
			if !res.Duplicate || res.Clip.ID != ids[2] {
				return fmt.Errorf("recapture should bump #%d, got #%d duplicate=%v", ids[2], res.Clip.ID, res.Duplicate)
			}
			return nil
		}},
		{"list", func(ctx context.Context) error {
			clips, err := svc.RecentClips(ctx, 10, 0)
			if err != nil {
				return err
			}
			if len(clips) != 4 {
				return fmt.Errorf("want 4 clips, got %d", len(clips))
			}
			if clips[0].ID != ids[2] {
				return fmt.Errorf("bumped clip should be newest, got #%d", clips[0].ID)
			}
			if clips[0].DetectedType != "color" {
				return fmt.Errorf("want color, got %q", clips[0].DetectedType)
			}
			return nil
		}},
		{"embed", func(ctx context.Context) error {
			done, failed, err := svc.GenerateStaleEmbeddings(ctx, 100)
			if err != nil {
				return err
			}
			if done != 4 || failed != 0 {
				return fmt.Errorf("embedded %d, failed %d", done, failed)
			}
			return nil
		}},
		{"search", func(ctx context.Context) error {
			hits, err := svc.SearchClips(ctx, &search.Request{Query: "plants", Limit: 5})
			if err != nil {
				return err
			}
			if len(hits) == 0 || hits[0].ID != ids[3] {
				return fmt.Errorf("keyword search missed #%d", ids[3])
			}
			hits, err = svc.SearchClips(ctx, &search.Request{Query: "water the plant", Limit: 5, Semantic: true})
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				return errors.New("semantic search returned nothing")
			}
			return nil
		}},
		{"toggle", func(ctx context.Context) error {
			fav, err := svc.ToggleFavorite(ctx, ids[0])
			if err != nil {
				return err
			}
			pinned, err := svc.TogglePin(ctx, ids[0])
			if err != nil {
				return err
			}
			if !fav || !pinned {
				return fmt.Errorf("favorite=%v pinned=%v", fav, pinned)
			}
			return nil
		}},
		{"copy", func(ctx context.Context) error {
			if err := svc.Copy(ctx, "https://example.com/docs", ids[0]); err != nil {
				return err
			}
			clip, err := svc.GetClip(ctx, ids[0])
			if err != nil {
				return err
			}
			if clip.AccessCount < 1 {
				return fmt.Errorf("access count %d", clip.AccessCount)
			}
			return nil
		}},
		{"edit", func(ctx context.Context) error {
			clip, err := svc.UpdateClipText(ctx, ids[3], "remember to water the ferns")
			if err != nil {
				return err
			}
			if clip.ContentText != "remember to water the ferns" {
				return fmt.Errorf("text not updated: %q", clip.ContentText)
			}
			return nil
		}},
		{"reindex", func(ctx context.Context) error {
			if err := svc.Reindex(ctx); err != nil {
				return err
			}
			if err := svc.VerifyIndex(ctx); err != nil {
				return err
			}
			at, err := svc.LastReindex(ctx)
			if err != nil {
				return err
			}
			if at.IsZero() {
				return errors.New("reindex time not recorded")
			}
			return nil
		}},
		{"delete", func(ctx context.Context) error {
			if err := svc.DeleteClip(ctx, ids[1]); err != nil {
				return err
			}
			if _, err := svc.GetClip(ctx, ids[1]); !store.IsNotFound(err) {
				return fmt.Errorf("deleted clip still readable: %v", err)
			}
			return nil
		}},
		{"clear", func(ctx context.Context) error {
			if err := svc.ClearAllClips(ctx); err != nil {
				return err
			}
			clips, err := svc.RecentClips(ctx, 10, 0)
			if err != nil {
				return err
			}
			if len(clips) != 0 {
				return fmt.Errorf("%d clips left after clear", len(clips))
			}
			return nil
		}},
	}

	for _, s := range steps {
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		fmt.Printf("ok   %s\n", s.name)
	}
	return nil
}
