package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/blobfs"
	"github.com/yiblet/clipvault/internal/capture"
	"github.com/yiblet/clipvault/internal/clipboard"
	"github.com/yiblet/clipvault/internal/config"
	"github.com/yiblet/clipvault/internal/embedding"
	"github.com/yiblet/clipvault/internal/launch"
	"github.com/yiblet/clipvault/internal/search"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/store/dbstore"
)

// Open builds a service from cfg on top of the SQLite database it names.
// board may be nil for commands that never touch the clipboard.
func Open(cfg *config.Config, board clipboard.Clipboard, log zerolog.Logger) (*Service, error) {
	dbPath, err := cfg.ResolveDatabasePath()
	if err != nil {
		return nil, err
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	st, err := dbstore.NewSQLiteStore(dbPath, dbstore.WithLogger(log))
	if err != nil {
		return nil, err
	}

	svc, err := FromConfig(cfg, st, board, log)
	if err != nil {
		st.Close()
		return nil, err
	}
	return svc, nil
}

// FromConfig builds a service over an already opened store.
func FromConfig(cfg *config.Config, st store.Store, board clipboard.Clipboard, log zerolog.Logger) (*Service, error) {
	blobs, err := blobfs.New(cfg.BlobDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob directory: %w", err)
	}
	embedder, err := embedding.New(cfg.EmbedProvider, cfg.EmbedModel, cfg.EmbedURL)
	if err != nil {
		return nil, err
	}
	mode, err := search.ParseMode(cfg.SearchMode)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithBlobs(blobs),
		WithLogger(log),
		WithLauncher(launch.New(
			launch.WithEditor(cfg.Editor),
			launch.WithPasteCommand(cfg.PasteCommand),
			launch.WithLogger(log),
		)),
		WithCaptureOptions(
			capture.WithHistoryLimit(cfg.HistoryLimit),
			capture.WithDuplicatePolicy(store.ParseDuplicatePolicy(cfg.DuplicatePolicy)),
		),
		WithSearchOptions(
			search.WithMode(mode),
			search.WithThreshold(cfg.SimilarityThreshold),
			search.WithFusion(cfg.Fusion()),
		),
	}
	if board != nil {
		opts = append(opts, WithClipboard(board))
	}
	if embedder != nil {
		opts = append(opts, WithEmbedder(embedder))
		log.Debug().Str("provider", strings.ToLower(cfg.EmbedProvider)).Str("model", embedder.Model()).Msg("embeddings enabled")
	}
	return New(st, opts...), nil
}
