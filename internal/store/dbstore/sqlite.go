// Package dbstore implements the store interfaces on SQLite through gorm.
// It uses the pure-Go modernc driver so the FTS5 trigram tokenizer is
// available without cgo.
package dbstore

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SchemaVersion is written to the settings table on open.
const SchemaVersion = "2"

// SQLiteStore is a SQLite-backed implementation of store.Store
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
	log    zerolog.Logger
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the logger used for index maintenance messages.
func WithLogger(l zerolog.Logger) Option {
	return func(s *SQLiteStore) { s.log = l }
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// applies the schema. Use ":memory:" for a throwaway database.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{dbPath: dbPath, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: dsn(dbPath)}, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	// SQLite serializes writers anyway, and ":memory:" is per connection.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec(schemaSQL).Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	s.db = db

	if err := s.initDefaultConfig(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to init config: %w", err)
	}

	return s, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_time_format", "sqlite")
	if path == ":memory:" {
		return "file::memory:?" + q.Encode()
	}
	return "file:" + path + "?" + q.Encode()
}

// now is the clock for every stored timestamp. Microsecond precision keeps
// the text encoding of DATETIME columns sortable.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Clips returns the clip store
func (s *SQLiteStore) Clips() store.ClipStore {
	return &sqliteClipStore{db: s.db, log: s.log}
}

// Tags returns the tag store
func (s *SQLiteStore) Tags() store.TagStore {
	return &sqliteTagStore{db: s.db}
}

// Collections returns the collection store
func (s *SQLiteStore) Collections() store.CollectionStore {
	return &sqliteCollectionStore{db: s.db}
}

// Embeddings returns the embedding store
func (s *SQLiteStore) Embeddings() store.EmbeddingStore {
	return &sqliteEmbeddingStore{db: s.db}
}

// Config returns the settings store
func (s *SQLiteStore) Config() store.ConfigStore {
	return &sqliteConfigStore{db: s.db}
}

// Path returns the database path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// initDefaultConfig sets up default settings values
func (s *SQLiteStore) initDefaultConfig() error {
	ctx := context.Background()
	cfg := s.Config()
	if err := cfg.Set(ctx, "db_version", SchemaVersion); err != nil {
		return err
	}
	if _, err := cfg.Get(ctx, "history_limit"); store.IsNotFound(err) {
		return cfg.Set(ctx, "history_limit", "1000")
	} else if err != nil {
		return err
	}
	return nil
}
