// Package store defines the storage interfaces for clipvault's persistence
// layer: clips with their full-text shadow index, tags, collections,
// embeddings, and key/value settings.
package store

import "context"

// ClipStore manages clip persistence and the full-text index that shadows
// content_text.
type ClipStore interface {
	// Capture persists a payload. With DuplicateBump, an existing row with
	// the same content hash and type is refreshed instead of inserting.
	Capture(ctx context.Context, in *CaptureInput, policy DuplicatePolicy) (*CaptureResult, error)

	// Get retrieves a single clip by ID.
	Get(ctx context.Context, id int64) (*Clip, error)

	// GetMany retrieves clips in the order of ids. Missing ids are skipped.
	GetMany(ctx context.Context, ids []int64) ([]*Clip, error)

	// ListRecent pages through clips ordered by updated_at DESC, id DESC.
	ListRecent(ctx context.Context, q *ListQuery) ([]*Clip, error)

	// Search returns keyword matches on content_text, best first.
	Search(ctx context.Context, q *SearchQuery) ([]*SearchHit, error)

	// Delete removes a clip together with its tag, collection and
	// embedding rows.
	Delete(ctx context.Context, id int64) error

	// ToggleFavorite flips is_favorite and returns the new value.
	// updated_at is left untouched.
	ToggleFavorite(ctx context.Context, id int64) (bool, error)

	// TogglePin flips is_pinned and returns the new value.
	// updated_at is left untouched.
	TogglePin(ctx context.Context, id int64) (bool, error)

	// Touch increments access_count.
	Touch(ctx context.Context, id int64) error

	// UpdateText replaces content_text and bumps updated_at, which marks the
	// clip's embedding stale.
	UpdateText(ctx context.Context, id int64, text string) (*Clip, error)

	// DeleteOldest removes up to count of the oldest clips that are neither
	// pinned nor favorite, and returns what was removed.
	DeleteOldest(ctx context.Context, count int) ([]*Clip, error)

	// Count returns the total number of clips.
	Count(ctx context.Context) (int, error)

	// Clear removes every clip.
	Clear(ctx context.Context) error

	// Reindex rebuilds the full-text index from the clips table.
	Reindex(ctx context.Context) error

	// VerifyIndex returns an error wrapping ErrIndexDrift when the index
	// does not match the clips table.
	VerifyIndex(ctx context.Context) error
}

// TagStore manages tags and their clip assignments.
type TagStore interface {
	// CreateTag returns the tag with the given name, creating it if needed.
	CreateTag(ctx context.Context, name, color string) (*Tag, error)
	ListTags(ctx context.Context) ([]*Tag, error)
	// DeleteTag removes a tag and its assignments, never the clips.
	DeleteTag(ctx context.Context, id int64) error
	TagClip(ctx context.Context, clipID, tagID int64) error
	UntagClip(ctx context.Context, clipID, tagID int64) error
	TagsForClip(ctx context.Context, clipID int64) ([]*Tag, error)
	ClipsWithTag(ctx context.Context, tagID int64, limit, offset int) ([]*Clip, error)
}

// CollectionStore manages collections and their members.
type CollectionStore interface {
	// CreateCollection returns the collection with the given name, creating
	// it if needed.
	CreateCollection(ctx context.Context, name, description string) (*Collection, error)
	ListCollections(ctx context.Context) ([]*Collection, error)
	// DeleteCollection removes a collection and its memberships, never the
	// clips.
	DeleteCollection(ctx context.Context, id int64) error
	AddToCollection(ctx context.Context, clipID, collectionID int64) error
	RemoveFromCollection(ctx context.Context, clipID, collectionID int64) error
	CollectionsForClip(ctx context.Context, clipID int64) ([]*Collection, error)
	ClipsInCollection(ctx context.Context, collectionID int64, limit, offset int) ([]*Clip, error)
}

// EmbeddingStore manages the one-per-clip embedding side table.
type EmbeddingStore interface {
	// UpsertEmbedding stores e, replacing any embedding the clip already has.
	UpsertEmbedding(ctx context.Context, e *Embedding) error
	GetEmbedding(ctx context.Context, clipID int64) (*Embedding, error)
	// ListEmbeddings returns every embedding produced by model. An empty
	// model matches all.
	ListEmbeddings(ctx context.Context, model string) ([]*Embedding, error)
	// StaleClipIDs returns up to limit clips with no embedding for model or
	// one older than the clip's updated_at, newest first.
	StaleClipIDs(ctx context.Context, model string, limit int) ([]int64, error)
	DeleteEmbedding(ctx context.Context, clipID int64) error
}

// ConfigStore manages key/value settings kept alongside the data.
type ConfigStore interface {
	// Get retrieves a value. Missing keys return an error wrapping ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context) (map[string]string, error)
	Delete(ctx context.Context, key string) error
}

// Store combines all stores and manages their lifecycle as a single unit.
type Store interface {
	Clips() ClipStore
	Tags() TagStore
	Collections() CollectionStore
	Embeddings() EmbeddingStore
	Config() ConfigStore

	// Close releases all resources.
	Close() error
}
