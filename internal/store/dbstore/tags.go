package dbstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sqliteTagStore implements store.TagStore
type sqliteTagStore struct {
	db *gorm.DB
}

// CreateTag returns the named tag, creating it if it does not exist
func (s *sqliteTagStore) CreateTag(ctx context.Context, name, color string) (*store.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("failed to create tag: empty name: %w", store.ErrInvalidInput)
	}
	var m TagModel
	err := s.db.WithContext(ctx).Where(TagModel{Name: name}).
		Attrs(TagModel{Color: color, CreatedAt: now()}).
		FirstOrCreate(&m).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return m.toTag(), nil
}

// ListTags returns all tags ordered by name
func (s *sqliteTagStore) ListTags(ctx context.Context) ([]*store.Tag, error) {
	var models []*TagModel
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	tags := make([]*store.Tag, len(models))
	for i, m := range models {
		tags[i] = m.toTag()
	}
	return tags, nil
}

// DeleteTag removes a tag; clip_tags rows cascade, clips stay
func (s *sqliteTagStore) DeleteTag(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&TagModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete tag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NotFound("tag", id)
	}
	return nil
}

// TagClip attaches a tag to a clip. Attaching twice is a no-op.
func (s *sqliteTagStore) TagClip(ctx context.Context, clipID, tagID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &ClipModel{}, "clip", clipID); err != nil {
			return err
		}
		if err := mustExist(tx, &TagModel{}, "tag", tagID); err != nil {
			return err
		}
		row := &ClipTagModel{ClipID: clipID, TagID: tagID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return fmt.Errorf("failed to tag clip: %w", err)
		}
		return nil
	})
}

// UntagClip detaches a tag from a clip
func (s *sqliteTagStore) UntagClip(ctx context.Context, clipID, tagID int64) error {
	result := s.db.WithContext(ctx).Where("clip_id = ? AND tag_id = ?", clipID, tagID).Delete(&ClipTagModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to untag clip: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NotFound("clip tag", fmt.Sprintf("%d/%d", clipID, tagID))
	}
	return nil
}

// TagsForClip lists the tags attached to a clip
func (s *sqliteTagStore) TagsForClip(ctx context.Context, clipID int64) ([]*store.Tag, error) {
	var models []*TagModel
	err := s.db.WithContext(ctx).
		Joins("JOIN clip_tags ON clip_tags.tag_id = tags.id").
		Where("clip_tags.clip_id = ?", clipID).
		Order("tags.name ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list clip tags: %w", err)
	}
	tags := make([]*store.Tag, len(models))
	for i, m := range models {
		tags[i] = m.toTag()
	}
	return tags, nil
}

// ClipsWithTag pages through the clips carrying a tag, newest first
func (s *sqliteTagStore) ClipsWithTag(ctx context.Context, tagID int64, limit, offset int) ([]*store.Clip, error) {
	var models []*ClipModel
	q := s.db.WithContext(ctx).
		Joins("JOIN clip_tags ON clip_tags.clip_id = clips.id").
		Where("clip_tags.tag_id = ?", tagID).
		Order("clips.updated_at DESC, clips.id DESC")
	if err := paginate(q, limit, offset).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list tagged clips: %w", err)
	}
	return toClips(models), nil
}

// sqliteCollectionStore implements store.CollectionStore
type sqliteCollectionStore struct {
	db *gorm.DB
}

// CreateCollection returns the named collection, creating it if needed
func (s *sqliteCollectionStore) CreateCollection(ctx context.Context, name, description string) (*store.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("failed to create collection: empty name: %w", store.ErrInvalidInput)
	}
	var m CollectionModel
	err := s.db.WithContext(ctx).Where(CollectionModel{Name: name}).
		Attrs(CollectionModel{Description: description, CreatedAt: now()}).
		FirstOrCreate(&m).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return m.toCollection(), nil
}

// ListCollections returns all collections ordered by name
func (s *sqliteCollectionStore) ListCollections(ctx context.Context) ([]*store.Collection, error) {
	var models []*CollectionModel
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	out := make([]*store.Collection, len(models))
	for i, m := range models {
		out[i] = m.toCollection()
	}
	return out, nil
}

// DeleteCollection removes a collection; memberships cascade, clips stay
func (s *sqliteCollectionStore) DeleteCollection(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&CollectionModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete collection: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NotFound("collection", id)
	}
	return nil
}

// AddToCollection adds a clip to a collection. Adding twice is a no-op.
func (s *sqliteCollectionStore) AddToCollection(ctx context.Context, clipID, collectionID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &ClipModel{}, "clip", clipID); err != nil {
			return err
		}
		if err := mustExist(tx, &CollectionModel{}, "collection", collectionID); err != nil {
			return err
		}
		row := &ClipCollectionModel{ClipID: clipID, CollectionID: collectionID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return fmt.Errorf("failed to add clip to collection: %w", err)
		}
		return nil
	})
}

// RemoveFromCollection removes a clip from a collection
func (s *sqliteCollectionStore) RemoveFromCollection(ctx context.Context, clipID, collectionID int64) error {
	result := s.db.WithContext(ctx).
		Where("clip_id = ? AND collection_id = ?", clipID, collectionID).
		Delete(&ClipCollectionModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove clip from collection: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NotFound("collection member", fmt.Sprintf("%d/%d", clipID, collectionID))
	}
	return nil
}

// CollectionsForClip lists the collections containing a clip
func (s *sqliteCollectionStore) CollectionsForClip(ctx context.Context, clipID int64) ([]*store.Collection, error) {
	var models []*CollectionModel
	err := s.db.WithContext(ctx).
		Joins("JOIN clip_collections ON clip_collections.collection_id = collections.id").
		Where("clip_collections.clip_id = ?", clipID).
		Order("collections.name ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list clip collections: %w", err)
	}
	out := make([]*store.Collection, len(models))
	for i, m := range models {
		out[i] = m.toCollection()
	}
	return out, nil
}

// ClipsInCollection pages through a collection's clips, newest first
func (s *sqliteCollectionStore) ClipsInCollection(ctx context.Context, collectionID int64, limit, offset int) ([]*store.Clip, error) {
	var models []*ClipModel
	q := s.db.WithContext(ctx).
		Joins("JOIN clip_collections ON clip_collections.clip_id = clips.id").
		Where("clip_collections.collection_id = ?", collectionID).
		Order("clips.updated_at DESC, clips.id DESC")
	if err := paginate(q, limit, offset).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list collection clips: %w", err)
	}
	return toClips(models), nil
}

func mustExist(tx *gorm.DB, model any, kind string, id int64) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to look up %s: %w", kind, err)
	}
	if n == 0 {
		return store.NotFound(kind, id)
	}
	return nil
}
