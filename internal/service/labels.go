package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yiblet/clipvault/internal/store"
)

// Tags and collections are addressed by name from the command line.

func (s *Service) ListTags(ctx context.Context) ([]*store.Tag, error) {
	return s.store.Tags().ListTags(ctx)
}

func (s *Service) findTag(ctx context.Context, name string) (*store.Tag, error) {
	tags, err := s.store.Tags().ListTags(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, store.NotFound("tag", name)
}

// TagClip attaches the named tag to a clip, creating the tag if needed.
func (s *Service) TagClip(ctx context.Context, clipID int64, name, color string) (*store.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name is empty: %w", store.ErrInvalidInput)
	}
	if _, err := s.clips.Get(ctx, clipID); err != nil {
		return nil, err
	}
	tag, err := s.findTag(ctx, name)
	if store.IsNotFound(err) {
		tag, err = s.store.Tags().CreateTag(ctx, name, color)
	}
	if err != nil {
		return nil, err
	}
	if err := s.store.Tags().TagClip(ctx, clipID, tag.ID); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *Service) UntagClip(ctx context.Context, clipID int64, name string) error {
	tag, err := s.findTag(ctx, name)
	if err != nil {
		return err
	}
	return s.store.Tags().UntagClip(ctx, clipID, tag.ID)
}

// DeleteTag removes the tag. Its clips are kept.
func (s *Service) DeleteTag(ctx context.Context, name string) error {
	tag, err := s.findTag(ctx, name)
	if err != nil {
		return err
	}
	return s.store.Tags().DeleteTag(ctx, tag.ID)
}

func (s *Service) TagsForClip(ctx context.Context, clipID int64) ([]*store.Tag, error) {
	return s.store.Tags().TagsForClip(ctx, clipID)
}

func (s *Service) ClipsWithTag(ctx context.Context, name string, limit, offset int) ([]*store.Clip, error) {
	tag, err := s.findTag(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.store.Tags().ClipsWithTag(ctx, tag.ID, limit, offset)
}

func (s *Service) ListCollections(ctx context.Context) ([]*store.Collection, error) {
	return s.store.Collections().ListCollections(ctx)
}

func (s *Service) findCollection(ctx context.Context, name string) (*store.Collection, error) {
	cols, err := s.store.Collections().ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, store.NotFound("collection", name)
}

// AddToCollection adds a clip to the named collection, creating the
// collection if needed.
func (s *Service) AddToCollection(ctx context.Context, clipID int64, name, description string) (*store.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("collection name is empty: %w", store.ErrInvalidInput)
	}
	if _, err := s.clips.Get(ctx, clipID); err != nil {
		return nil, err
	}
	col, err := s.findCollection(ctx, name)
	if store.IsNotFound(err) {
		col, err = s.store.Collections().CreateCollection(ctx, name, description)
	}
	if err != nil {
		return nil, err
	}
	if err := s.store.Collections().AddToCollection(ctx, clipID, col.ID); err != nil {
		return nil, err
	}
	return col, nil
}

func (s *Service) RemoveFromCollection(ctx context.Context, clipID int64, name string) error {
	col, err := s.findCollection(ctx, name)
	if err != nil {
		return err
	}
	return s.store.Collections().RemoveFromCollection(ctx, clipID, col.ID)
}

// DeleteCollection removes the collection. Its clips are kept.
func (s *Service) DeleteCollection(ctx context.Context, name string) error {
	col, err := s.findCollection(ctx, name)
	if err != nil {
		return err
	}
	return s.store.Collections().DeleteCollection(ctx, col.ID)
}

func (s *Service) CollectionsForClip(ctx context.Context, clipID int64) ([]*store.Collection, error) {
	return s.store.Collections().CollectionsForClip(ctx, clipID)
}

func (s *Service) ClipsInCollection(ctx context.Context, name string, limit, offset int) ([]*store.Clip, error) {
	col, err := s.findCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.store.Collections().ClipsInCollection(ctx, col.ID, limit, offset)
}
