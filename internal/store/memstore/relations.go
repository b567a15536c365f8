package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yiblet/clipvault/internal/store"
)

type memoryTagStore MemoryStore

func (s *memoryTagStore) CreateTag(ctx context.Context, name, color string) (*store.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("failed to create tag: empty name: %w", store.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tags {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	t := &store.Tag{ID: s.nextTag, Name: name, Color: color, CreatedAt: (*MemoryStore)(s).now()}
	s.nextTag++
	s.tags[t.ID] = t
	cp := *t
	return &cp, nil
}

func (s *memoryTagStore) ListTags(ctx context.Context) ([]*store.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*store.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memoryTagStore) DeleteTag(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tags[id]; !ok {
		return store.NotFound("tag", id)
	}
	delete(s.tags, id)
	for k := range s.clipTags {
		if k[1] == id {
			delete(s.clipTags, k)
		}
	}
	return nil
}

func (s *memoryTagStore) TagClip(ctx context.Context, clipID, tagID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clips[clipID]; !ok {
		return store.NotFound("clip", clipID)
	}
	if _, ok := s.tags[tagID]; !ok {
		return store.NotFound("tag", tagID)
	}
	s.clipTags[pair{clipID, tagID}] = struct{}{}
	return nil
}

func (s *memoryTagStore) UntagClip(ctx context.Context, clipID, tagID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := pair{clipID, tagID}
	if _, ok := s.clipTags[k]; !ok {
		return store.NotFound("clip tag", fmt.Sprintf("%d/%d", clipID, tagID))
	}
	delete(s.clipTags, k)
	return nil
}

func (s *memoryTagStore) TagsForClip(ctx context.Context, clipID int64) ([]*store.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*store.Tag
	for k := range s.clipTags {
		if k[0] == clipID {
			cp := *s.tags[k[1]]
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memoryTagStore) ClipsWithTag(ctx context.Context, tagID int64, limit, offset int) ([]*store.Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []*store.Clip
	for k := range s.clipTags {
		if k[1] == tagID {
			rows = append(rows, s.clips[k[0]])
		}
	}
	sortRecent(rows)
	return clonePage(rows, limit, offset), nil
}

type memoryCollectionStore MemoryStore

func (s *memoryCollectionStore) CreateCollection(ctx context.Context, name, description string) (*store.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("failed to create collection: empty name: %w", store.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.colls {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	c := &store.Collection{ID: s.nextColl, Name: name, Description: description, CreatedAt: (*MemoryStore)(s).now()}
	s.nextColl++
	s.colls[c.ID] = c
	cp := *c
	return &cp, nil
}

func (s *memoryCollectionStore) ListCollections(ctx context.Context) ([]*store.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*store.Collection, 0, len(s.colls))
	for _, c := range s.colls {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memoryCollectionStore) DeleteCollection(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.colls[id]; !ok {
		return store.NotFound("collection", id)
	}
	delete(s.colls, id)
	for k := range s.clipColls {
		if k[1] == id {
			delete(s.clipColls, k)
		}
	}
	return nil
}

func (s *memoryCollectionStore) AddToCollection(ctx context.Context, clipID, collectionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clips[clipID]; !ok {
		return store.NotFound("clip", clipID)
	}
	if _, ok := s.colls[collectionID]; !ok {
		return store.NotFound("collection", collectionID)
	}
	s.clipColls[pair{clipID, collectionID}] = struct{}{}
	return nil
}

func (s *memoryCollectionStore) RemoveFromCollection(ctx context.Context, clipID, collectionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := pair{clipID, collectionID}
	if _, ok := s.clipColls[k]; !ok {
		return store.NotFound("collection member", fmt.Sprintf("%d/%d", clipID, collectionID))
	}
	delete(s.clipColls, k)
	return nil
}

func (s *memoryCollectionStore) CollectionsForClip(ctx context.Context, clipID int64) ([]*store.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*store.Collection
	for k := range s.clipColls {
		if k[0] == clipID {
			cp := *s.colls[k[1]]
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memoryCollectionStore) ClipsInCollection(ctx context.Context, collectionID int64, limit, offset int) ([]*store.Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []*store.Clip
	for k := range s.clipColls {
		if k[1] == collectionID {
			rows = append(rows, s.clips[k[0]])
		}
	}
	sortRecent(rows)
	return clonePage(rows, limit, offset), nil
}

type memoryEmbeddingStore MemoryStore

func (s *memoryEmbeddingStore) UpsertEmbedding(ctx context.Context, e *store.Embedding) error {
	if e == nil || len(e.Vector) == 0 {
		return fmt.Errorf("failed to store embedding: empty vector: %w", store.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clips[e.ClipID]; !ok {
		return store.NotFound("clip", e.ClipID)
	}
	ts := (*MemoryStore)(s).now()
	cp := &store.Embedding{
		ClipID:     e.ClipID,
		Model:      e.Model,
		Dimensions: len(e.Vector),
		Vector:     append([]float32(nil), e.Vector...),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if prev, ok := s.embeddings[e.ClipID]; ok {
		cp.ID = prev.ID
		cp.CreatedAt = prev.CreatedAt
	} else {
		cp.ID = s.nextEmb
		s.nextEmb++
	}
	s.embeddings[e.ClipID] = cp
	return nil
}

func (s *memoryEmbeddingStore) GetEmbedding(ctx context.Context, clipID int64) (*store.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.embeddings[clipID]
	if !ok {
		return nil, store.NotFound("embedding", clipID)
	}
	return copyEmbedding(e), nil
}

func (s *memoryEmbeddingStore) ListEmbeddings(ctx context.Context, model string) ([]*store.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*store.Embedding, 0, len(s.embeddings))
	for _, e := range s.embeddings {
		if model == "" || e.Model == model {
			out = append(out, copyEmbedding(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClipID > out[j].ClipID })
	return out, nil
}

func (s *memoryEmbeddingStore) StaleClipIDs(ctx context.Context, model string, limit int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []*store.Clip
	for id, c := range s.clips {
		if c.ContentText == "" {
			continue
		}
		e := s.embeddings[id]
		if e.Stale(c) || (model != "" && e.Model != model) {
			rows = append(rows, c)
		}
	}
	sortRecent(rows)
	start, end := window(len(rows), limit, 0)
	ids := make([]int64, 0, end-start)
	for _, c := range rows[start:end] {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (s *memoryEmbeddingStore) DeleteEmbedding(ctx context.Context, clipID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.embeddings[clipID]; !ok {
		return store.NotFound("embedding", clipID)
	}
	delete(s.embeddings, clipID)
	return nil
}

func copyEmbedding(e *store.Embedding) *store.Embedding {
	cp := *e
	cp.Vector = append([]float32(nil), e.Vector...)
	return &cp
}

type memoryConfigStore MemoryStore

func (s *memoryConfigStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.settings[key]
	if !ok {
		return "", store.NotFound("config key", key)
	}
	return v, nil
}

func (s *memoryConfigStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

func (s *memoryConfigStore) List(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out, nil
}

func (s *memoryConfigStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.settings[key]; !ok {
		return store.NotFound("config key", key)
	}
	delete(s.settings, key)
	return nil
}
