package dbstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sqliteEmbeddingStore implements store.EmbeddingStore
type sqliteEmbeddingStore struct {
	db *gorm.DB
}

// UpsertEmbedding stores or replaces a clip's embedding
func (s *sqliteEmbeddingStore) UpsertEmbedding(ctx context.Context, e *store.Embedding) error {
	if e == nil || len(e.Vector) == 0 {
		return fmt.Errorf("failed to store embedding: empty vector: %w", store.ErrInvalidInput)
	}
	vec, err := json.Marshal(e.Vector)
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}
	ts := now()
	m := &EmbeddingModel{
		ClipID:     e.ClipID,
		Model:      e.Model,
		Dimensions: len(e.Vector),
		Vector:     datatypes.JSON(vec),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &ClipModel{}, "clip", e.ClipID); err != nil {
			return err
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "clip_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"model", "dimensions", "vector", "updated_at"}),
		}).Create(m).Error
		if err != nil {
			return fmt.Errorf("failed to store embedding: %w", err)
		}
		return nil
	})
}

// GetEmbedding returns a clip's embedding
func (s *sqliteEmbeddingStore) GetEmbedding(ctx context.Context, clipID int64) (*store.Embedding, error) {
	var m EmbeddingModel
	if err := s.db.WithContext(ctx).Where("clip_id = ?", clipID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.NotFound("embedding", clipID)
		}
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}
	e, err := m.toEmbedding()
	if err != nil {
		return nil, fmt.Errorf("failed to decode vector for clip %d: %w", clipID, err)
	}
	return e, nil
}

// ListEmbeddings returns all embeddings for a model
func (s *sqliteEmbeddingStore) ListEmbeddings(ctx context.Context, model string) ([]*store.Embedding, error) {
	q := s.db.WithContext(ctx).Order("clip_id DESC")
	if model != "" {
		q = q.Where("model = ?", model)
	}
	var models []*EmbeddingModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}
	out := make([]*store.Embedding, 0, len(models))
	for _, m := range models {
		e, err := m.toEmbedding()
		if err != nil {
			// Skip rows whose vector can't be decoded; they show up as stale.
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// StaleClipIDs lists clips whose embedding is missing, older than the clip,
// or produced by a different model
func (s *sqliteEmbeddingStore) StaleClipIDs(ctx context.Context, model string, limit int) ([]int64, error) {
	sql := `SELECT clips.id FROM clips
		LEFT JOIN embeddings ON embeddings.clip_id = clips.id
		WHERE clips.content_text != ''
		  AND (embeddings.id IS NULL
		       OR embeddings.updated_at < clips.updated_at
		       OR (? != '' AND embeddings.model != ?))
		ORDER BY clips.updated_at DESC, clips.id DESC` + limitClause(limit, 0)
	var ids []int64
	if err := s.db.WithContext(ctx).Raw(sql, model, model).Scan(&ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list stale embeddings: %w", err)
	}
	return ids, nil
}

// DeleteEmbedding removes a clip's embedding
func (s *sqliteEmbeddingStore) DeleteEmbedding(ctx context.Context, clipID int64) error {
	result := s.db.WithContext(ctx).Where("clip_id = ?", clipID).Delete(&EmbeddingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete embedding: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NotFound("embedding", clipID)
	}
	return nil
}
