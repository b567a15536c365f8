package dbstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sqliteConfigStore implements store.ConfigStore over the settings table
type sqliteConfigStore struct {
	db *gorm.DB
}

// Get retrieves a setting by key
func (s *sqliteConfigStore) Get(ctx context.Context, key string) (string, error) {
	var model SettingModel
	if err := s.db.WithContext(ctx).First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", store.NotFound("config key", key)
		}
		return "", fmt.Errorf("failed to get config: %w", err)
	}
	return model.Value, nil
}

// Set stores a setting (upsert)
func (s *sqliteConfigStore) Set(ctx context.Context, key, value string) error {
	ts := now()
	model := &SettingModel{Key: key, Value: value, CreatedAt: ts, UpdatedAt: ts}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to set config: %w", err)
	}
	return nil
}

// List returns all settings
func (s *sqliteConfigStore) List(ctx context.Context) (map[string]string, error) {
	var models []SettingModel
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list config: %w", err)
	}
	out := make(map[string]string, len(models))
	for _, m := range models {
		out[m.Key] = m.Value
	}
	return out, nil
}

// Delete removes a setting
func (s *sqliteConfigStore) Delete(ctx context.Context, key string) error {
	result := s.db.WithContext(ctx).Delete(&SettingModel{}, "key = ?", key)
	if result.Error != nil {
		return fmt.Errorf("failed to delete config: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NotFound("config key", key)
	}
	return nil
}
