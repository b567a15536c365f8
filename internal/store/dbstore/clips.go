package dbstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/gorm"
)

// minTrigramRunes is the shortest query the trigram tokenizer can match.
// Shorter queries fall back to LIKE.
const minTrigramRunes = 3

// sqliteClipStore implements store.ClipStore. Full-text sync is done by the
// triggers in schema.sql, never by this code.
type sqliteClipStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Capture persists a payload, honoring the duplicate policy
func (s *sqliteClipStore) Capture(ctx context.Context, in *store.CaptureInput, policy store.DuplicatePolicy) (*store.CaptureResult, error) {
	if in == nil || !in.ContentType.Valid() {
		return nil, fmt.Errorf("failed to capture clip: %w", store.ErrInvalidInput)
	}
	hash := in.ContentHash
	if hash == "" {
		hash = store.HashContent(in)
	}
	ts := now()
	if !in.Timestamp.IsZero() {
		ts = in.Timestamp.UTC().Truncate(time.Microsecond)
	}

	var result *store.CaptureResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if policy != store.DuplicateInsert {
			var existing ClipModel
			res := tx.Where("content_hash = ? AND content_type = ?", hash, string(in.ContentType)).
				Order("updated_at DESC, id DESC").
				Limit(1).
				Find(&existing)
			if res.Error != nil {
				return fmt.Errorf("failed to look up duplicate: %w", res.Error)
			}
			if res.RowsAffected > 0 {
				updates := map[string]any{
					"updated_at":   ts,
					"access_count": gorm.Expr("access_count + 1"),
				}
				if in.AppName != "" {
					updates["app_name"] = in.AppName
				}
				if err := tx.Model(&existing).UpdateColumns(updates).Error; err != nil {
					return fmt.Errorf("failed to bump duplicate: %w", err)
				}
				if err := tx.First(&existing, existing.ID).Error; err != nil {
					return fmt.Errorf("failed to reload duplicate: %w", err)
				}
				result = &store.CaptureResult{Clip: existing.ToClip(), Duplicate: true}
				return nil
			}
		}

		m := clipModelFromInput(in, ts)
		m.ContentHash = hash
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("failed to create clip: %w", err)
		}
		result = &store.CaptureResult{Clip: m.ToClip()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get retrieves a single clip by ID
func (s *sqliteClipStore) Get(ctx context.Context, id int64) (*store.Clip, error) {
	var m ClipModel
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.NotFound("clip", id)
		}
		return nil, fmt.Errorf("failed to get clip: %w", err)
	}
	return m.ToClip(), nil
}

// GetMany retrieves clips preserving the order of ids
func (s *sqliteClipStore) GetMany(ctx context.Context, ids []int64) ([]*store.Clip, error) {
	if len(ids) == 0 {
		return []*store.Clip{}, nil
	}
	var models []*ClipModel
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to get clips: %w", err)
	}
	byID := make(map[int64]*ClipModel, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}
	clips := make([]*store.Clip, 0, len(models))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			clips = append(clips, m.ToClip())
		}
	}
	return clips, nil
}

// ListRecent pages through clips newest first
func (s *sqliteClipStore) ListRecent(ctx context.Context, q *store.ListQuery) ([]*store.Clip, error) {
	if q == nil {
		q = &store.ListQuery{}
	}
	query := s.db.WithContext(ctx).Model(&ClipModel{})
	if len(q.ContentTypes) > 0 {
		query = query.Where("content_type IN ?", contentTypeStrings(q.ContentTypes))
	}
	if q.FavoritesOnly {
		query = query.Where("is_favorite = ?", true)
	}
	if q.PinnedOnly {
		query = query.Where("is_pinned = ?", true)
	}
	query = paginate(query.Order("updated_at DESC, id DESC"), q.Limit, q.Offset)

	var models []*ClipModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	return toClips(models), nil
}

type searchRow struct {
	ClipModel `gorm:"embedded"`
	Score     float64
}

// Search matches content_text through the trigram FTS index, ranked by bm25.
// Queries too short for trigrams use a LIKE scan in recency order.
func (s *sqliteClipStore) Search(ctx context.Context, q *store.SearchQuery) ([]*store.SearchHit, error) {
	if q == nil || strings.TrimSpace(q.Query) == "" {
		return []*store.SearchHit{}, nil
	}
	text := strings.TrimSpace(q.Query)

	if utf8.RuneCountInString(text) < minTrigramRunes {
		return s.searchLike(ctx, text, q)
	}

	sql := `SELECT clips.*, -clips_fts.rank AS score
		FROM clips_fts
		JOIN clips ON clips.id = clips_fts.rowid
		WHERE clips_fts MATCH ?`
	args := []any{ftsPhrase(text)}
	if len(q.ContentTypes) > 0 {
		sql += " AND clips.content_type IN ?"
		args = append(args, contentTypeStrings(q.ContentTypes))
	}
	sql += " ORDER BY clips_fts.rank, clips.updated_at DESC, clips.id DESC"
	sql += limitClause(q.Limit, q.Offset)

	var rows []*searchRow
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search clips: %w", err)
	}
	hits := make([]*store.SearchHit, len(rows))
	for i, r := range rows {
		hits[i] = &store.SearchHit{Clip: r.ClipModel.ToClip(), Score: r.Score}
	}
	return hits, nil
}

func (s *sqliteClipStore) searchLike(ctx context.Context, text string, q *store.SearchQuery) ([]*store.SearchHit, error) {
	query := s.db.WithContext(ctx).Model(&ClipModel{}).
		Where(`content_text LIKE ? ESCAPE '\'`, "%"+escapeLike(text)+"%")
	if len(q.ContentTypes) > 0 {
		query = query.Where("content_type IN ?", contentTypeStrings(q.ContentTypes))
	}
	query = paginate(query.Order("updated_at DESC, id DESC"), q.Limit, q.Offset)

	var models []*ClipModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to search clips: %w", err)
	}
	hits := make([]*store.SearchHit, len(models))
	for i, m := range models {
		hits[i] = &store.SearchHit{Clip: m.ToClip(), Score: 1}
	}
	return hits, nil
}

// Delete removes a clip; junction and embedding rows go with it through
// ON DELETE CASCADE
func (s *sqliteClipStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&ClipModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete clip: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NotFound("clip", id)
	}
	return nil
}

// ToggleFavorite flips is_favorite without touching updated_at
func (s *sqliteClipStore) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	return s.toggle(ctx, id, "is_favorite")
}

// TogglePin flips is_pinned without touching updated_at
func (s *sqliteClipStore) TogglePin(ctx context.Context, id int64) (bool, error) {
	return s.toggle(ctx, id, "is_pinned")
}

func (s *sqliteClipStore) toggle(ctx context.Context, id int64, column string) (bool, error) {
	var value bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m ClipModel
		if err := tx.Select("id", column).First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.NotFound("clip", id)
			}
			return fmt.Errorf("failed to get clip: %w", err)
		}
		current := m.IsFavorite
		if column == "is_pinned" {
			current = m.IsPinned
		}
		value = !current
		if err := tx.Model(&ClipModel{ID: id}).UpdateColumn(column, value).Error; err != nil {
			return fmt.Errorf("failed to update %s: %w", column, err)
		}
		return nil
	})
	return value, err
}

// Touch increments access_count
func (s *sqliteClipStore) Touch(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Model(&ClipModel{ID: id}).
		UpdateColumn("access_count", gorm.Expr("access_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to touch clip: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NotFound("clip", id)
	}
	return nil
}

// UpdateText replaces content_text; the update trigger refreshes the index
func (s *sqliteClipStore) UpdateText(ctx context.Context, id int64, text string) (*store.Clip, error) {
	var m ClipModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.NotFound("clip", id)
			}
			return fmt.Errorf("failed to get clip: %w", err)
		}
		in := &store.CaptureInput{
			ContentType: store.ContentType(m.ContentType),
			ContentText: text,
			ContentHTML: m.ContentHTML,
			ContentRTF:  m.ContentRTF,
			ImagePath:   m.ImagePath,
			SVGPath:     m.SVGPath,
			OfficePath:  m.OfficePath,
		}
		updates := map[string]any{
			"content_text": text,
			"content_hash": store.HashContent(in),
			"updated_at":   now(),
		}
		if err := tx.Model(&m).UpdateColumns(updates).Error; err != nil {
			return fmt.Errorf("failed to update clip: %w", err)
		}
		return tx.First(&m, id).Error
	})
	if err != nil {
		return nil, err
	}
	return m.ToClip(), nil
}

// DeleteOldest removes up to count of the oldest unpinned, non-favorite clips
func (s *sqliteClipStore) DeleteOldest(ctx context.Context, count int) ([]*store.Clip, error) {
	if count <= 0 {
		return nil, nil
	}
	var removed []*ClipModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("is_pinned = ? AND is_favorite = ?", false, false).
			Order("updated_at ASC, id ASC").
			Limit(count).
			Find(&removed).Error; err != nil {
			return fmt.Errorf("failed to find oldest clips: %w", err)
		}
		if len(removed) == 0 {
			return nil
		}
		ids := make([]int64, len(removed))
		for i, m := range removed {
			ids[i] = m.ID
		}
		if err := tx.Delete(&ClipModel{}, ids).Error; err != nil {
			return fmt.Errorf("failed to delete clips: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toClips(removed), nil
}

// Count returns the total number of clips
func (s *sqliteClipStore) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&ClipModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clips: %w", err)
	}
	return int(count), nil
}

// Clear removes all clips
func (s *sqliteClipStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&ClipModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear clips: %w", err)
	}
	return nil
}

// Reindex rebuilds clips_fts from the clips table
func (s *sqliteClipStore) Reindex(ctx context.Context) error {
	s.log.Debug().Msg("rebuilding full-text index")
	if err := s.db.WithContext(ctx).Exec("INSERT INTO clips_fts(clips_fts) VALUES('rebuild')").Error; err != nil {
		return fmt.Errorf("failed to rebuild search index: %w", err)
	}
	cfg := &sqliteConfigStore{db: s.db}
	if err := cfg.Set(ctx, "last_reindex", now().Format("2006-01-02T15:04:05Z07:00")); err != nil {
		s.log.Warn().Err(err).Msg("failed to record reindex time")
	}
	s.log.Debug().Msg("full-text index rebuilt")
	return nil
}

// VerifyIndex runs the FTS5 integrity check against the content table
func (s *sqliteClipStore) VerifyIndex(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Exec("INSERT INTO clips_fts(clips_fts, rank) VALUES('integrity-check', 1)").Error
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrIndexDrift, err)
	}
	return nil
}

func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		if limit <= 0 {
			q = q.Limit(-1)
		}
		q = q.Offset(offset)
	}
	return q
}

func limitClause(limit, offset int) string {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}

// ftsPhrase quotes text as a single FTS5 phrase so operators and
// punctuation in clipboard content are matched literally.
func ftsPhrase(text string) string {
	return `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
}

func escapeLike(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(text)
}

func contentTypeStrings(types []store.ContentType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func toClips(models []*ClipModel) []*store.Clip {
	clips := make([]*store.Clip, len(models))
	for i, m := range models {
		clips[i] = m.ToClip()
	}
	return clips
}
