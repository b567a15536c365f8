package dbstore

import (
	"encoding/json"
	"time"

	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/datatypes"
)

// ClipModel maps the clips table. The table itself is created by schema.sql
// so the FTS triggers and indexes are under our control rather than
// AutoMigrate's.
type ClipModel struct {
	ID           int64 `gorm:"primaryKey;autoIncrement"`
	ContentType  string
	ContentText  string
	ContentHTML  string `gorm:"column:content_html"`
	ContentRTF   string `gorm:"column:content_rtf"`
	ImagePath    string
	SVGPath      string `gorm:"column:svg_path"`
	PDFPath      string `gorm:"column:pdf_path"`
	OfficePath   string
	FilePaths    datatypes.JSON
	DetectedType string
	Metadata     datatypes.JSON
	AppName      string
	IsPinned     bool
	IsFavorite   bool
	AccessCount  int64
	ContentHash  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for ClipModel
func (ClipModel) TableName() string {
	return "clips"
}

// ToClip converts the GORM model to a store.Clip
func (m *ClipModel) ToClip() *store.Clip {
	c := &store.Clip{
		ID:           m.ID,
		ContentType:  store.ContentType(m.ContentType),
		ContentText:  m.ContentText,
		ContentHTML:  m.ContentHTML,
		ContentRTF:   m.ContentRTF,
		ImagePath:    m.ImagePath,
		SVGPath:      m.SVGPath,
		PDFPath:      m.PDFPath,
		OfficePath:   m.OfficePath,
		DetectedType: m.DetectedType,
		Metadata:     string(m.Metadata),
		AppName:      m.AppName,
		IsPinned:     m.IsPinned,
		IsFavorite:   m.IsFavorite,
		AccessCount:  m.AccessCount,
		ContentHash:  m.ContentHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if len(m.FilePaths) > 0 {
		// A corrupt file list degrades to no files.
		_ = json.Unmarshal(m.FilePaths, &c.FilePaths)
	}
	return c
}

func clipModelFromInput(in *store.CaptureInput, now time.Time) *ClipModel {
	m := &ClipModel{
		ContentType:  string(in.ContentType),
		ContentText:  in.ContentText,
		ContentHTML:  in.ContentHTML,
		ContentRTF:   in.ContentRTF,
		ImagePath:    in.ImagePath,
		SVGPath:      in.SVGPath,
		PDFPath:      in.PDFPath,
		OfficePath:   in.OfficePath,
		DetectedType: in.DetectedType,
		AppName:      in.AppName,
		ContentHash:  in.ContentHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Metadata != "" {
		m.Metadata = datatypes.JSON(in.Metadata)
	}
	if len(in.FilePaths) > 0 {
		if b, err := json.Marshal(in.FilePaths); err == nil {
			m.FilePaths = datatypes.JSON(b)
		}
	}
	return m
}

// TagModel represents a tag in the database
type TagModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Name      string
	Color     string
	CreatedAt time.Time
}

// TableName returns the table name for TagModel
func (TagModel) TableName() string {
	return "tags"
}

func (m *TagModel) toTag() *store.Tag {
	return &store.Tag{ID: m.ID, Name: m.Name, Color: m.Color, CreatedAt: m.CreatedAt}
}

// CollectionModel represents a collection in the database
type CollectionModel struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	Name        string
	Description string
	CreatedAt   time.Time
}

// TableName returns the table name for CollectionModel
func (CollectionModel) TableName() string {
	return "collections"
}

func (m *CollectionModel) toCollection() *store.Collection {
	return &store.Collection{ID: m.ID, Name: m.Name, Description: m.Description, CreatedAt: m.CreatedAt}
}

// ClipTagModel is a row of the clip_tags junction table
type ClipTagModel struct {
	ClipID int64 `gorm:"primaryKey"`
	TagID  int64 `gorm:"primaryKey"`
}

// TableName returns the table name for ClipTagModel
func (ClipTagModel) TableName() string {
	return "clip_tags"
}

// ClipCollectionModel is a row of the clip_collections junction table
type ClipCollectionModel struct {
	ClipID       int64 `gorm:"primaryKey"`
	CollectionID int64 `gorm:"primaryKey"`
}

// TableName returns the table name for ClipCollectionModel
func (ClipCollectionModel) TableName() string {
	return "clip_collections"
}

// EmbeddingModel stores one vector per clip, serialized as a JSON array
type EmbeddingModel struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	ClipID     int64
	Model      string
	Dimensions int
	Vector     datatypes.JSON
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for EmbeddingModel
func (EmbeddingModel) TableName() string {
	return "embeddings"
}

func (m *EmbeddingModel) toEmbedding() (*store.Embedding, error) {
	e := &store.Embedding{
		ID:         m.ID,
		ClipID:     m.ClipID,
		Model:      m.Model,
		Dimensions: m.Dimensions,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if err := json.Unmarshal(m.Vector, &e.Vector); err != nil {
		return nil, err
	}
	return e, nil
}

// SettingModel represents a configuration key-value pair
type SettingModel struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for SettingModel
func (SettingModel) TableName() string {
	return "settings"
}
