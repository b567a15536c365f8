package store

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ContentType is the coarse kind of a captured payload. Exactly one payload
// slot on a Clip is authoritative for each content type.
type ContentType string

const (
	ContentText   ContentType = "text"
	ContentHTML   ContentType = "html"
	ContentRTF    ContentType = "rtf"
	ContentImage  ContentType = "image"
	ContentFiles  ContentType = "files"
	ContentOffice ContentType = "office"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentHTML, ContentRTF, ContentImage, ContentFiles, ContentOffice:
		return true
	}
	return false
}

// Clip is one captured clipboard payload.
type Clip struct {
	ID          int64
	ContentType ContentType

	// Payload slots.
	ContentText string
	ContentHTML string
	ContentRTF  string
	ImagePath   string
	SVGPath     string
	PDFPath     string
	OfficePath  string
	FilePaths   []string

	// DetectedType is the fine classification produced at capture time
	// (url, email, color, code, ...). Metadata is its raw JSON payload and
	// is not guaranteed to parse.
	DetectedType string
	Metadata     string

	AppName     string
	IsPinned    bool
	IsFavorite  bool
	AccessCount int64
	ContentHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the clip.
func (c *Clip) Clone() *Clip {
	if c == nil {
		return nil
	}
	out := *c
	if c.FilePaths != nil {
		out.FilePaths = append([]string(nil), c.FilePaths...)
	}
	return &out
}

// CaptureInput holds a payload handed over by the capture collaborator.
type CaptureInput struct {
	ContentType  ContentType
	ContentText  string
	ContentHTML  string
	ContentRTF   string
	ImagePath    string
	SVGPath      string
	PDFPath      string
	OfficePath   string
	FilePaths    []string
	DetectedType string
	Metadata     string
	AppName      string

	// ContentHash is computed with HashContent when empty.
	ContentHash string

	// Timestamp overrides the capture time. Zero means now.
	Timestamp time.Time
}

// CaptureResult is the outcome of a capture.
type CaptureResult struct {
	Clip *Clip

	// Duplicate is set when an existing row was bumped instead of a new row
	// being inserted.
	Duplicate bool
}

// DuplicatePolicy decides what a capture does when a row with the same
// content hash already exists.
type DuplicatePolicy string

const (
	// DuplicateBump refreshes updated_at and increments access_count on the
	// most recent matching row instead of inserting.
	DuplicateBump DuplicatePolicy = "bump"
	// DuplicateInsert always inserts a new row.
	DuplicateInsert DuplicatePolicy = "insert"
)

// ParseDuplicatePolicy maps a config string to a policy, defaulting to bump.
func ParseDuplicatePolicy(s string) DuplicatePolicy {
	if DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) == DuplicateInsert {
		return DuplicateInsert
	}
	return DuplicateBump
}

// ListQuery pages through clips in recency order (updated_at DESC, id DESC).
type ListQuery struct {
	Limit  int
	Offset int

	// ContentTypes restricts results to the given types when non-empty.
	ContentTypes []ContentType

	FavoritesOnly bool
	PinnedOnly    bool
}

// SearchQuery pages through keyword matches on content_text.
type SearchQuery struct {
	Query        string
	ContentTypes []ContentType
	Limit        int
	Offset       int
}

// SearchHit is a ranked search result. Higher scores rank first.
type SearchHit struct {
	Clip  *Clip
	Score float64
}

// Tag labels clips. Deleting a tag never deletes its clips.
type Tag struct {
	ID        int64
	Name      string
	Color     string
	CreatedAt time.Time
}

// Collection groups clips. Deleting a collection never deletes its clips.
type Collection struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Embedding is the vector representation of one clip. A clip has at most one.
// An embedding older than its clip's updated_at is stale.
type Embedding struct {
	ID         int64
	ClipID     int64
	Model      string
	Dimensions int
	Vector     []float32
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Stale reports whether the embedding predates the clip's last content change.
func (e *Embedding) Stale(c *Clip) bool {
	return e == nil || c == nil || e.UpdatedAt.Before(c.UpdatedAt)
}

// HashContent returns the hex sha256 of the authoritative payload of in.
func HashContent(in *CaptureInput) string {
	h := sha256.New()
	h.Write([]byte(in.ContentType))
	h.Write([]byte{0})
	switch in.ContentType {
	case ContentImage:
		h.Write([]byte(in.ImagePath))
		h.Write([]byte(in.SVGPath))
	case ContentFiles:
		h.Write([]byte(strings.Join(in.FilePaths, "\n")))
	case ContentOffice:
		h.Write([]byte(in.OfficePath))
		h.Write([]byte(in.ContentText))
	case ContentHTML:
		h.Write([]byte(in.ContentHTML))
	case ContentRTF:
		h.Write([]byte(in.ContentRTF))
	default:
		h.Write([]byte(in.ContentText))
	}
	return hex.EncodeToString(h.Sum(nil))
}
