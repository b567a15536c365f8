// Package content turns stored clips into typed, ephemeral Content values.
// Nothing here fails: malformed input degrades to plain text with empty
// metadata.
package content

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yiblet/clipvault/internal/store"
)

// Type is the fine-grained kind of a Content.
type Type string

const (
	TypeText      Type = "text"
	TypeURL       Type = "url"
	TypeEmail     Type = "email"
	TypeColor     Type = "color"
	TypeCode      Type = "code"
	TypeJSON      Type = "json"
	TypeCSV       Type = "csv"
	TypeJWT       Type = "jwt"
	TypeTimestamp Type = "timestamp"
	TypeSecret    Type = "secret"
	TypePath      Type = "path"
	TypeMath      Type = "math"
	TypePhone     Type = "phone"
	TypeDate      Type = "date"
	TypeImage     Type = "image"
	TypeFiles     Type = "files"
	TypeOffice    Type = "office"
)

var detectedTypes = map[Type]bool{
	TypeText: true, TypeURL: true, TypeEmail: true, TypeColor: true,
	TypeCode: true, TypeJSON: true, TypeCSV: true, TypeJWT: true,
	TypeTimestamp: true, TypeSecret: true, TypePath: true, TypeMath: true,
	TypePhone: true, TypeDate: true,
}

// Content is a derived, typed view of a clip. It is never persisted.
type Content struct {
	Type     Type
	Text     string
	Metadata Metadata
	Clip     *store.Clip
}

// ClipToContent projects a clip into a Content. It is total: a nil clip or
// unreadable metadata still yields a valid value.
func ClipToContent(clip *store.Clip) Content {
	if clip == nil {
		return Content{Type: TypeText, Metadata: EmptyMetadata{}}
	}
	raw := parseObject(clip.Metadata)
	typ := resolveType(clip)
	return Content{
		Type:     typ,
		Text:     clip.ContentText,
		Metadata: buildMetadata(typ, raw, clip),
		Clip:     clip,
	}
}

func resolveType(clip *store.Clip) Type {
	switch clip.ContentType {
	case store.ContentImage:
		return TypeImage
	case store.ContentFiles:
		return TypeFiles
	case store.ContentOffice:
		return TypeOffice
	}
	t := Type(strings.ToLower(strings.TrimSpace(clip.DetectedType)))
	if detectedTypes[t] {
		return t
	}
	return TypeText
}

// parseObject decodes a JSON object, returning an empty map for anything
// else.
func parseObject(s string) map[string]any {
	if strings.TrimSpace(s) == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

func buildMetadata(typ Type, m map[string]any, clip *store.Clip) Metadata {
	switch typ {
	case TypeOffice:
		md := OfficeMetadata{
			SourceApp:  str(m, "source_app"),
			OfficePath: clip.OfficePath,
			PDFPath:    clip.PDFPath,
			ImagePath:  clip.ImagePath,
		}
		if clip.AppName != "" {
			md.SourceApp = clip.AppName
		}
		return md
	case TypeFiles:
		return filesMetadata(m, clip.FilePaths)
	}

	if len(m) == 0 {
		return EmptyMetadata{}
	}

	switch typ {
	case TypeURL:
		return URLMetadata{URL: str(m, "url"), Domain: str(m, "domain"), Protocol: str(m, "protocol")}
	case TypeEmail:
		return EmailMetadata{Email: str(m, "email"), Domain: str(m, "domain")}
	case TypeColor:
		return ColorMetadata{Hex: str(m, "hex"), Value: str(m, "value"), Format: str(m, "format")}
	case TypeCode:
		n, _ := num(m, "line_count")
		score, _ := num(m, "score")
		return CodeMetadata{Language: str(m, "language"), Score: score, LineCount: int(n)}
	case TypeCSV:
		return CSVMetadata{Delimiter: str(m, "delimiter")}
	case TypeDate, TypeTimestamp:
		v, _ := num(m, "value")
		return DateMetadata{ISO: str(m, "iso"), Unit: str(m, "unit"), Value: v}
	case TypePhone:
		return PhoneMetadata{Number: str(m, "number"), Country: str(m, "country")}
	case TypeMath:
		v, ok := num(m, "result")
		return MathMetadata{Expression: str(m, "expression"), Result: v, HasResult: ok}
	case TypeSecret:
		return SecretMetadata{Kind: str(m, "kind")}
	}
	return EmptyMetadata{}
}

func filesMetadata(m map[string]any, columnPaths []string) FilesMetadata {
	var md FilesMetadata
	if list, ok := m["files"].([]any); ok {
		for _, item := range list {
			f, ok := item.(map[string]any)
			if !ok {
				continue
			}
			size, _ := num(f, "size")
			created, _ := num(f, "created")
			modified, _ := num(f, "modified")
			entry := FileEntry{
				Path:     str(f, "path"),
				Name:     str(f, "name"),
				Size:     int64(size),
				Created:  created,
				Modified: modified,
			}
			if entry.Name == "" && entry.Path != "" {
				entry.Name = filepath.Base(entry.Path)
			}
			md.Files = append(md.Files, entry)
		}
	}
	if len(md.Files) == 0 {
		for _, p := range columnPaths {
			md.Files = append(md.Files, FileEntry{Path: p, Name: filepath.Base(p)})
		}
	}
	if n, ok := num(m, "count"); ok && int(n) >= len(md.Files) {
		md.Count = int(n)
	} else {
		md.Count = len(md.Files)
	}
	return md
}

func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func num(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}
