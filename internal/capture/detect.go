package capture

import (
	"encoding/json"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yiblet/clipvault/internal/content"
)

// Detection is the fine classification of a text payload.
type Detection struct {
	Type     content.Type
	Metadata map[string]any
}

var (
	hexColorRe  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	rgbColorRe  = regexp.MustCompile(`^rgba?\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*(,\s*[\d.]+\s*)?\)$`)
	jwtRe       = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}$`)
	epochRe     = regexp.MustCompile(`^\d{10}(\d{3})?$`)
	phoneRe     = regexp.MustCompile(`^\+?[\d\s().-]{7,20}$`)
	mathRe      = regexp.MustCompile(`^[\d\s.+\-*/()%^]+$`)
	mathOpRe    = regexp.MustCompile(`\d\s*[+\-*/%^]\s*[\d(]`)
	secretRules = []struct {
		kind string
		re   *regexp.Regexp
	}{
		{"aws_access_key", regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`)},
		{"github_token", regexp.MustCompile(`^gh[pousr]_[A-Za-z0-9]{36,}$`)},
		{"slack_token", regexp.MustCompile(`^xox[baprs]-[A-Za-z0-9-]{10,}$`)},
		{"api_key", regexp.MustCompile(`^sk-[A-Za-z0-9_-]{20,}$`)},
		{"private_key", regexp.MustCompile(`^-----BEGIN [A-Z ]*PRIVATE KEY-----`)},
	}
	codeHints = map[string][]string{
		"go":         {"package ", "func ", ":= ", "import ("},
		"python":     {"def ", "import ", "self.", "elif "},
		"javascript": {"const ", "function ", "=> ", "console.log"},
		"rust":       {"fn ", "let mut ", "impl ", "pub fn"},
		"sql":        {"SELECT ", "INSERT INTO", "CREATE TABLE", " WHERE "},
		"shell":      {"#!/bin/", "echo ", "export ", "fi\n"},
	}
	dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}
)

// Detect classifies text. It is a light heuristic for payloads captured by
// the watcher; clips imported with a detected type keep theirs.
func Detect(text string) Detection {
	s := strings.TrimSpace(text)
	if s == "" {
		return Detection{Type: content.TypeText}
	}
	single := !strings.ContainsAny(s, "\n\r")

	for _, r := range secretRules {
		if r.re.MatchString(s) {
			return Detection{Type: content.TypeSecret, Metadata: map[string]any{"kind": r.kind}}
		}
	}

	if single {
		if d, ok := detectSingleLine(s); ok {
			return d
		}
	}

	if (strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")) && json.Valid([]byte(s)) {
		return Detection{Type: content.TypeJSON}
	}
	if d, ok := detectCSV(s); ok {
		return d
	}
	if d, ok := detectCode(s); ok {
		return d
	}
	return Detection{Type: content.TypeText}
}

func detectSingleLine(s string) (Detection, bool) {
	if u, err := url.Parse(s); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" && !strings.Contains(s, " ") {
		return Detection{Type: content.TypeURL, Metadata: map[string]any{
			"url": s, "domain": u.Hostname(), "protocol": u.Scheme,
		}}, true
	}
	if !strings.Contains(s, " ") && strings.Count(s, "@") == 1 {
		if addr, err := mail.ParseAddress(s); err == nil && addr.Address == s {
			return Detection{Type: content.TypeEmail, Metadata: map[string]any{
				"email": s, "domain": s[strings.LastIndex(s, "@")+1:],
			}}, true
		}
	}
	if hexColorRe.MatchString(s) {
		return Detection{Type: content.TypeColor, Metadata: map[string]any{
			"hex": strings.ToLower(s), "value": s, "format": "hex",
		}}, true
	}
	if rgbColorRe.MatchString(s) {
		return Detection{Type: content.TypeColor, Metadata: map[string]any{
			"value": s, "format": strings.SplitN(s, "(", 2)[0],
		}}, true
	}
	if jwtRe.MatchString(s) {
		return Detection{Type: content.TypeJWT}, true
	}
	if epochRe.MatchString(s) {
		v, _ := strconv.ParseInt(s, 10, 64)
		unit, t := "s", time.Unix(v, 0)
		if len(s) == 13 {
			unit, t = "ms", time.UnixMilli(v)
		}
		return Detection{Type: content.TypeTimestamp, Metadata: map[string]any{
			"iso": t.UTC().Format(time.RFC3339), "unit": unit, "value": float64(v),
		}}, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Detection{Type: content.TypeDate, Metadata: map[string]any{
				"iso": t.UTC().Format(time.RFC3339), "value": float64(t.Unix()),
			}}, true
		}
	}
	if phoneRe.MatchString(s) {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
		if len(digits) >= 7 && len(digits) <= 15 {
			return Detection{Type: content.TypePhone, Metadata: map[string]any{"number": s}}, true
		}
	}
	if mathRe.MatchString(s) && mathOpRe.MatchString(s) {
		md := map[string]any{"expression": s}
		if v, err := evalMath(s); err == nil {
			md["result"] = v
		}
		return Detection{Type: content.TypeMath, Metadata: md}, true
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "~/") || strings.HasPrefix(s, "./") {
		if !strings.Contains(s, " ") || strings.Count(s, "/") > 1 {
			return Detection{Type: content.TypePath}, true
		}
	}
	return Detection{}, false
}

// detectCSV accepts two or more lines that split into the same number
// (at least two) of fields on one delimiter.
func detectCSV(s string) (Detection, bool) {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return Detection{}, false
	}
	for _, delim := range []string{"\t", ",", ";", "|"} {
		want := strings.Count(lines[0], delim)
		if want == 0 {
			continue
		}
		ok := true
		for _, l := range lines[1:] {
			if strings.TrimSpace(l) == "" {
				continue
			}
			if strings.Count(l, delim) != want {
				ok = false
				break
			}
		}
		if ok {
			return Detection{Type: content.TypeCSV, Metadata: map[string]any{"delimiter": delim}}, true
		}
	}
	return Detection{}, false
}

func detectCode(s string) (Detection, bool) {
	best, bestHits := "", 0
	for lang, hints := range codeHints {
		hits := 0
		for _, h := range hints {
			if strings.Contains(s, h) {
				hits++
			}
		}
		if hits > bestHits || (hits == bestHits && hits > 0 && lang < best) {
			best, bestHits = lang, hits
		}
	}
	punct := strings.Count(s, "{") + strings.Count(s, ";") + strings.Count(s, "}")
	if bestHits < 2 && punct < 3 {
		return Detection{}, false
	}
	if best == "" {
		best = "unknown"
	}
	lines := strings.Count(s, "\n") + 1
	score := float64(bestHits) / 4
	if score > 1 {
		score = 1
	}
	return Detection{Type: content.TypeCode, Metadata: map[string]any{
		"language": best, "score": score, "line_count": lines,
	}}, true
}
