package capture

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/yiblet/clipvault/internal/store"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	rtfGroupRe = regexp.MustCompile(`\{\\\*[^{}]*\}|\{\\(fonttbl|colortbl|stylesheet|info)[^{}]*(\{[^{}]*\}[^{}]*)*\}`)
	rtfCtrlRe  = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?`)
	rtfHexRe   = regexp.MustCompile(`\\'[0-9a-fA-F]{2}`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// DeriveText fills in content_text from the authoritative payload when the
// capturer did not provide it, so that every clip with readable content is
// searchable.
func DeriveText(in *store.CaptureInput) string {
	if strings.TrimSpace(in.ContentText) != "" {
		return in.ContentText
	}
	switch in.ContentType {
	case store.ContentHTML:
		return htmlToText(in.ContentHTML)
	case store.ContentRTF:
		return rtfToText(in.ContentRTF)
	case store.ContentFiles:
		return strings.Join(in.FilePaths, "\n")
	}
	return in.ContentText
}

// htmlToText keeps the text nodes of an HTML fragment, dropping script and
// style bodies and breaking lines after block elements.
func htmlToText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	hidden := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return tidy(b.String())
		case html.TextToken:
			if hidden == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				if tt == html.StartTagToken {
					hidden++
				}
			case atom.Br:
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				if hidden > 0 {
					hidden--
				}
			case atom.P, atom.Div, atom.Li, atom.Tr, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				b.WriteByte('\n')
			}
		}
	}
}

func rtfToText(s string) string {
	s = rtfGroupRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `\par`, "\n")
	s = rtfHexRe.ReplaceAllString(s, "")
	s = rtfCtrlRe.ReplaceAllString(s, "")
	s = strings.NewReplacer("{", "", "}", "", `\\`, `\`).Replace(s)
	return tidy(s)
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankRunRe.ReplaceAllString(s, "\n\n"))
}

// Preview creates a one-line label from text: the first non-empty line,
// sanitized and cut to maxLen runes.
func Preview(text string, maxLen int) string {
	if text == "" {
		return "[empty]"
	}
	for _, line := range strings.Split(text, "\n") {
		if cleaned := strings.TrimSpace(line); cleaned != "" {
			return Truncate(Sanitize(cleaned), maxLen)
		}
	}
	if sanitized := Sanitize(text); sanitized != "" {
		return Truncate(sanitized, maxLen)
	}
	return "[empty]"
}

// ClipLabel is Preview for a stored clip, with placeholders for payloads
// that have no text.
func ClipLabel(c *store.Clip, maxLen int) string {
	if strings.TrimSpace(c.ContentText) != "" {
		return Preview(c.ContentText, maxLen)
	}
	switch c.ContentType {
	case store.ContentImage:
		return "[image]"
	case store.ContentOffice:
		return "[office document]"
	case store.ContentFiles:
		return "[files]"
	}
	return "[empty]"
}

// Truncate ensures s is at most maxLen runes, marking a cut with "...".
func Truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return strings.Repeat(".", maxLen)
	}
	return string(runes[:maxLen-3]) + "..."
}

// Sanitize replaces control characters with spaces and collapses
// whitespace, so labels are safe to print in a terminal.
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// isBinary reports whether data looks like binary rather than text.
func isBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sampleSize := len(data)
	if sampleSize > 8192 {
		sampleSize = 8192
	}

	nonPrintable := 0
	for i := 0; i < sampleSize; i++ {
		b := data[i]
		if b == 0 {
			return true
		}
		if b < 32 && b != '\n' && b != '\r' && b != '\t' {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(sampleSize) > 0.3
}
