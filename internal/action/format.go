package action

import (
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yiblet/clipvault/internal/content"
)

// hexToRGB converts #rgb, #rrggbb or #rrggbbaa to an rgb()/rgba() literal.
func hexToRGB(hex string) (string, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 && len(h) != 8 {
		return "", fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return "", fmt.Errorf("invalid hex color %q", hex)
	}
	if len(h) == 8 {
		r, g, b, a := v>>24, (v>>16)&0xff, (v>>8)&0xff, v&0xff
		alpha := strconv.FormatFloat(math.Round(float64(a)/255*100)/100, 'f', -1, 64)
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, alpha), nil
	}
	return fmt.Sprintf("rgb(%d, %d, %d)", v>>16, (v>>8)&0xff, v&0xff), nil
}

func markdownFence(lang, code string) string {
	fence := "```"
	for strings.Contains(code, fence) {
		fence += "`"
	}
	return fence + lang + "\n" + strings.TrimRight(code, "\n") + "\n" + fence
}

func parseDelimited(text, delimiter string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	d := []rune(delimiter)
	if len(d) != 1 {
		return nil, fmt.Errorf("unsupported delimiter %q", delimiter)
	}
	r.Comma = d[0]
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse table: %w", err)
	}
	return rows, nil
}

func toTSV(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(strings.NewReplacer("\t", " ", "\n", " ").Replace(cell))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func toMarkdownTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	line := func(cells []string) string {
		out := make([]string, width)
		for i := range out {
			if i < len(cells) {
				out[i] = strings.NewReplacer("|", `\|`, "\n", " ").Replace(strings.TrimSpace(cells[i]))
			}
		}
		return "| " + strings.Join(out, " | ") + " |"
	}
	var b strings.Builder
	b.WriteString(line(rows[0]))
	b.WriteByte('\n')
	sep := make([]string, width)
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range rows[1:] {
		b.WriteString(line(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// unixSeconds converts date metadata to seconds since the epoch.
func unixSeconds(m content.DateMetadata) (int64, error) {
	if m.ISO != "" {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, m.ISO); err == nil {
				return t.Unix(), nil
			}
		}
	}
	if m.Value == 0 {
		return 0, fmt.Errorf("no usable date in metadata")
	}
	switch m.Unit {
	case "", "s":
		return int64(m.Value), nil
	case "ms":
		return int64(m.Value / 1e3), nil
	case "us":
		return int64(m.Value / 1e6), nil
	case "ns":
		return int64(m.Value / 1e9), nil
	}
	return 0, fmt.Errorf("unknown timestamp unit %q", m.Unit)
}

func phoneDigits(number string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(number) {
		if r >= '0' && r <= '9' || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 1 && strings.HasPrefix(b.String(), "+") {
		return ""
	}
	return b.String()
}
