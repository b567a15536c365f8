package tui

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

const tabWidth = 4

// WrapText wraps text to fit within maxWidth display columns, breaking on word
// boundaries when possible. Tabs are expanded and newlines always start a new
// line. Height truncation is left to the caller.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{}
	}

	var result []string
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth))
		if line == "" {
			result = append(result, "")
			continue
		}
		if runewidth.StringWidth(line) <= maxWidth {
			result = append(result, line)
			continue
		}
		result = append(result, wrapLine(line, maxWidth)...)
	}
	return result
}

// wrapLine wraps a single line that is too long.
func wrapLine(line string, maxWidth int) []string {
	var result []string
	var current strings.Builder
	currentWidth := 0

	flush := func() {
		result = append(result, current.String())
		current.Reset()
		currentWidth = 0
	}

	for _, word := range splitWords(line) {
		wordWidth := runewidth.StringWidth(word)

		if wordWidth > maxWidth {
			if currentWidth > 0 {
				flush()
			}
			result = append(result, breakWord(word, maxWidth)...)
			continue
		}

		needed := wordWidth
		if currentWidth > 0 {
			needed++
		}
		if currentWidth+needed > maxWidth {
			flush()
		}
		if currentWidth > 0 {
			current.WriteByte(' ')
			currentWidth++
		}
		current.WriteString(word)
		currentWidth += wordWidth
	}

	if currentWidth > 0 {
		flush()
	}
	return result
}

// breakWord splits a word into chunks of at most maxWidth columns. A rune
// wider than maxWidth gets a chunk of its own.
func breakWord(word string, maxWidth int) []string {
	var chunks []string
	var current strings.Builder
	width := 0
	for _, r := range word {
		w := runewidth.RuneWidth(r)
		if width > 0 && width+w > maxWidth {
			chunks = append(chunks, current.String())
			current.Reset()
			width = 0
		}
		current.WriteRune(r)
		width += w
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, unicode.IsSpace)
}

// truncate cuts s to at most width display columns, marking a cut with "…".
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// singleLine collapses s onto one line for list rows and titles.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
