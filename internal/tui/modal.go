package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/yiblet/clipvault/internal/capture"
	"github.com/yiblet/clipvault/internal/store"
)

// ModalMsg represents messages that the modal component handles
type ModalMsg interface {
	isModalMsg()
}

type ShowModalMsg struct {
	Title   string
	Content string
	Options string
}

func (ShowModalMsg) isModalMsg() {}

type HideModalMsg struct{}

func (HideModalMsg) isModalMsg() {}

// ModalModel holds the state for modal dialogs
type ModalModel struct {
	Active  bool
	Title   string
	Content string
	Options string
	Width   int
	Height  int
}

func NewModalModel() ModalModel {
	return ModalModel{Width: 60, Height: 10}
}

func (m *ModalModel) Update(msg ModalMsg) {
	switch msg := msg.(type) {
	case ShowModalMsg:
		m.Active = true
		m.Title = msg.Title
		m.Content = msg.Content
		m.Options = msg.Options
	case HideModalMsg:
		m.Active = false
		m.Title = ""
		m.Content = ""
		m.Options = ""
	}
}

// ModalView draws the modal centered over backgroundView.
func ModalView(model ModalModel, backgroundView string, windowWidth, windowHeight int) string {
	if !model.Active {
		return backgroundView
	}

	body := lipgloss.NewStyle().Bold(true).Render(model.Title)
	if model.Content != "" {
		body += "\n\n" + model.Content
	}
	if model.Options != "" {
		body += "\n\n" + model.Options
	}

	width := min(model.Width, windowWidth-4)
	height := min(max(model.Height, strings.Count(body, "\n")+3), windowHeight-4)

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("9")).
		Padding(1, 2).
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)

	return overlay(backgroundView, modal, windowWidth, windowHeight)
}

// overlay places fg centered on bg, keeping the background visible on both
// sides of each covered line.
func overlay(bg, fg string, windowWidth, windowHeight int) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")

	startY := max((windowHeight-len(fgLines))/2, 0)
	startX := max((windowWidth-lipgloss.Width(fgLines[0]))/2, 0)

	var result strings.Builder
	for i, bgLine := range bgLines {
		if i > 0 {
			result.WriteString("\n")
		}
		idx := i - startY
		if idx < 0 || idx >= len(fgLines) {
			result.WriteString(bgLine)
			continue
		}

		bgWidth := lipgloss.Width(bgLine)
		fgLine := fgLines[idx]
		if startX > 0 && bgWidth > 0 {
			before := truncateToVisualWidth(bgLine, startX)
			result.WriteString(before)
			// pad short background lines so the modal stays centered
			if w := lipgloss.Width(before); w < startX {
				result.WriteString(strings.Repeat(" ", startX-w))
			}
		} else if startX > 0 {
			result.WriteString(strings.Repeat(" ", startX))
		}
		result.WriteString(fgLine)
		if end := startX + lipgloss.Width(fgLine); end < bgWidth {
			result.WriteString(truncateFromVisualWidth(bgLine, end))
		}
	}
	return result.String()
}

// ShowDeleteConfirmation asks before a clip is deleted.
func ShowDeleteConfirmation(clip *store.Clip) ShowModalMsg {
	return ShowModalMsg{
		Title: "Delete clip?",
		Content: fmt.Sprintf("#%d %s\n\nThe clip and its attachments are removed for good.",
			clip.ID, singleLine(capture.ClipLabel(clip, 40))),
		Options: "[Y] Yes, delete    [N] No, cancel",
	}
}

// ShowClearConfirmation asks before the whole history is cleared.
func ShowClearConfirmation(loaded int, hasMore bool) ShowModalMsg {
	count := fmt.Sprintf("%d", loaded)
	if hasMore {
		count += "+"
	}
	return ShowModalMsg{
		Title:   "Clear history?",
		Content: fmt.Sprintf("All %s clips are deleted, pinned and favorite ones included.", count),
		Options: "[Y] Yes, clear    [N] No, cancel",
	}
}

// ShowError reports a failure until the next key press.
func ShowError(title string, err error) ShowModalMsg {
	return ShowModalMsg{
		Title:   title,
		Content: err.Error(),
		Options: "Press any key to continue",
	}
}

// truncateToVisualWidth keeps the first targetWidth columns of a styled
// string. Escape sequences are copied through without counting.
func truncateToVisualWidth(s string, targetWidth int) string {
	if targetWidth <= 0 {
		return ""
	}

	var result strings.Builder
	width := 0
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		}
		if inEscape {
			result.WriteRune(r)
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		w := runewidth.RuneWidth(r)
		if width+w > targetWidth {
			break
		}
		result.WriteRune(r)
		width += w
	}
	return result.String()
}

// truncateFromVisualWidth returns the part of a styled string from column
// startWidth on. Escape sequences seen before that column are kept so the
// remainder is styled as before.
func truncateFromVisualWidth(s string, startWidth int) string {
	if startWidth <= 0 {
		return s
	}

	runes := []rune(s)
	var pending strings.Builder
	width := 0
	inEscape := false
	for i, r := range runes {
		switch {
		case r == '\x1b':
			inEscape = true
			pending.WriteRune(r)
		case inEscape:
			pending.WriteRune(r)
			if r == 'm' {
				inEscape = false
			}
		default:
			if width >= startWidth {
				return pending.String() + string(runes[i:])
			}
			width += runewidth.RuneWidth(r)
		}
	}
	return ""
}
