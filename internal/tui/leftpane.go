package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/clipvault/internal/capture"
	"github.com/yiblet/clipvault/internal/history"
	"github.com/yiblet/clipvault/internal/store"
)

// LeftPaneMsg represents messages that the clip list handles
type LeftPaneMsg interface {
	isLeftPaneMsg()
}

type NavigateUpMsg struct{}

func (NavigateUpMsg) isLeftPaneMsg() {}

type NavigateDownMsg struct {
	MaxIndex int
}

func (NavigateDownMsg) isLeftPaneMsg() {}

type GoToTopMsg struct{}

func (GoToTopMsg) isLeftPaneMsg() {}

type GoToBottomMsg struct {
	MaxIndex int
}

func (GoToBottomMsg) isLeftPaneMsg() {}

type JumpToIndexMsg struct {
	Index    int
	MaxIndex int
}

func (JumpToIndexMsg) isLeftPaneMsg() {}

// ClampMsg pulls the cursor back inside a list that shrank.
type ClampMsg struct {
	MaxIndex int
}

func (ClampMsg) isLeftPaneMsg() {}

type ResizeLeftPaneMsg struct {
	Width  int
	Height int
}

func (ResizeLeftPaneMsg) isLeftPaneMsg() {}

// LeftPaneModel holds the cursor over the cached clip list. Top is the first
// visible row; it follows the cursor so the selection stays on screen.
type LeftPaneModel struct {
	Cursor int
	Top    int
	Width  int
	Height int
}

func NewLeftPaneModel(width, height int) LeftPaneModel {
	return LeftPaneModel{Width: width, Height: height}
}

func (l *LeftPaneModel) Update(msg LeftPaneMsg) {
	switch m := msg.(type) {
	case NavigateUpMsg:
		if l.Cursor > 0 {
			l.Cursor--
		}
	case NavigateDownMsg:
		if l.Cursor < m.MaxIndex {
			l.Cursor++
		}
	case GoToTopMsg:
		l.Cursor = 0
	case GoToBottomMsg:
		l.Cursor = max(m.MaxIndex, 0)
	case JumpToIndexMsg:
		if m.Index >= 0 && m.Index <= m.MaxIndex {
			l.Cursor = m.Index
		}
	case ClampMsg:
		l.Cursor = max(min(l.Cursor, m.MaxIndex), 0)
	case ResizeLeftPaneMsg:
		l.Width = m.Width
		l.Height = m.Height
	}
	l.follow()
}

// visibleRows is the number of clip rows that fit between the title and the
// footer.
func (l *LeftPaneModel) visibleRows() int {
	return max(l.Height-8, 1)
}

func (l *LeftPaneModel) follow() {
	rows := l.visibleRows()
	if l.Cursor < l.Top {
		l.Top = l.Cursor
	}
	if l.Cursor >= l.Top+rows {
		l.Top = l.Cursor - rows + 1
	}
	l.Top = max(l.Top, 0)
}

// NearEnd reports whether the cursor is close enough to the last cached clip
// that the next page should be requested.
func (l LeftPaneModel) NearEnd(count int) bool {
	return count == 0 || l.Cursor >= count-1-loadAhead
}

// loadAhead is how many rows before the end of the cache a page is fetched.
const loadAhead = 5

// LeftPaneView renders the clip list.
func LeftPaneView(model LeftPaneModel, state history.State, focused bool) string {
	borderColor := "62"
	if focused {
		borderColor = "205"
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(model.Width).
		Height(model.Height - 4).
		Inline(false)

	var b strings.Builder
	title := "History"
	if state.Mode == history.Search {
		title = "Search: " + state.Query
	}
	if focused {
		title = "● " + title
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(truncate(title, model.Width-2)) + "\n\n")

	if len(state.Clips) == 0 {
		switch {
		case state.Loading:
			b.WriteString("Loading…")
		case state.Mode == history.Search:
			b.WriteString("No matches")
		default:
			b.WriteString("History is empty")
		}
		return style.Render(b.String())
	}

	rowWidth := model.Width - 2
	end := min(model.Top+model.visibleRows(), len(state.Clips))
	for i := model.Top; i < end; i++ {
		line := clipRow(state.Clips[i], rowWidth)
		if i == model.Cursor {
			line = lipgloss.NewStyle().
				Background(lipgloss.Color("62")).
				Foreground(lipgloss.Color("230")).
				Width(rowWidth).
				Render(line)
		}
		b.WriteString(line + "\n")
	}

	switch {
	case state.Loading:
		b.WriteString(dim("loading more…"))
	case state.HasMore:
		b.WriteString(dim(fmt.Sprintf("%d loaded, more below", len(state.Clips))))
	default:
		b.WriteString(dim(fmt.Sprintf("%d clips", len(state.Clips))))
	}
	return style.Render(b.String())
}

// clipRow is one list line: pin and favorite markers, then the label.
func clipRow(c *store.Clip, width int) string {
	marks := []byte("  ")
	if c.IsPinned {
		marks[0] = '^'
	}
	if c.IsFavorite {
		marks[1] = '*'
	}
	return truncate(string(marks)+" "+singleLine(capture.ClipLabel(c, width)), width)
}

func dim(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(s)
}
