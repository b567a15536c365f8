package tui

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/clipvault/internal/action"
	"github.com/yiblet/clipvault/internal/content"
	"github.com/yiblet/clipvault/internal/store"
)

// RightPaneMsg represents messages that the preview pane handles
type RightPaneMsg interface {
	isRightPaneMsg()
}

type ScrollToTopMsg struct{}

func (ScrollToTopMsg) isRightPaneMsg() {}

type ScrollToBottomMsg struct {
	MaxScroll int
}

func (ScrollToBottomMsg) isRightPaneMsg() {}

type PageUpMsg struct{}

func (PageUpMsg) isRightPaneMsg() {}

type PageDownMsg struct {
	MaxScroll int
}

func (PageDownMsg) isRightPaneMsg() {}

type JumpMsg struct {
	Direction string // "j" for down, "k" for up
	Lines     int
	MaxScroll int
}

func (JumpMsg) isRightPaneMsg() {}

type ResizeRightPaneMsg struct {
	Width  int
	Height int
}

func (ResizeRightPaneMsg) isRightPaneMsg() {}

// ResetScrollMsg is sent when the previewed clip changes.
type ResetScrollMsg struct{}

func (ResetScrollMsg) isRightPaneMsg() {}

// RightPaneModel holds the preview's scroll position.
type RightPaneModel struct {
	Width   int
	Height  int
	ViewPos int
}

func NewRightPaneModel(width, height int) RightPaneModel {
	return RightPaneModel{Width: width, Height: height}
}

func (r *RightPaneModel) Update(msg RightPaneMsg) {
	switch m := msg.(type) {
	case ScrollToTopMsg:
		r.ViewPos = 0
	case ScrollToBottomMsg:
		r.ViewPos = m.MaxScroll
	case PageUpMsg:
		r.ViewPos = max(r.ViewPos-r.bodyHeight()/2, 0)
	case PageDownMsg:
		r.ViewPos = min(r.ViewPos+r.bodyHeight()/2, m.MaxScroll)
	case JumpMsg:
		switch m.Direction {
		case "j":
			r.ViewPos = min(r.ViewPos+m.Lines, m.MaxScroll)
		case "k":
			r.ViewPos = max(r.ViewPos-m.Lines, 0)
		}
	case ResizeRightPaneMsg:
		r.Width = m.Width
		r.Height = m.Height
	case ResetScrollMsg:
		r.ViewPos = 0
	}
}

// bodyHeight is the number of preview lines shown between the title and the
// action bar.
func (r RightPaneModel) bodyHeight() int {
	return max(r.Height-8, 1)
}

// textWidth is the wrap width inside the border and padding.
func (r RightPaneModel) textWidth() int {
	return max(r.Width-6, 1)
}

// Preview is the rendered form of one clip. Lines are re-wrapped only when
// the width changes.
type Preview struct {
	Content     content.Content
	Details     []string
	Lines       []string
	CachedWidth int

	clipID  int64
	version time.Time
	flags   [2]bool
}

// NewPreview builds the preview for a clip.
func NewPreview(clip *store.Clip) *Preview {
	c := content.ClipToContent(clip)
	p := &Preview{Content: c, Details: details(c)}
	if clip != nil {
		p.clipID = clip.ID
		p.version = clip.UpdatedAt
		p.flags = [2]bool{clip.IsFavorite, clip.IsPinned}
	}
	return p
}

// Stale reports whether the preview no longer reflects clip.
func (p *Preview) Stale(clip *store.Clip) bool {
	if p == nil || clip == nil {
		return p != nil || clip != nil
	}
	return p.clipID != clip.ID || !p.version.Equal(clip.UpdatedAt) ||
		p.flags != [2]bool{clip.IsFavorite, clip.IsPinned}
}

// UpdateWrappedLines wraps the body for width, reusing the cached lines when
// the width is unchanged.
func (p *Preview) UpdateWrappedLines(width int) {
	if p.Lines != nil && p.CachedWidth == width {
		return
	}
	p.Lines = WrapText(body(p.Content), width)
	p.CachedWidth = width
}

// Matches returns the line numbers containing pattern, matched without
// regard to case.
func (p *Preview) Matches(pattern string) []int {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil
	}
	var lines []int
	for i, line := range p.Lines {
		if re.MatchString(line) {
			lines = append(lines, i)
		}
	}
	return lines
}

func body(c content.Content) string {
	if c.Clip == nil {
		return c.Text
	}
	switch c.Clip.ContentType {
	case store.ContentImage:
		if strings.TrimSpace(c.Text) == "" {
			return "[image] " + c.Clip.ImagePath
		}
	case store.ContentFiles:
		if strings.TrimSpace(c.Text) == "" {
			return strings.Join(c.Clip.FilePaths, "\n")
		}
	}
	return c.Text
}

// details summarizes the typed metadata in a few short lines.
func details(c content.Content) []string {
	var out []string
	switch m := c.Metadata.(type) {
	case content.URLMetadata:
		out = append(out, "Domain: "+m.Domain)
	case content.EmailMetadata:
		out = append(out, "Domain: "+m.Domain)
	case content.ColorMetadata:
		out = append(out, fmt.Sprintf("Color: %s (%s)", m.Hex, m.Format))
	case content.CodeMetadata:
		if m.Language != "" {
			out = append(out, fmt.Sprintf("Language: %s, %d lines", m.Language, m.LineCount))
		}
	case content.CSVMetadata:
		out = append(out, fmt.Sprintf("Delimiter: %q", m.Delimiter))
	case content.DateMetadata:
		if m.ISO != "" {
			out = append(out, "Date: "+m.ISO)
		}
	case content.FilesMetadata:
		out = append(out, fmt.Sprintf("Files: %d", m.Count))
	case content.OfficeMetadata:
		if m.SourceApp != "" {
			out = append(out, "Source: "+m.SourceApp)
		}
	case content.PhoneMetadata:
		out = append(out, "Phone: "+m.Number)
	case content.MathMetadata:
		if m.HasResult {
			out = append(out, "Result: "+strconv.FormatFloat(m.Result, 'g', -1, 64))
		}
	case content.SecretMetadata:
		out = append(out, "Looks like a secret ("+m.Kind+")")
	}
	if c.Clip != nil {
		meta := fmt.Sprintf("#%d · %s · copied %d×", c.Clip.ID, c.Type, c.Clip.AccessCount)
		if c.Clip.AppName != "" {
			meta += " · " + c.Clip.AppName
		}
		out = append([]string{meta}, out...)
	}
	return out
}

// RightPaneView renders the preview of the selected clip, with its smart
// actions along the bottom.
func RightPaneView(model RightPaneModel, preview *Preview, groups action.Groups, find FindModel, focused bool) string {
	borderColor := "62"
	if focused {
		borderColor = "205"
		if find.IsActive() {
			borderColor = "220"
		}
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(model.Width - 2).
		Height(model.Height - 4)

	var b strings.Builder
	if preview == nil {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Preview") + "\n\n")
		b.WriteString("No clip selected")
		return style.Render(b.String())
	}

	preview.UpdateWrappedLines(model.textWidth())
	height := previewHeight(model, preview)

	title := "Preview"
	if focused {
		title = "● " + title
	}
	if maxScroll := getMaxScroll(model, preview); maxScroll > 0 {
		bottom := min(model.ViewPos+height, len(preview.Lines))
		title += fmt.Sprintf(" (%d-%d/%d)", model.ViewPos+1, bottom, len(preview.Lines))
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n")
	for _, d := range preview.Details {
		b.WriteString(dim(truncate(d, model.textWidth())) + "\n")
	}
	b.WriteString("\n")

	matchLines := make(map[int]bool)
	for _, line := range find.GetMatches() {
		matchLines[line] = true
	}
	end := min(model.ViewPos+height, len(preview.Lines))
	for i := model.ViewPos; i < end; i++ {
		line := preview.Lines[i]
		if matchLines[i] && find.GetPattern() != "" {
			line = highlightMatches(line, find.GetPattern(), i == find.GetCurrentMatchLine())
		}
		b.WriteString(line + "\n")
	}

	if bar := actionBar(groups, preview.Content, model.textWidth()); bar != "" {
		for i := end - model.ViewPos; i < height; i++ {
			b.WriteString("\n")
		}
		b.WriteString("\n" + bar)
	}
	return style.Render(strings.TrimSuffix(b.String(), "\n"))
}

// actionBar lists the smart actions, then the standard ones, highlighting
// active toggles.
func actionBar(groups action.Groups, c content.Content, width int) string {
	var labels []string
	for _, list := range [][]action.SmartAction{groups.Smart, groups.Standard, groups.Meta} {
		for _, a := range list {
			label := a.Label
			if a.Active(c) {
				label = "✓ " + label
			}
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return ""
	}
	return dim(truncate("a: "+strings.Join(labels, " · "), width))
}

// highlightMatches highlights every case-insensitive match of pattern.
func highlightMatches(line, pattern string, current bool) string {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return line
	}
	matches := re.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return line
	}

	bg := "11"
	if current {
		bg = "220"
	}
	hl := lipgloss.NewStyle().Background(lipgloss.Color(bg)).Foreground(lipgloss.Color("0"))

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(line[last:m[0]])
		b.WriteString(hl.Render(line[m[0]:m[1]]))
		last = m[1]
	}
	b.WriteString(line[last:])
	return b.String()
}

func previewHeight(model RightPaneModel, preview *Preview) int {
	return max(model.bodyHeight()-len(preview.Details), 1)
}

// getMaxScroll returns the maximum scroll position for preview.
func getMaxScroll(model RightPaneModel, preview *Preview) int {
	if preview == nil {
		return 0
	}
	preview.UpdateWrappedLines(model.textWidth())
	height := previewHeight(model, preview)
	return max(len(preview.Lines)-height, 0)
}

// scrollToMatch centers matchLine in the preview.
func scrollToMatch(model RightPaneModel, preview *Preview, matchLine int) int {
	height := previewHeight(model, preview)
	return min(max(0, matchLine-height/2), getMaxScroll(model, preview))
}
