package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/clipvault/internal/action"
	"github.com/yiblet/clipvault/internal/content"
)

// ActionMenuModel is the list of actions resolved for the selected clip, in
// catalog order: smart, then standard, then meta.
type ActionMenuModel struct {
	Active  bool
	Items   []action.SmartAction
	Cursor  int
	Content content.Content
}

// Open fills the menu from groups. It stays closed when nothing applies.
func (m *ActionMenuModel) Open(groups action.Groups, c content.Content) {
	m.Items = m.Items[:0]
	m.Items = append(m.Items, groups.Smart...)
	m.Items = append(m.Items, groups.Standard...)
	m.Items = append(m.Items, groups.Meta...)
	m.Cursor = 0
	m.Content = c
	m.Active = len(m.Items) > 0
}

func (m *ActionMenuModel) Close() {
	m.Active = false
	m.Items = nil
}

// Move shifts the cursor by delta, wrapping at both ends.
func (m *ActionMenuModel) Move(delta int) {
	if len(m.Items) == 0 {
		return
	}
	m.Cursor = ((m.Cursor+delta)%len(m.Items) + len(m.Items)) % len(m.Items)
}

// Selected returns the action under the cursor.
func (m ActionMenuModel) Selected() (action.SmartAction, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Items) {
		return action.SmartAction{}, false
	}
	return m.Items[m.Cursor], true
}

// At returns the action shown with the 1-based number n.
func (m ActionMenuModel) At(n int) (action.SmartAction, bool) {
	if n < 1 || n > len(m.Items) {
		return action.SmartAction{}, false
	}
	return m.Items[n-1], true
}

// Modal renders the menu as modal content, one numbered line per action
// with a header before each category.
func (m ActionMenuModel) Modal() ModalModel {
	var b strings.Builder
	var category action.Category
	selected := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230"))
	for i, a := range m.Items {
		if a.Category != category {
			if i > 0 {
				b.WriteString("\n")
			}
			category = a.Category
			b.WriteString(dim(string(category)) + "\n")
		}
		label := a.Label
		if a.Active(m.Content) {
			label += " ✓"
		}
		line := fmt.Sprintf("%2d. %s", i+1, label)
		if i == m.Cursor {
			line = selected.Render(line)
		}
		b.WriteString(line + "\n")
	}

	modal := NewModalModel()
	modal.Active = true
	modal.Title = "Actions"
	modal.Content = strings.TrimSuffix(b.String(), "\n")
	modal.Options = "[Enter] run    [1-9] run number    [Esc] close"
	modal.Width = 44
	modal.Height = len(m.Items) + 12
	return modal
}
