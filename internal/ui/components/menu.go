package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/theme"
)

// MenuItem is one row of a Menu. Disabled rows are drawn dimmed and the
// cursor skips them.
type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool

	// Tag is shown dimmed after the label.
	Tag string
}

// Menu is a vertical list driven by ↑/↓ (or k/j), home/end and enter.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu puts the cursor on the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.step(1)
	m.Selected = max(m.Selected, 0)
	return m
}

// step moves the cursor to the next enabled item in direction dir and
// stays put when there is none.
func (m *Menu) step(dir int) {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.step(-1)
	case "down", "j":
		m.step(1)
	case "home":
		m.Selected = -1
		m.step(1)
	case "end":
		m.Selected = len(m.Items)
		m.step(-1)
	case "enter":
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			break
		}
		if it := m.Items[m.Selected]; it.Action != nil && !it.Disabled {
			return m, it.Action()
		}
	}
	m.Selected = min(max(m.Selected, 0), max(len(m.Items)-1, 0))
	return m, nil
}

// SetItems swaps the items, keeping the cursor in range.
func (m *Menu) SetItems(items []MenuItem) {
	m.Items = items
	m.Selected = min(max(m.Selected, 0), max(len(items)-1, 0))
}

var (
	menuCursor   = theme.Selected
	menuDisabled = lipgloss.NewStyle().Foreground(theme.TextDim)
	menuPlain    = lipgloss.NewStyle().Foreground(theme.Text)
)

func (m Menu) View() string {
	var b strings.Builder
	for i, it := range m.Items {
		switch {
		case i == m.Selected:
			b.WriteString(menuCursor.Render("  ▸ " + it.Label))
		case it.Disabled:
			b.WriteString(menuDisabled.Render("    " + it.Label))
		default:
			b.WriteString(menuPlain.Render("    " + it.Label))
		}
		if it.Tag != "" {
			b.WriteString("  " + theme.Hint.Render(it.Tag))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
