package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/theme"
)

// Choice is a single-line picker cycled with left and right.
type Choice struct {
	Label    string
	Options  []string
	Selected int
	Focused  bool
}

func NewChoice(label string, options ...string) Choice {
	return Choice{Label: label, Options: options}
}

// Update handles left/right (and h/l) when focused.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !c.Focused || len(c.Options) == 0 {
		return c, nil
	}
	switch kmsg.String() {
	case "left", "h":
		c.Selected = (c.Selected - 1 + len(c.Options)) % len(c.Options)
	case "right", "l", "space":
		c.Selected = (c.Selected + 1) % len(c.Options)
	}
	return c, nil
}

func (c Choice) View() string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	if c.Focused {
		labelStyle = labelStyle.Foreground(theme.Primary).Bold(true)
	}
	parts := make([]string, len(c.Options))
	for i, o := range c.Options {
		if i == c.Selected {
			parts[i] = theme.ButtonActive.Render(o)
		} else {
			parts[i] = lipgloss.NewStyle().Foreground(theme.TextDim).Padding(0, 2).Render(o)
		}
	}
	return labelStyle.Render(c.Label) + "\n" + strings.Join(parts, " ")
}
