package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/theme"
)

// ButtonWidth is the fixed width of dashboard buttons.
const ButtonWidth = 26

// ContentWidth returns the uniform inner width used for dashboard sections.
// All boxes are rendered at this width so they visually align.
func ContentWidth(frameWidth int) int {
	// Leave room for frame border (2) + inner padding (4)
	w := frameWidth - 6
	if w > 64 {
		w = 64
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Frame wraps content in a double-border frame, centering it vertically and
// horizontally within the given dimensions.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Panel wraps content in a rounded-border card at the given content width.
func Panel(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 2).
		Render(content)
}

// BigButton renders a bordered dashboard button.
func BigButton(label string, selected, disabled bool) string {
	style := lipgloss.NewStyle().
		Width(ButtonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	switch {
	case disabled:
		return style.Foreground(theme.TextDim).BorderForeground(theme.Border).Render(label)
	case selected:
		return style.Bold(true).
			Foreground(theme.BgDark).
			Background(theme.Accent).
			BorderForeground(theme.Accent).
			Render("▸ " + label)
	}
	return style.Foreground(theme.Text).BorderForeground(theme.Border).Render(label)
}

// ButtonMenu renders m as a column of big buttons, or as plain lines when
// compact is set and bordered buttons would not fit.
func ButtonMenu(m Menu, cw int, compact bool) string {
	var rows []string
	for i, item := range m.Items {
		if compact {
			line := "   " + item.Label
			switch {
			case item.Disabled:
				line = lipgloss.NewStyle().Foreground(theme.TextDim).Render(line)
			case i == m.Selected:
				line = lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Accent).Bold(true).
					Render(" ▸ " + item.Label + " ")
			default:
				line = lipgloss.NewStyle().Foreground(theme.Text).Render(line)
			}
			rows = append(rows, line)
			continue
		}
		rows = append(rows, BigButton(item.Label, i == m.Selected, item.Disabled))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(rows, "\n"))
}
