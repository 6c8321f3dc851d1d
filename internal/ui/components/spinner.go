package components

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/theme"
)

// Loading is a spinner with a caption, shown while a backend call runs.
type Loading struct {
	spinner spinner.Model
	Caption string
}

func NewLoading(caption string) Loading {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
	)
	return Loading{spinner: s, Caption: caption}
}

// Tick starts the animation.
func (l Loading) Tick() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the animation on spinner ticks and ignores everything else.
func (l Loading) Update(msg tea.Msg) (Loading, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return l, nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

func (l Loading) View() string {
	return l.spinner.View() + " " + theme.Hint.Render(l.Caption)
}
