package signup

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/theme"
)

func (s *SignupScreen) View(width, height int) string {
	t := s.deps.T

	body := theme.Title.Render(t.T("signup.title")) + "\n"
	for _, in := range s.inputs {
		body += "\n" + in.View() + "\n"
	}
	body += "\n" + s.segment.View() + "\n\n" + s.role.View()

	if s.busy {
		body += "\n\n" + s.loading.View()
	} else if s.errMsg != "" {
		body += "\n\n" + theme.Incorrect.Render(s.errMsg)
	}

	cardWidth := 52
	if width-4 < cardWidth {
		cardWidth = width - 4
	}
	card := theme.Card.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
