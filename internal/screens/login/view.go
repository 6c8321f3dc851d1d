package login

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/theme"
)

func (s *LoginScreen) View(width, height int) string {
	t := s.deps.T

	body := theme.Title.Render(t.T("login.title")) + "\n\n" + s.form.View()

	switch {
	case s.busy:
		body += "\n\n" + s.loading.View()
	case s.errMsg != "":
		body += "\n\n" + theme.Incorrect.Render(s.errMsg)
	case s.notice != "":
		body += "\n\n" + theme.Correct.Render(s.notice)
	}
	body += "\n\n" + theme.Hint.Render(t.T("login.to_signup"))

	cardWidth := 48
	if width-4 < cardWidth {
		cardWidth = width - 4
	}
	card := theme.Card.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
