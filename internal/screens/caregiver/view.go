package caregiver

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/components"
	"github.com/abhisek/feelio/internal/ui/theme"
)

func (s *CaregiverScreen) View(width, height int) string {
	t := s.deps.T
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, theme.Title.Render(t.T("caregiver.title")),
		theme.Subtitle.Render(s.caregiver.Name+" · "+s.caregiver.Email))

	if s.add != nil {
		sections = append(sections, s.renderForm(cw))
	} else {
		sections = append(sections, s.renderChildren(cw))
	}

	switch {
	case s.busy:
		sections = append(sections, s.loading.View())
	case s.errMsg != "":
		sections = append(sections, theme.Incorrect.Render(s.errMsg))
	case s.notice != "":
		sections = append(sections, theme.Correct.Render(s.notice))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, strings.Join(sections, "\n\n")))
}

func (s *CaregiverScreen) renderChildren(cw int) string {
	t := s.deps.T
	if !s.loaded {
		return s.loading.View()
	}
	body := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(t.T("caregiver.children")) + "\n\n"
	if len(s.children) == 0 {
		body += theme.Hint.Render(t.T("caregiver.empty")) + "\n\n"
	}
	body += s.menu.View()
	return lipgloss.NewStyle().
		Width(cw).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(1, 2).
		Render(body)
}

func (s *CaregiverScreen) renderForm(cw int) string {
	t := s.deps.T
	body := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(t.T("caregiver.add_title"))
	for _, in := range s.add.inputs {
		body += "\n\n" + in.View()
	}
	body += "\n\n" + s.add.segment.View()
	return theme.Card.Width(cw).Render(body)
}
