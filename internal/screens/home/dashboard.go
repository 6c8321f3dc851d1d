package home

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/components"
	"github.com/abhisek/feelio/internal/ui/layout"
	"github.com/abhisek/feelio/internal/ui/theme"
)

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header, footer and frame gaps.
	termHeight := height + layout.HeaderHeight + layout.FooterHeight + 2
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, h.renderGreeting(cw))
	if !compact {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Render(RenderMascot(h.mascot())))
	}
	sections = append(sections, h.renderStatsBar(cw, compact))
	if h.errMsg != "" {
		sections = append(sections, theme.Incorrect.Width(cw).Align(lipgloss.Center).Render(h.errMsg))
	}
	sections = append(sections, components.ButtonMenu(h.menu, cw, compact))

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) mascot() MascotVariant {
	if h.summary == nil {
		return MascotIdle
	}
	return variantFor(h.summary.TotalScore, h.summary.TotalResponses)
}

func (h *HomeScreen) renderGreeting(cw int) string {
	t := h.deps.T
	greeting := theme.Title.Render(t.T("home.greeting", h.learner.Name))
	sub := theme.Subtitle.Render(t.T("home.segment", h.learner.Segment.Label()))
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(greeting + "\n" + sub)
}

// renderStatsBar renders the score line in a bordered box matching content width.
func (h *HomeScreen) renderStatsBar(cw int, compact bool) string {
	t := h.deps.T
	scoreStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	countStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	var stats string
	switch {
	case h.summary == nil:
		stats = theme.Hint.Render(t.T("app.loading"))
	case compact:
		stats = scoreStyle.Render(t.T("header.score", h.summary.TotalScore)) + "   " +
			countStyle.Render(t.T("home.responses", h.summary.TotalResponses))
	default:
		stats = scoreStyle.Render("★ "+t.T("home.score", h.summary.TotalScore)) + "\n" +
			countStyle.Render("✎ "+t.T("home.responses", h.summary.TotalResponses))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}
