package learn

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/abhisek/feelio/internal/emotion"
	"github.com/abhisek/feelio/internal/learn"
	"github.com/abhisek/feelio/internal/ui/components"
	"github.com/abhisek/feelio/internal/ui/theme"
)

// markdown renders feedback text, which the backend and the LLM both write
// as light markdown. Renderers are cached per wrap width.
type markdown struct {
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdown() *markdown {
	return &markdown{}
}

func (m *markdown) render(text string, width int) string {
	if width < 20 {
		width = 20
	}
	if m.renderer == nil || m.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return lipgloss.Wrap(text, width, " ")
		}
		m.renderer, m.width = r, width
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return lipgloss.Wrap(text, width, " ")
	}
	return strings.Trim(out, "\n")
}

func (s *LearnScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	v := s.ctrl.View()

	var body string
	switch v.Phase {
	case learn.PhaseLoading:
		body = s.renderLoading(v)
	case learn.PhaseExhausted:
		body = s.renderExhausted()
	default:
		body = s.renderStory(v, cw)
	}

	if s.showGuide {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", s.renderGuide(cw))
	}
	if v.Celebration != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, s.renderToast(v), "", body)
	}
	return components.Frame(body, width, height)
}

func (s *LearnScreen) renderLoading(v learn.View) string {
	if v.Err != nil {
		return theme.Incorrect.Render(s.errorText(v.Err))
	}
	return s.loading.View()
}

func (s *LearnScreen) renderExhausted() string {
	t := s.deps.T
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(t.T("learn.exhausted")),
		"",
		theme.Hint.Render(t.T("learn.exhausted_detail")),
	)
}

func (s *LearnScreen) renderStory(v learn.View, cw int) string {
	t := s.deps.T
	var b strings.Builder

	info := theme.Subtitle.Render(t.T("learn.story"))
	if v.Candidates > 0 {
		info += "  " + theme.Hint.Render(t.T("learn.remaining", v.Candidates))
	}
	b.WriteString(info)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(cw).Render(v.Narrative.Text))
	b.WriteString("\n\n")

	switch v.Phase {
	case learn.PhasePresenting, learn.PhaseAnswering:
		b.WriteString(s.renderInput())
	case learn.PhaseSubmitting:
		b.WriteString(s.loading.View())
	case learn.PhaseReviewing:
		b.WriteString(s.renderResult(v, cw))
	case learn.PhaseAwaitingFollowup:
		b.WriteString(s.renderResult(v, cw))
		b.WriteString("\n\n")
		b.WriteString(theme.Subtitle.Render(t.T("learn.followup_question")))
		b.WriteString("\n")
		b.WriteString(s.renderInput())
	case learn.PhaseFollowupReviewed:
		b.WriteString(s.renderResult(v, cw))
		b.WriteString("\n\n")
		b.WriteString(s.renderFollowup(v, cw))
	}

	if v.Err != nil {
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(s.errorText(v.Err)))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(s.errMsg))
	}
	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Correct.Render(s.notice))
	}
	return b.String()
}

func (s *LearnScreen) renderInput() string {
	view := s.input.View()
	if s.recording {
		view += "\n" + lipgloss.NewStyle().Foreground(theme.Accent).Render("● "+s.deps.T.T("learn.listening"))
	}
	return view
}

func (s *LearnScreen) renderResult(v learn.View, cw int) string {
	t := s.deps.T
	r := v.Result
	if r == nil {
		return ""
	}
	var lines []string
	lines = append(lines, theme.Hint.Render(t.T("learn.your_answer"))+" "+r.Answer)

	if r.Correct {
		lines = append(lines, theme.Correct.Render(t.T("learn.correct", r.Score)))
	} else {
		lines = append(lines, theme.Incorrect.Render(t.T("learn.incorrect")))
	}
	lines = append(lines, t.T("learn.expected", tagList(r.Expected, "")))
	lines = append(lines, t.T("learn.predicted", tagList(r.Predicted, t.T("learn.none_detected"))))

	if r.Feedback != "" {
		lines = append(lines, "", theme.Subtitle.Render(t.T("learn.followup_title")), s.md.render(r.Feedback, cw))
	}
	return strings.Join(lines, "\n")
}

func (s *LearnScreen) renderFollowup(v learn.View, cw int) string {
	t := s.deps.T
	f := v.Followup
	if f == nil {
		return ""
	}
	lines := []string{
		theme.Hint.Render(t.T("learn.your_answer")) + " " + f.Answer,
		"",
		theme.Subtitle.Render(t.T("learn.followup_title")),
		s.md.render(f.Feedback, cw),
	}
	if v.Flagged {
		lines = append(lines, "", theme.Hint.Render("⚑ "+t.T("learn.flagged_state")))
	}
	return strings.Join(lines, "\n")
}

// tagList colors each tag with its emotion color.
func tagList(tags []emotion.Tag, empty string) string {
	if len(tags) == 0 {
		return empty
	}
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = lipgloss.NewStyle().Foreground(theme.EmotionColor(tag.String())).Bold(true).Render(tag.DisplayName())
	}
	return strings.Join(parts, ", ")
}

func (s *LearnScreen) renderGuide(cw int) string {
	t := s.deps.T
	lines := []string{theme.Subtitle.Render(t.T("learn.guide_title"))}
	for _, tag := range emotion.All() {
		dot := lipgloss.NewStyle().Foreground(theme.EmotionColor(tag.String())).Render("●")
		lines = append(lines, dot+" "+t.T("guide."+tag.String()))
	}
	return components.Panel(strings.Join(lines, "\n"), cw)
}

func (s *LearnScreen) renderToast(v learn.View) string {
	t := s.deps.T
	names := v.Celebration.Names()
	text := "🏅 " + t.T("learn.celebration", len(names)) + "\n" + strings.Join(names, ", ") +
		"\n" + theme.Hint.Render(t.T("learn.dismiss"))
	return theme.Toast.Render(text)
}
