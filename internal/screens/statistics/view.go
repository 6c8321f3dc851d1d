package statistics

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/emotion"
	"github.com/abhisek/feelio/internal/moderation"
	"github.com/abhisek/feelio/internal/ui/components"
	"github.com/abhisek/feelio/internal/ui/theme"
)

// tileWindow is how many tiles are listed at once.
const tileWindow = 6

func (s *StatisticsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if s.overview == nil {
		if s.errMsg != "" {
			return components.Frame(theme.Incorrect.Render(s.errMsg), width, height)
		}
		return components.Frame(s.loading.View(), width, height)
	}

	var body string
	switch {
	case s.pinOpen:
		body = s.renderPin(cw)
	case s.detail:
		body = s.renderDetail(cw)
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			s.renderTotals(cw),
			"",
			s.renderRecent(cw),
			"",
			s.renderTiles(cw),
		)
	}
	if s.errMsg != "" {
		body += "\n\n" + theme.Incorrect.Render(s.errMsg)
	}
	if s.notice != "" && !s.pinOpen {
		body += "\n\n" + theme.Correct.Render(s.notice)
	}
	return components.Frame(body, width, height)
}

func (s *StatisticsScreen) renderTotals(cw int) string {
	t := s.deps.T
	st := s.overview.Stats
	if st == nil {
		st = &api.Stats{}
	}
	lines := []string{
		theme.Title.Render(t.T("stats.title")),
		t.T("stats.attempted", st.TotalAttempted) + "   " + t.T("stats.correct", st.TotalCorrect),
		t.T("stats.score", st.TotalScore),
	}
	if len(st.PerEmotion) > 0 {
		lines = append(lines, "", theme.Subtitle.Render(t.T("stats.accuracy")))
		for _, e := range st.PerEmotion {
			pct := 0.0
			if e.Total > 0 {
				pct = float64(e.Correct) / float64(e.Total)
			}
			tag := emotion.Normalize(e.Emotion)
			label := fmt.Sprintf("%-8s", tag.DisplayName())
			bar := components.NewProgressBar(label, pct, true, cw-4).Tinted(theme.EmotionColor(string(tag)))
			lines = append(lines, bar.View())
		}
	}
	return strings.Join(lines, "\n")
}

func (s *StatisticsScreen) renderRecent(cw int) string {
	t := s.deps.T
	lines := []string{theme.Subtitle.Render(t.T("stats.recent"))}
	if len(s.overview.Recent) == 0 {
		lines = append(lines, theme.Hint.Render(t.T("stats.empty")))
	}
	for _, r := range s.overview.Recent {
		lines = append(lines, mark(r)+" "+truncate(title(r)+": "+r.UserAnswer, cw-4))
	}
	return strings.Join(lines, "\n")
}

func (s *StatisticsScreen) renderTiles(cw int) string {
	t := s.deps.T
	tiles := s.overview.Tiles
	lines := []string{theme.Subtitle.Render(fmt.Sprintf("%s (%d)", t.T("stats.tiles"), len(tiles)))}
	if len(tiles) == 0 {
		return strings.Join(append(lines, theme.Hint.Render(t.T("stats.empty"))), "\n")
	}

	start := 0
	if s.cursor >= tileWindow {
		start = s.cursor - tileWindow + 1
	}
	end := min(start+tileWindow, len(tiles))
	for i := start; i < end; i++ {
		r := tiles[i]
		line := mark(r) + " " + truncate(title(r), cw-24) + s.badges(r)
		if i == s.cursor {
			line = theme.Selected.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (s *StatisticsScreen) badges(r api.Response) string {
	t := s.deps.T
	var out string
	if r.Flagged {
		out += "  " + lipgloss.NewStyle().Foreground(theme.Accent).Render("⚑ "+t.T("stats.state_flagged"))
	}
	if r.Repeatable {
		out += "  " + lipgloss.NewStyle().Foreground(theme.Secondary).Render("↻ "+t.T("stats.state_repeatable"))
	}
	return out
}

func (s *StatisticsScreen) renderDetail(cw int) string {
	t := s.deps.T
	r, ok := s.selected()
	if !ok {
		return ""
	}
	text := r.NarrativeText
	if text == "" {
		text = r.Narrative.Content
	}
	lines := []string{
		theme.Title.Render(mark(r) + " " + title(r)) + s.badges(r),
		"",
		lipgloss.NewStyle().Width(cw).Render(text),
		"",
		t.T("stats.answer", r.UserAnswer),
		t.T("learn.expected", display(r.ExpectedEmotions, "-")),
		t.T("learn.predicted", display(r.PredictedEmotion, t.T("learn.none_detected"))),
	}
	if r.Feedback != "" {
		lines = append(lines, lipgloss.NewStyle().Width(cw).Render(t.T("stats.feedback", r.Feedback)))
	}
	lines = append(lines, "", s.actions.View())
	return strings.Join(lines, "\n")
}

func (s *StatisticsScreen) renderPin(cw int) string {
	t := s.deps.T
	body := s.pin.View()
	if s.pinErr != "" {
		body += "\n\n" + theme.Incorrect.Render(s.pinErr)
	}
	if a, ok := s.gate.Pending(); ok {
		label := t.T("stats.mark_incorrect")
		if a.Kind == moderation.MarkCorrect {
			label = t.T("stats.mark_correct")
		}
		body = theme.Hint.Render(label) + "\n\n" + body
	}
	return components.Panel(body, cw)
}

func mark(r api.Response) string {
	if r.IsCorrect {
		return theme.Correct.Render("✓")
	}
	return theme.Incorrect.Render("✗")
}

func title(r api.Response) string {
	if r.Narrative.Title != "" {
		return r.Narrative.Title
	}
	return string(r.NarrativeID)
}

func display(labels []string, empty string) string {
	if len(labels) == 0 {
		return empty
	}
	return emotion.DisplayNames(emotion.NormalizeAll(labels), ", ")
}

func truncate(s string, n int) string {
	if n < 4 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n-1 {
		r = r[:n-1]
	}
	return string(r) + "…"
}
