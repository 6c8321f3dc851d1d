// Package achievements lists the badges a learner has earned and the ones
// still ahead.
package achievements

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/auth"
	"github.com/abhisek/feelio/internal/screen"
	"github.com/abhisek/feelio/internal/screens/nav"
	"github.com/abhisek/feelio/internal/ui/components"
	"github.com/abhisek/feelio/internal/ui/layout"
	"github.com/abhisek/feelio/internal/ui/theme"
)

type badgesLoadedMsg struct {
	Earned   []api.Award
	Upcoming []api.Badge
	Err      error
}

const (
	tabEarned = iota
	tabUpcoming
	tabCount
)

// AchievementsScreen displays earned and upcoming badges in two tabs.
type AchievementsScreen struct {
	deps    nav.Deps
	learner auth.Identity

	earned       []api.Award
	upcoming     []api.Badge
	tab          int
	scrollOffset int
	loaded       bool
	errMsg       string
}

var (
	_ screen.Screen          = (*AchievementsScreen)(nil)
	_ screen.KeyHintProvider = (*AchievementsScreen)(nil)
)

// New creates the achievements screen for learner.
func New(deps nav.Deps, learner auth.Identity) *AchievementsScreen {
	return &AchievementsScreen{deps: deps, learner: learner}
}

func (s *AchievementsScreen) Init() tea.Cmd {
	client, id := s.deps.API, s.learner.ID
	return func() tea.Msg {
		var msg badgesLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			a, err := client.Achievements(ctx, id)
			msg.Earned = a
			return err
		})
		g.Go(func() error {
			b, err := client.UpcomingBadges(ctx, id)
			msg.Upcoming = b
			return err
		})
		msg.Err = g.Wait()
		return msg
	}
}

func (s *AchievementsScreen) Title() string {
	return s.deps.T.T("ach.title")
}

func (s *AchievementsScreen) KeyHints() []layout.KeyHint {
	t := s.deps.T
	return []layout.KeyHint{
		{Key: "Tab", Description: t.T("hint.next_field")},
		{Key: "↑↓", Description: t.T("hint.navigate")},
		{Key: "Esc", Description: t.T("hint.back")},
	}
}

func (s *AchievementsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case badgesLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = nav.ErrorText(s.deps.T, msg.Err)
			return s, nil
		}
		s.earned, s.upcoming = msg.Earned, msg.Upcoming
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab", "right", "l":
			s.tab = (s.tab + 1) % tabCount
			s.scrollOffset = 0
		case "shift+tab", "left", "h":
			s.tab = (s.tab - 1 + tabCount) % tabCount
			s.scrollOffset = 0
		case "up", "k":
			if s.scrollOffset > 0 {
				s.scrollOffset--
			}
		case "down", "j":
			if s.scrollOffset < s.count()-1 {
				s.scrollOffset++
			}
		}
	}
	return s, nil
}

func (s *AchievementsScreen) count() int {
	if s.tab == tabEarned {
		return len(s.earned)
	}
	return len(s.upcoming)
}

func (s *AchievementsScreen) View(width, height int) string {
	t := s.deps.T
	cw := components.ContentWidth(width)
	if s.errMsg != "" {
		return components.Frame(theme.Incorrect.Render(s.errMsg), width, height)
	}
	if !s.loaded {
		return components.Frame(theme.Hint.Render(t.T("app.loading")), width, height)
	}

	var b strings.Builder
	earnedPoints := 0
	for _, a := range s.earned {
		earnedPoints += a.Points
	}
	b.WriteString(theme.Title.Render(fmt.Sprintf("🏅 %d  ·  %s", len(s.earned), t.T("ach.points", earnedPoints))))
	b.WriteString("\n\n")

	tabs := []string{
		fmt.Sprintf("%s (%d)", t.T("ach.earned"), len(s.earned)),
		fmt.Sprintf("%s (%d)", t.T("ach.upcoming"), len(s.upcoming)),
	}
	for i, label := range tabs {
		if i == s.tab {
			tabs[i] = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(label)
		} else {
			tabs[i] = lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
		}
	}
	b.WriteString(strings.Join(tabs, "     "))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)))
	b.WriteString("\n\n")

	lines := s.lines(cw)
	if len(lines) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(t.T("ach.none")))
		return components.Frame(b.String(), width, height)
	}

	maxVisible := max(height-14, 3)
	start := s.scrollOffset
	end := min(start+maxVisible, len(lines))
	b.WriteString(strings.Join(lines[start:end], "\n"))
	if end < len(lines) {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(fmt.Sprintf("... +%d", len(lines)-end)))
	}
	return components.Frame(b.String(), width, height)
}

func (s *AchievementsScreen) lines(cw int) []string {
	t := s.deps.T
	var out []string
	if s.tab == tabEarned {
		for _, a := range s.earned {
			date := ""
			if !a.DateEarned.IsZero() {
				date = a.DateEarned.Format("02 Jan 2006")
			}
			name := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("★ " + a.Badge.Name)
			out = append(out, fmt.Sprintf("%s  %s  %s", name, theme.Hint.Render(t.T("ach.points", a.Points)), theme.Hint.Render(date)))
		}
		return out
	}
	for _, b := range s.upcoming {
		name := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("☆ " + b.Name)
		desc := lipgloss.NewStyle().Foreground(theme.TextDim).Width(cw - 4).Render(b.Description)
		out = append(out, fmt.Sprintf("%s  %s\n    %s", name, theme.Hint.Render(t.T("ach.points", b.Points)), desc))
	}
	return out
}
