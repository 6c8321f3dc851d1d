// Package playground is a small reward garden: every 50 points invites a
// cat, up to ten.
package playground

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/auth"
	"github.com/abhisek/feelio/internal/screen"
	"github.com/abhisek/feelio/internal/screens/nav"
	"github.com/abhisek/feelio/internal/ui/components"
	"github.com/abhisek/feelio/internal/ui/layout"
	"github.com/abhisek/feelio/internal/ui/theme"
)

const (
	// PointsPerCat is the score needed for each cat.
	PointsPerCat = 50
	// MaxCats is the playground's capacity.
	MaxCats = 10
)

// Cats returns how many cats a score has earned.
func Cats(score int) int {
	if score < 0 {
		return 0
	}
	return min(score/PointsPerCat, MaxCats)
}

// ToNext returns the points still missing for the next cat, or 0 when the
// playground is full.
func ToNext(score int) int {
	if Cats(score) >= MaxCats {
		return 0
	}
	return PointsPerCat - max(score, 0)%PointsPerCat
}

type summaryMsg struct {
	Summary *api.Summary
	Err     error
}

// PlaygroundScreen shows the cats a learner has earned.
type PlaygroundScreen struct {
	deps    nav.Deps
	learner auth.Identity
	score   int
	loaded  bool
	frame   int
	errMsg  string
}

var _ screen.Screen = (*PlaygroundScreen)(nil)

// New creates the playground for learner.
func New(deps nav.Deps, learner auth.Identity) *PlaygroundScreen {
	return &PlaygroundScreen{deps: deps, learner: learner}
}

func (s *PlaygroundScreen) Init() tea.Cmd {
	client, id := s.deps.API, s.learner.ID
	return func() tea.Msg {
		sum, err := client.Summary(context.Background(), id)
		return summaryMsg{Summary: sum, Err: err}
	}
}

func (s *PlaygroundScreen) Title() string {
	return s.deps.T.T("play.title")
}

func (s *PlaygroundScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = nav.ErrorText(s.deps.T, msg.Err)
			return s, nil
		}
		s.score = msg.Summary.TotalScore
		return s, nil
	case tea.KeyPressMsg:
		// Space pets the cats.
		if msg.String() == "space" {
			s.frame++
		}
	}
	return s, nil
}

var catPoses = []string{"=^.^=", "=^o^=", "=^-^="}

func (s *PlaygroundScreen) View(width, height int) string {
	t := s.deps.T
	cw := components.ContentWidth(width)
	if s.errMsg != "" {
		return components.Frame(theme.Incorrect.Render(s.errMsg), width, height)
	}
	if !s.loaded {
		return components.Frame(theme.Hint.Render(t.T("app.loading")), width, height)
	}

	cats := Cats(s.score)
	var rows []string
	var row []string
	for i := range cats {
		pose := catPoses[(i+s.frame)%len(catPoses)]
		row = append(row, lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(pose))
		if len(row) == 5 {
			rows = append(rows, strings.Join(row, "  "))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, strings.Join(row, "  "))
	}
	garden := theme.Hint.Render("~ ~ ~")
	if len(rows) > 0 {
		garden = strings.Join(rows, "\n\n")
	}

	var progress string
	if next := ToNext(s.score); next > 0 {
		pct := float64(PointsPerCat-next) / PointsPerCat
		progress = components.NewProgressBar("", pct, true, cw-8).View() + "\n" + theme.Hint.Render(t.T("play.next", next))
	} else {
		progress = theme.Correct.Render(t.T("play.full"))
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.Hint.Render(t.T("play.intro")),
		"",
		components.Panel(garden, cw),
		"",
		theme.Subtitle.Render(t.T("play.owned", cats)),
		"",
		progress,
	)
	return components.Frame(body, width, height)
}

func (s *PlaygroundScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: s.deps.T.T("hint.back")}}
}
