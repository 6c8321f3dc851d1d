// Package statistics shows a child's progress and lets a caregiver correct
// the model's judgement of individual answers. Correctness overrides are
// gated behind the child account's password.
package statistics

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/auth"
	"github.com/abhisek/feelio/internal/moderation"
	"github.com/abhisek/feelio/internal/screen"
	"github.com/abhisek/feelio/internal/screens/nav"
	"github.com/abhisek/feelio/internal/ui/components"
	"github.com/abhisek/feelio/internal/ui/layout"
)

// StatisticsScreen lists totals, recent answers and one tile per story.
type StatisticsScreen struct {
	deps    nav.Deps
	learner auth.Identity
	svc     *moderation.Service
	gate    *moderation.Gate

	overview *moderation.Overview
	loading  components.Loading
	cursor   int

	detail  bool
	actions components.Menu

	pinOpen bool
	pin     components.TextInput
	pinErr  string
	busy    bool

	errMsg string
	notice string
}

var (
	_ screen.Screen        = (*StatisticsScreen)(nil)
	_ screen.EscapeHandler = (*StatisticsScreen)(nil)
)

// New creates the statistics screen for learner.
func New(deps nav.Deps, learner auth.Identity) *StatisticsScreen {
	svc := moderation.New(deps.API, learner.ID,
		moderation.WithJournal(deps.Journal),
		moderation.WithLogger(deps.Log),
	)
	pin := components.NewPasswordInput(deps.T.T("stats.pin_title"))
	pin.Blur()
	return &StatisticsScreen{
		deps:    deps,
		learner: learner,
		svc:     svc,
		gate:    moderation.NewGate(svc),
		loading: components.NewLoading(deps.T.T("app.loading")),
		pin:     pin,
	}
}

func (s *StatisticsScreen) Init() tea.Cmd {
	return tea.Batch(s.loading.Tick(), s.load())
}

func (s *StatisticsScreen) load() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ov, err := svc.Overview(context.Background())
		return overviewMsg{Overview: ov, Err: err}
	}
}

func (s *StatisticsScreen) Title() string {
	return s.deps.T.T("stats.title")
}

// HandlesEscape reports whether esc closes a panel instead of leaving.
func (s *StatisticsScreen) HandlesEscape() bool {
	return s.detail || s.pinOpen
}

func (s *StatisticsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewMsg:
		if msg.Err != nil {
			s.errMsg = nav.ErrorText(s.deps.T, msg.Err)
			return s, nil
		}
		s.errMsg = ""
		s.overview = msg.Overview
		s.clampCursor()
		return s, nil

	case tilesMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = nav.ErrorText(s.deps.T, msg.Err)
			return s, nil
		}
		s.applyTiles(msg.Tiles)
		return s, s.afterChange()

	case confirmMsg:
		s.busy = false
		if msg.Err != nil {
			if errors.Is(msg.Err, moderation.ErrWrongPassword) {
				s.pinErr = s.deps.T.T("stats.pin_wrong")
			} else {
				s.pinErr = nav.ErrorText(s.deps.T, msg.Err)
			}
			s.pin.Reset()
			return s, nil
		}
		s.closePin()
		s.applyTiles(msg.Tiles)
		return s, s.afterChange()

	case statsMsg:
		if msg.Err == nil && s.overview != nil {
			s.overview.Stats = msg.Stats
		}
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.loading, cmd = s.loading.Update(msg)
	return s, cmd
}

func (s *StatisticsScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.pinOpen {
		return s.handlePinKey(msg)
	}
	if s.detail {
		if msg.String() == "esc" {
			s.detail = false
			return s, nil
		}
		if s.busy {
			return s, nil
		}
		var cmd tea.Cmd
		s.actions, cmd = s.actions.Update(msg)
		return s, cmd
	}

	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.overview != nil && s.cursor < len(s.overview.Tiles)-1 {
			s.cursor++
		}
	case "enter":
		if t, ok := s.selected(); ok {
			s.notice = ""
			s.openDetail(t)
		}
	case "r":
		s.notice = ""
		return s, tea.Batch(s.loading.Tick(), s.load())
	}
	return s, nil
}

func (s *StatisticsScreen) handlePinKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.gate.Cancel()
		s.closePin()
		return s, nil
	case "enter":
		if s.busy {
			return s, nil
		}
		password := s.pin.Model.Value()
		if password == "" {
			return s, nil
		}
		s.busy = true
		s.pinErr = ""
		gate := s.gate
		return s, func() tea.Msg {
			tiles, err := gate.Confirm(context.Background(), password)
			return confirmMsg{Tiles: tiles, Err: err}
		}
	}
	var cmd tea.Cmd
	s.pin, cmd = s.pin.Update(msg)
	return s, cmd
}

func (s *StatisticsScreen) selected() (api.Response, bool) {
	if s.overview == nil || s.cursor < 0 || s.cursor >= len(s.overview.Tiles) {
		return api.Response{}, false
	}
	return s.overview.Tiles[s.cursor], true
}

func (s *StatisticsScreen) clampCursor() {
	n := 0
	if s.overview != nil {
		n = len(s.overview.Tiles)
	}
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// applyTiles swaps in reread tiles and keeps the cursor on the same answer.
func (s *StatisticsScreen) applyTiles(tiles []api.Response) {
	if s.overview == nil {
		s.overview = &moderation.Overview{}
	}
	prev, had := s.selected()
	s.overview.Tiles = tiles
	if had {
		for i, t := range tiles {
			if t.NarrativeID == prev.NarrativeID {
				s.cursor = i
				break
			}
		}
	}
	s.clampCursor()
	if t, ok := s.selected(); ok && s.detail {
		s.openDetail(t)
	}
}

// afterChange announces a saved change and refreshes the totals and the
// header score, both of which an override can move.
func (s *StatisticsScreen) afterChange() tea.Cmd {
	s.errMsg = ""
	s.notice = s.deps.T.T("stats.updated")
	client, id := s.deps.API, s.learner.ID
	return tea.Batch(
		func() tea.Msg {
			st, err := client.Stats(context.Background(), id)
			return statsMsg{Stats: st, Err: err}
		},
		func() tea.Msg { return nav.RefreshScoreMsg{} },
	)
}

func (s *StatisticsScreen) openDetail(t api.Response) {
	tr := s.deps.T
	repeatLabel := tr.T("stats.repeatable_on")
	if t.Repeatable {
		repeatLabel = tr.T("stats.repeatable_off")
	}
	id, repeatable := t.ID, t.Repeatable
	items := []components.MenuItem{
		{Label: tr.T("stats.mark_correct"), Disabled: t.IsCorrect, Action: func() tea.Cmd {
			return s.requestOverride(moderation.MarkCorrect, id)
		}},
		{Label: tr.T("stats.mark_incorrect"), Disabled: !t.IsCorrect, Action: func() tea.Cmd {
			return s.requestOverride(moderation.MarkIncorrect, id)
		}},
		{Label: repeatLabel, Action: func() tea.Cmd {
			return s.setRepeatable(id, !repeatable)
		}},
	}
	if s.detail {
		sel := s.actions.Selected
		s.actions = components.NewMenu(items)
		if sel < len(items) && !items[sel].Disabled {
			s.actions.Selected = sel
		}
	} else {
		s.actions = components.NewMenu(items)
	}
	s.detail = true
}

func (s *StatisticsScreen) requestOverride(kind moderation.ActionKind, responseID int) tea.Cmd {
	s.gate.Request(moderation.Action{Kind: kind, ResponseID: responseID})
	s.pinOpen = true
	s.pinErr = ""
	s.pin.Reset()
	return s.pin.Focus()
}

func (s *StatisticsScreen) closePin() {
	s.pinOpen = false
	s.pinErr = ""
	s.pin.Reset()
	s.pin.Blur()
}

func (s *StatisticsScreen) setRepeatable(responseID int, repeatable bool) tea.Cmd {
	s.busy = true
	svc := s.svc
	return func() tea.Msg {
		tiles, err := svc.SetRepeatable(context.Background(), responseID, repeatable)
		return tilesMsg{Tiles: tiles, Err: err}
	}
}

func (s *StatisticsScreen) KeyHints() []layout.KeyHint {
	t := s.deps.T
	switch {
	case s.pinOpen:
		return []layout.KeyHint{
			{Key: "Enter", Description: t.T("hint.submit")},
			{Key: "Esc", Description: t.T("hint.cancel")},
		}
	case s.detail:
		return []layout.KeyHint{
			{Key: "↑↓", Description: t.T("hint.navigate")},
			{Key: "Enter", Description: t.T("hint.select")},
			{Key: "Esc", Description: t.T("hint.back")},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: t.T("hint.navigate")},
		{Key: "Enter", Description: t.T("hint.select")},
		{Key: "r", Description: t.T("hint.retry")},
		{Key: "Esc", Description: t.T("hint.back")},
	}
}
