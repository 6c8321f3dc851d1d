// Package home is a child's dashboard: score line and the menu into
// learning, statistics, achievements and the playground.
package home

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/auth"
	"github.com/abhisek/feelio/internal/router"
	"github.com/abhisek/feelio/internal/screen"
	"github.com/abhisek/feelio/internal/screens/achievements"
	learnscreen "github.com/abhisek/feelio/internal/screens/learn"
	"github.com/abhisek/feelio/internal/screens/nav"
	"github.com/abhisek/feelio/internal/screens/playground"
	"github.com/abhisek/feelio/internal/screens/statistics"
	"github.com/abhisek/feelio/internal/ui/components"
	"github.com/abhisek/feelio/internal/ui/layout"
)

// HomeScreen is the kid dashboard.
type HomeScreen struct {
	deps          nav.Deps
	learner       auth.Identity
	impersonating bool

	menu    components.Menu
	summary *api.Summary
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the dashboard for learner.
func New(deps nav.Deps, learner auth.Identity) *HomeScreen {
	h := &HomeScreen{
		deps:          deps,
		learner:       learner,
		impersonating: deps.Auth.IsImpersonating(),
	}
	h.menu = components.NewMenu(h.items())
	return h
}

func (h *HomeScreen) items() []components.MenuItem {
	t := h.deps.T
	deps, learner := h.deps, h.learner

	items := []components.MenuItem{
		{Label: t.T("menu.learn"), Action: func() tea.Cmd {
			return router.Push(learnscreen.New(deps, learner))
		}},
		{Label: t.T("menu.stats"), Action: func() tea.Cmd {
			return router.Push(statistics.New(deps, learner))
		}},
		{Label: t.T("menu.achievements"), Action: func() tea.Cmd {
			return router.Push(achievements.New(deps, learner))
		}},
		{Label: t.T("menu.playground"), Action: func() tea.Cmd {
			return router.Push(playground.New(deps, learner))
		}},
	}
	if h.impersonating {
		items = append(items, components.MenuItem{Label: t.T("menu.return"), Action: h.returnToCaregiver})
	} else {
		items = append(items, components.MenuItem{Label: t.T("menu.logout"), Action: h.logout})
	}
	return items
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadSummary()
}

// Focus reloads the score after returning from another screen.
func (h *HomeScreen) Focus() tea.Cmd {
	return h.loadSummary()
}

func (h *HomeScreen) loadSummary() tea.Cmd {
	client, id := h.deps.API, h.learner.ID
	return func() tea.Msg {
		s, err := client.Summary(context.Background(), id)
		return summaryLoadedMsg{Summary: s, Err: err}
	}
}

func (h *HomeScreen) logout() tea.Cmd {
	st := h.deps.Auth
	return func() tea.Msg {
		return sessionChangedMsg{Err: st.Logout(context.Background())}
	}
}

func (h *HomeScreen) returnToCaregiver() tea.Cmd {
	st := h.deps.Auth
	return func() tea.Msg {
		_, err := st.ReturnToCaregiver(context.Background())
		return sessionChangedMsg{Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryLoadedMsg:
		if msg.Err != nil {
			h.deps.Log.Warn("load summary failed", "user_id", h.learner.ID, "error", msg.Err)
			h.errMsg = nav.ErrorText(h.deps.T, msg.Err)
			return h, nil
		}
		h.errMsg = ""
		h.summary = msg.Summary
		return h, func() tea.Msg {
			return nav.ScoreMsg{UserID: h.learner.ID, Score: msg.Summary.TotalScore}
		}

	case sessionChangedMsg:
		if msg.Err != nil {
			h.errMsg = nav.ErrorText(h.deps.T, msg.Err)
			return h, nil
		}
		return h, func() tea.Msg { return nav.IdentityChangedMsg{} }
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) Title() string {
	return h.deps.T.T("home.title")
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	t := h.deps.T
	return []layout.KeyHint{
		{Key: "↑↓", Description: t.T("hint.navigate")},
		{Key: "Enter", Description: t.T("hint.select")},
		{Key: "Ctrl+C", Description: t.T("hint.quit")},
	}
}
