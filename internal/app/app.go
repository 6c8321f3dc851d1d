// Package app is the root Bubble Tea model: it owns the screen stack, the
// header score and the switch between login, caregiver and child screens.
package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/router"
	"github.com/abhisek/feelio/internal/screen"
	"github.com/abhisek/feelio/internal/screens/caregiver"
	"github.com/abhisek/feelio/internal/screens/home"
	"github.com/abhisek/feelio/internal/screens/login"
	"github.com/abhisek/feelio/internal/screens/nav"
	"github.com/abhisek/feelio/internal/screens/welcome"
	"github.com/abhisek/feelio/internal/ui/layout"
)

// Options holds dependencies injected into the app.
type Options struct {
	Deps nav.Deps

	// SkipWelcome starts directly on the landing screen.
	SkipWelcome bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	deps   nav.Deps
	router *router.Router
	width  int
	height int

	score    int
	scoreFor int
}

// newAppModel creates the model, starting on the splash unless skipped.
func newAppModel(opts Options) AppModel {
	m := AppModel{deps: opts.Deps}
	first := m.landing()
	if !opts.SkipWelcome {
		first = welcome.New(m.landing, opts.Deps.T)
	}
	m.router = router.New(first)
	return m
}

// landing picks the first screen for the active identity.
func (m AppModel) landing() screen.Screen {
	cur, ok := m.deps.Auth.Current()
	switch {
	case !ok:
		return login.New(m.deps)
	case cur.IsCaregiver():
		return caregiver.New(m.deps, cur)
	}
	return home.New(m.deps, cur)
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), m.refreshScore())
}

// refreshScore fetches the header score of the active child, if any.
func (m AppModel) refreshScore() tea.Cmd {
	cur, ok := m.deps.Auth.Current()
	if !ok || !cur.IsKid() {
		return nil
	}
	client := m.deps.API
	return func() tea.Msg {
		s, err := client.Summary(context.Background(), cur.ID)
		if err != nil {
			return nav.ScoreMsg{UserID: cur.ID, Err: err}
		}
		return nav.ScoreMsg{UserID: cur.ID, Score: s.TotalScore}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, router.Pop
			}
			return m, nil
		}

	case nav.IdentityChangedMsg:
		m.score, m.scoreFor = 0, 0
		cur, _ := m.deps.Auth.Current()
		m.deps.Log.Info("identity changed", "user_id", cur.ID, "role", string(cur.Role))
		return m, tea.Batch(m.router.Apply(router.OpReset, m.landing()), m.refreshScore())

	case nav.RefreshScoreMsg:
		return m, m.refreshScore()

	case nav.ScoreMsg:
		if msg.Err != nil {
			m.deps.Log.Warn("score refresh failed", "user_id", msg.UserID, "error", msg.Err)
			return m, nil
		}
		if cur, ok := m.deps.Auth.Current(); ok && cur.ID == msg.UserID {
			m.score, m.scoreFor = msg.Score, msg.UserID
		}
		return m, nil
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) headerInfo() layout.HeaderInfo {
	cur, ok := m.deps.Auth.Current()
	if !ok {
		return layout.HeaderInfo{}
	}
	info := layout.HeaderInfo{
		Name:      cur.Name,
		Score:     m.score,
		ShowScore: cur.IsKid() && m.scoreFor == cur.ID,
	}
	if m.deps.Auth.IsImpersonating() {
		info.Banner = m.deps.T.T("header.impersonating", cur.Name)
	}
	return info
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	t := m.deps.T
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: t.T("hint.back")},
			{Key: "Ctrl+C", Description: t.T("hint.quit")},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: t.T("hint.navigate")},
		{Key: "Enter", Description: t.T("hint.select")},
		{Key: "Ctrl+C", Description: t.T("hint.quit")},
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the whole frame as a string.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(
			m.deps.T.T("app.too_small", layout.MinWidth, layout.MinHeight, m.width, m.height), m.width, m.height)
	}

	active := m.router.Active()
	if _, splash := active.(*welcome.WelcomeScreen); splash {
		return active.View(m.width, m.height)
	}

	header := layout.RenderHeader(m.deps.T.T("app.name"), active.Title(), m.headerInfo(), m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
