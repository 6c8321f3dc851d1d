// Package login is the sign-in screen shown when no session is stored.
package login

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/router"
	"github.com/abhisek/feelio/internal/screen"
	"github.com/abhisek/feelio/internal/screens/nav"
	"github.com/abhisek/feelio/internal/screens/signup"
	"github.com/abhisek/feelio/internal/ui/components"
	"github.com/abhisek/feelio/internal/ui/layout"
)

const (
	fieldEmail = iota
	fieldPassword
)

// LoginScreen collects email and password.
type LoginScreen struct {
	deps    nav.Deps
	form    components.Form
	loading components.Loading
	busy    bool
	errMsg  string
	notice  string
}

var _ screen.Screen = (*LoginScreen)(nil)

func New(deps nav.Deps) *LoginScreen {
	t := deps.T
	return &LoginScreen{
		deps: deps,
		form: components.NewForm(
			components.NewTextInput(t.T("login.email"), "nama@contoh.com", 128),
			components.NewPasswordInput(t.T("login.password")),
		),
		loading: components.NewLoading(t.T("login.progress")),
	}
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.form.Inputs[fieldEmail].Focus()
}

func (s *LoginScreen) Title() string {
	return s.deps.T.T("login.title")
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		return s.handleResult(msg)

	case signup.CreatedMsg:
		s.form.Inputs[fieldEmail].SetValue(msg.Email)
		s.form.Inputs[fieldPassword].Reset()
		s.errMsg = ""
		s.notice = s.deps.T.T("signup.done")
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.loading, cmd = s.loading.Update(msg)
	return s, cmd
}

func (s *LoginScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}
	switch msg.String() {
	case "ctrl+n":
		return s, router.Push(signup.New(s.deps))
	case "enter":
		if !s.form.Last() {
			var cmd tea.Cmd
			s.form, cmd = s.form.Update(tea.KeyPressMsg{Code: tea.KeyTab})
			return s, cmd
		}
		return s.submit()
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return s, cmd
}

func (s *LoginScreen) submit() (screen.Screen, tea.Cmd) {
	email := s.form.Value(fieldEmail)
	password := s.form.Raw(fieldPassword)
	if email == "" || password == "" {
		s.errMsg = s.deps.T.T("login.required")
		return s, nil
	}

	s.busy = true
	s.errMsg = ""
	s.notice = ""
	store := s.deps.Auth
	return s, tea.Batch(s.loading.Tick(), func() tea.Msg {
		id, err := store.Login(context.Background(), email, password)
		return loginResultMsg{Identity: id, Err: err}
	})
}

func (s *LoginScreen) handleResult(msg loginResultMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if msg.Err != nil {
		s.deps.Log.Info("login failed", "error", msg.Err)
		if errors.Is(msg.Err, api.ErrUnauthorized) {
			s.errMsg = s.deps.T.T("login.failed")
		} else {
			s.errMsg = nav.ErrorText(s.deps.T, msg.Err)
		}
		s.form.Inputs[fieldPassword].Reset()
		return s, nil
	}
	return s, func() tea.Msg { return nav.IdentityChangedMsg{} }
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	t := s.deps.T
	return []layout.KeyHint{
		{Key: "Tab", Description: t.T("hint.next_field")},
		{Key: "Enter", Description: t.T("login.submit")},
		{Key: "Ctrl+N", Description: t.T("signup.title")},
		{Key: "Ctrl+C", Description: t.T("hint.quit")},
	}
}
