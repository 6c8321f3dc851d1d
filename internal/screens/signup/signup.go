// Package signup registers a child or caregiver account. It does not sign
// the new account in.
package signup

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feelio/internal/auth"
	"github.com/abhisek/feelio/internal/router"
	"github.com/abhisek/feelio/internal/screen"
	"github.com/abhisek/feelio/internal/screens/nav"
	"github.com/abhisek/feelio/internal/ui/components"
	"github.com/abhisek/feelio/internal/ui/layout"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldSegment
	fieldRole
	fieldCount
)

var (
	segments = []auth.Segment{auth.SegmentYoung, auth.SegmentOld}
	roles    = []auth.Role{auth.RoleKid, auth.RoleCaregiver}
)

// SignupScreen is the registration form.
type SignupScreen struct {
	deps    nav.Deps
	inputs  []components.TextInput
	segment components.Choice
	role    components.Choice
	focus   int
	loading components.Loading
	busy    bool
	errMsg  string
}

var _ screen.Screen = (*SignupScreen)(nil)

func New(deps nav.Deps) *SignupScreen {
	t := deps.T
	s := &SignupScreen{
		deps: deps,
		inputs: []components.TextInput{
			components.NewTextInput(t.T("signup.name"), "", 64),
			components.NewTextInput(t.T("login.email"), "nama@contoh.com", 128),
			components.NewPasswordInput(t.T("login.password")),
		},
		segment: components.NewChoice(t.T("signup.segment"), t.T("segment.young"), t.T("segment.old")),
		role:    components.NewChoice(t.T("signup.role"), t.T("role.kid"), t.T("role.caregiver")),
		loading: components.NewLoading(t.T("signup.progress")),
	}
	s.setFocus(fieldName)
	return s
}

func (s *SignupScreen) Init() tea.Cmd {
	return s.setFocus(fieldName)
}

func (s *SignupScreen) Title() string {
	return s.deps.T.T("signup.title")
}

func (s *SignupScreen) setFocus(i int) tea.Cmd {
	s.focus = (i + fieldCount) % fieldCount
	var cmd tea.Cmd
	for j := range s.inputs {
		if j == s.focus {
			cmd = s.inputs[j].Focus()
		} else {
			s.inputs[j].Blur()
		}
	}
	s.segment.Focused = s.focus == fieldSegment
	s.role.Focused = s.focus == fieldRole
	return cmd
}

func (s *SignupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case signupResultMsg:
		s.busy = false
		if msg.Err != nil {
			s.deps.Log.Info("signup failed", "error", msg.Err)
			s.errMsg = nav.ErrorText(s.deps.T, msg.Err)
			return s, nil
		}
		email := msg.Email
		return s, tea.Sequence(router.Pop, func() tea.Msg { return CreatedMsg{Email: email} })

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.loading, cmd = s.loading.Update(msg)
	return s, cmd
}

func (s *SignupScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}
	switch msg.String() {
	case "tab", "down":
		return s, s.setFocus(s.focus + 1)
	case "shift+tab", "up":
		return s, s.setFocus(s.focus - 1)
	case "enter":
		if s.focus < fieldRole {
			return s, s.setFocus(s.focus + 1)
		}
		return s.submit()
	}

	var cmd tea.Cmd
	switch s.focus {
	case fieldSegment:
		s.segment, cmd = s.segment.Update(msg)
	case fieldRole:
		s.role, cmd = s.role.Update(msg)
	default:
		s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	}
	return s, cmd
}

func (s *SignupScreen) form() auth.SignupForm {
	return auth.SignupForm{
		Name:     s.inputs[fieldName].Value(),
		Email:    s.inputs[fieldEmail].Value(),
		Password: s.inputs[fieldPassword].Model.Value(),
		Segment:  segments[s.segment.Selected],
		Role:     roles[s.role.Selected],
	}
}

func (s *SignupScreen) submit() (screen.Screen, tea.Cmd) {
	f := s.form()
	if err := f.Validate(); err != nil {
		s.errMsg = nav.ErrorText(s.deps.T, err)
		return s, nil
	}
	s.busy = true
	s.errMsg = ""
	store := s.deps.Auth
	return s, tea.Batch(s.loading.Tick(), func() tea.Msg {
		err := store.Signup(context.Background(), f)
		return signupResultMsg{Email: f.Email, Err: err}
	})
}

func (s *SignupScreen) KeyHints() []layout.KeyHint {
	t := s.deps.T
	return []layout.KeyHint{
		{Key: "Tab", Description: t.T("hint.next_field")},
		{Key: "←→", Description: t.T("hint.navigate")},
		{Key: "Enter", Description: t.T("signup.submit")},
		{Key: "Esc", Description: t.T("hint.back")},
	}
}
