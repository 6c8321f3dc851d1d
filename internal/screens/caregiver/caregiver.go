// Package caregiver is the dashboard of a caregiver account: list child
// accounts, create one, and act as a child.
package caregiver

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/auth"
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
	fieldCount
)

var segments = []auth.Segment{auth.SegmentYoung, auth.SegmentOld}

// addForm is the new-child form.
type addForm struct {
	inputs  []components.TextInput
	segment components.Choice
	focus   int
}

func newAddForm(deps nav.Deps) *addForm {
	t := deps.T
	f := &addForm{
		inputs: []components.TextInput{
			components.NewTextInput(t.T("caregiver.child_name"), "", 64),
			components.NewTextInput(t.T("caregiver.child_email"), "anak@contoh.com", 128),
			components.NewPasswordInput(t.T("login.password")),
		},
		segment: components.NewChoice(t.T("signup.segment"), t.T("segment.young"), t.T("segment.old")),
	}
	f.setFocus(fieldName)
	return f
}

func (f *addForm) setFocus(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	f.segment.Focused = f.focus == fieldSegment
	return cmd
}

func (f *addForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focus == fieldSegment {
		f.segment, cmd = f.segment.Update(msg)
		return cmd
	}
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *addForm) form(parentID int) auth.SignupForm {
	return auth.SignupForm{
		Name:     f.inputs[fieldName].Value(),
		Email:    f.inputs[fieldEmail].Value(),
		Password: f.inputs[fieldPassword].Model.Value(),
		Segment:  segments[f.segment.Selected],
		Role:     auth.RoleKid,
		ParentID: parentID,
	}
}

// CaregiverScreen lists and manages child accounts.
type CaregiverScreen struct {
	deps      nav.Deps
	caregiver auth.Identity

	children []api.Child
	menu     components.Menu
	loaded   bool
	loading  components.Loading
	add      *addForm
	busy     bool
	errMsg   string
	notice   string
}

var _ screen.Screen = (*CaregiverScreen)(nil)

func New(deps nav.Deps, caregiver auth.Identity) *CaregiverScreen {
	s := &CaregiverScreen{
		deps:      deps,
		caregiver: caregiver,
		loading:   components.NewLoading(deps.T.T("app.loading")),
	}
	s.menu = components.NewMenu(s.items())
	return s
}

func (s *CaregiverScreen) items() []components.MenuItem {
	t := s.deps.T
	items := make([]components.MenuItem, 0, len(s.children)+1)
	for _, c := range s.children {
		child := c
		items = append(items, components.MenuItem{
			Label:  child.Name,
			Tag:    fmt.Sprintf("%s · %s", child.Email, auth.Segment(child.Segment).Label()),
			Action: func() tea.Cmd { return s.impersonate(child) },
		})
	}
	items = append(items, components.MenuItem{Label: t.T("menu.logout"), Action: s.logout})
	return items
}

func (s *CaregiverScreen) Init() tea.Cmd {
	return tea.Batch(s.loading.Tick(), s.loadChildren())
}

func (s *CaregiverScreen) loadChildren() tea.Cmd {
	client, id := s.deps.API, s.caregiver.ID
	return func() tea.Msg {
		children, err := client.Children(context.Background(), id)
		return childrenLoadedMsg{Children: children, Err: err}
	}
}

func (s *CaregiverScreen) impersonate(child api.Child) tea.Cmd {
	st := s.deps.Auth
	return func() tea.Msg {
		return sessionChangedMsg{Err: st.Impersonate(context.Background(), auth.ChildIdentity(child))}
	}
}

func (s *CaregiverScreen) logout() tea.Cmd {
	st := s.deps.Auth
	return func() tea.Msg {
		return sessionChangedMsg{Err: st.Logout(context.Background())}
	}
}

// HandlesEscape keeps esc for closing the add form.
func (s *CaregiverScreen) HandlesEscape() bool {
	return s.add != nil
}

func (s *CaregiverScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case childrenLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.deps.Log.Warn("load children failed", "caregiver_id", s.caregiver.ID, "error", msg.Err)
			s.errMsg = nav.ErrorText(s.deps.T, msg.Err)
			return s, nil
		}
		s.errMsg = ""
		s.children = msg.Children
		s.menu.SetItems(s.items())
		return s, nil

	case childAddedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = nav.ErrorText(s.deps.T, msg.Err)
			return s, nil
		}
		s.add = nil
		s.errMsg = ""
		s.notice = s.deps.T.T("caregiver.added", msg.Name)
		return s, s.loadChildren()

	case sessionChangedMsg:
		if msg.Err != nil {
			s.errMsg = nav.ErrorText(s.deps.T, msg.Err)
			return s, nil
		}
		return s, func() tea.Msg { return nav.IdentityChangedMsg{} }

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		if s.add != nil {
			return s.handleFormKey(msg)
		}
		switch msg.String() {
		case "a":
			s.add = newAddForm(s.deps)
			s.notice = ""
			s.errMsg = ""
			return s, s.add.setFocus(fieldName)
		case "r":
			return s, s.loadChildren()
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}

	var cmd tea.Cmd
	s.loading, cmd = s.loading.Update(msg)
	return s, cmd
}

func (s *CaregiverScreen) handleFormKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.add = nil
		s.errMsg = ""
		return s, nil
	case "tab", "down":
		return s, s.add.setFocus(s.add.focus + 1)
	case "shift+tab", "up":
		return s, s.add.setFocus(s.add.focus - 1)
	case "enter":
		if s.add.focus < fieldSegment {
			return s, s.add.setFocus(s.add.focus + 1)
		}
		return s.submitChild()
	}
	return s, s.add.update(msg)
}

func (s *CaregiverScreen) submitChild() (screen.Screen, tea.Cmd) {
	f := s.add.form(s.caregiver.ID)
	if err := f.Validate(); err != nil {
		s.errMsg = nav.ErrorText(s.deps.T, err)
		return s, nil
	}
	s.busy = true
	st := s.deps.Auth
	return s, tea.Batch(s.loading.Tick(), func() tea.Msg {
		return childAddedMsg{Name: f.Name, Err: st.Signup(context.Background(), f)}
	})
}

func (s *CaregiverScreen) Title() string {
	return s.deps.T.T("caregiver.title")
}

func (s *CaregiverScreen) KeyHints() []layout.KeyHint {
	t := s.deps.T
	if s.add != nil {
		return []layout.KeyHint{
			{Key: "Tab", Description: t.T("hint.next_field")},
			{Key: "Enter", Description: t.T("hint.submit")},
			{Key: "Esc", Description: t.T("hint.cancel")},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: t.T("hint.navigate")},
		{Key: "Enter", Description: t.T("caregiver.hint_act")},
		{Key: "a", Description: t.T("caregiver.hint_add")},
		{Key: "Ctrl+C", Description: t.T("hint.quit")},
	}
}
