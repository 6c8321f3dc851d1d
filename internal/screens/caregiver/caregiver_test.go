package caregiver

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/api/apitest"
	"github.com/abhisek/feelio/internal/screen"
	"github.com/abhisek/feelio/internal/screens/nav"
	"github.com/abhisek/feelio/internal/screens/screentest"
)

func isScreenMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case childrenLoadedMsg, childAddedMsg, sessionChangedMsg:
		return true
	}
	return false
}

func newTestCaregiver(t *testing.T) (screen.Screen, nav.Deps, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	parent := apitest.User{ID: 3, Name: "Ibu Sari", Email: "sari@example.com", Password: "rahasia", Role: api.RoleCaregiver}
	srv.AddUser(parent)
	child := screentest.Kid(7)
	child.ParentID = 3
	srv.AddUser(child)

	d := screentest.Deps(t, srv)
	s := New(d, screentest.SignIn(t, d, parent))
	scr, _ := screentest.Feed(s, s.Init(), isScreenMsg)
	return scr, d, srv
}

func TestListsChildren(t *testing.T) {
	scr, _, _ := newTestCaregiver(t)
	cs := scr.(*CaregiverScreen)
	if len(cs.children) != 1 || cs.children[0].Name != "Rani" {
		t.Fatalf("children = %+v", cs.children)
	}
	if out := scr.View(100, 40); !strings.Contains(out, "rani@example.com") {
		t.Errorf("child row missing:\n%s", out)
	}
}

func TestImpersonateChild(t *testing.T) {
	scr, d, _ := newTestCaregiver(t)

	scr, cmd := scr.Update(screentest.Special(tea.KeyEnter))
	_, rest := screentest.Feed(scr, cmd, isScreenMsg)

	if _, ok := screentest.Find[nav.IdentityChangedMsg](rest); !ok {
		t.Fatalf("expected IdentityChangedMsg, got %#v", rest)
	}
	cur, _ := d.Auth.Current()
	if cur.ID != 7 || !d.Auth.IsImpersonating() {
		t.Errorf("current = %+v impersonating=%v", cur, d.Auth.IsImpersonating())
	}
}

func TestAddChild(t *testing.T) {
	scr, _, srv := newTestCaregiver(t)

	scr, _ = scr.Update(screentest.Key('a'))
	if !scr.(*CaregiverScreen).HandlesEscape() {
		t.Fatal("form should own esc while open")
	}
	scr = screentest.Type(scr, "Budi")
	scr, _ = scr.Update(screentest.Special(tea.KeyTab))
	scr = screentest.Type(scr, "budi@example.com")
	scr, _ = scr.Update(screentest.Special(tea.KeyTab))
	scr = screentest.Type(scr, "rahasia1")
	scr, _ = scr.Update(screentest.Special(tea.KeyTab))
	scr, _ = scr.Update(screentest.Special(tea.KeyRight)) // older segment

	scr, cmd := scr.Update(screentest.Special(tea.KeyEnter))
	scr, _ = screentest.Feed(scr, cmd, isScreenMsg)

	cs := scr.(*CaregiverScreen)
	if cs.add != nil {
		t.Fatalf("form should close after adding, err %q", cs.errMsg)
	}
	if len(cs.children) != 2 {
		t.Fatalf("children = %+v, want 2", cs.children)
	}
	if cs.children[1].Segment != api.SegmentOld {
		t.Errorf("new child segment = %d, want older", cs.children[1].Segment)
	}
	if !strings.Contains(cs.notice, "Budi") {
		t.Errorf("notice = %q", cs.notice)
	}
	if srv.Calls("signup") != 1 {
		t.Errorf("signup calls = %d", srv.Calls("signup"))
	}
}

func TestAddChildValidation(t *testing.T) {
	scr, _, srv := newTestCaregiver(t)

	scr, _ = scr.Update(screentest.Key('a'))
	for range fieldSegment {
		scr, _ = scr.Update(screentest.Special(tea.KeyTab))
	}
	scr, _ = scr.Update(screentest.Special(tea.KeyEnter))

	cs := scr.(*CaregiverScreen)
	if cs.errMsg == "" || cs.add == nil {
		t.Error("an empty form should be rejected locally")
	}
	if srv.Calls("signup") != 0 {
		t.Error("invalid form must not reach the backend")
	}

	scr, _ = scr.Update(screentest.Special(tea.KeyEscape))
	if scr.(*CaregiverScreen).add != nil {
		t.Error("esc should close the form")
	}
}
