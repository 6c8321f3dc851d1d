// Package screentest wires screens to a fake backend and a throwaway local
// store, and runs the commands screens return.
package screentest

import (
	"context"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/api/apitest"
	"github.com/abhisek/feelio/internal/auth"
	"github.com/abhisek/feelio/internal/feedback"
	"github.com/abhisek/feelio/internal/i18n"
	"github.com/abhisek/feelio/internal/logger"
	"github.com/abhisek/feelio/internal/screen"
	"github.com/abhisek/feelio/internal/screens/nav"
	"github.com/abhisek/feelio/internal/speech"
	"github.com/abhisek/feelio/internal/store"
)

// Deps builds screen dependencies against srv. Speech is unavailable unless
// the caller replaces it.
func Deps(t testing.TB, srv *apitest.Server) nav.Deps {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "feelio.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	client := srv.Client(t)
	st, err := auth.Open(context.Background(), db.IdentityRepo(), client, auth.WithJournal(db.ActivityRepo()))
	if err != nil {
		t.Fatalf("open auth store: %v", err)
	}
	return nav.Deps{
		Auth:     st,
		API:      client,
		Feedback: feedback.NewBackendSource(client),
		Speech:   speech.Unavailable{},
		Journal:  db.ActivityRepo(),
		T:        i18n.Default(),
		Log:      logger.Nop(),
	}
}

// SignIn logs u in through the auth store.
func SignIn(t testing.TB, d nav.Deps, u apitest.User) auth.Identity {
	t.Helper()
	id, err := d.Auth.Login(context.Background(), u.Email, u.Password)
	if err != nil {
		t.Fatalf("login %s: %v", u.Email, err)
	}
	return id
}

// Kid is a young-segment child account.
func Kid(id int) apitest.User {
	return apitest.User{ID: id, Name: "Rani", Email: "rani@example.com", Password: "kucing", Role: api.RoleKid, Segment: api.SegmentYoung}
}

// Run executes cmd and any batch it expands to, returning every message
// produced. Nil commands and nil messages are dropped.
func Run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, Run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// Find returns the first message of type T.
func Find[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Feed runs cmd and hands every message of a type accepted by keep back to
// s, repeating until no new messages are kept. It returns the final screen
// and all messages that were not fed back.
func Feed(s screen.Screen, cmd tea.Cmd, keep func(tea.Msg) bool) (screen.Screen, []tea.Msg) {
	var rest []tea.Msg
	queue := Run(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		if !keep(msg) {
			rest = append(rest, msg)
			continue
		}
		var next tea.Cmd
		s, next = s.Update(msg)
		queue = append(queue, Run(next)...)
	}
	return s, rest
}

// Key is a printable key press.
func Key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Special is a non-printable key press such as tea.KeyEnter.
func Special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// Ctrl is ctrl plus a letter.
func Ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

// Type sends each rune of text to s.
func Type(s screen.Screen, text string) screen.Screen {
	for _, r := range text {
		s, _ = s.Update(Key(r))
	}
	return s
}
