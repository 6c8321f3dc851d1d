package moderation

import (
	"context"
	"errors"
	"sync"

	"github.com/abhisek/feelio/internal/api"
)

// ActionKind is a sensitive override that needs the password first.
type ActionKind int

const (
	MarkCorrect ActionKind = iota + 1
	MarkIncorrect
)

func (k ActionKind) String() string {
	switch k {
	case MarkCorrect:
		return "mark-correct"
	case MarkIncorrect:
		return "mark-incorrect"
	}
	return "unknown"
}

// Action is an override waiting for confirmation.
type Action struct {
	Kind       ActionKind
	ResponseID int
}

// Gate holds at most one pending override until the password is
// confirmed. A wrong password keeps the action pending; Cancel drops it.
type Gate struct {
	svc *Service

	mu      sync.Mutex
	pending *Action
}

// NewGate creates a gate in front of svc.
func NewGate(svc *Service) *Gate {
	return &Gate{svc: svc}
}

// Request replaces any pending action with a.
func (g *Gate) Request(a Action) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = &a
}

// Pending returns the action awaiting confirmation.
func (g *Gate) Pending() (Action, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Action{}, false
	}
	return *g.pending, true
}

// Cancel drops the pending action without side effects.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
}

// Confirm checks password and runs the pending action, returning the
// refreshed tiles. Nothing is sent to the backend besides the password
// check unless it succeeds. Any verification failure keeps the action
// pending.
func (g *Gate) Confirm(ctx context.Context, password string) ([]api.Response, error) {
	a, ok := g.Pending()
	if !ok {
		return nil, ErrNoPending
	}
	if err := g.svc.VerifyPassword(ctx, password); err != nil {
		if errors.Is(err, ErrWrongPassword) {
			g.svc.log.Info("override password rejected", "action", a.Kind.String())
		}
		return nil, err
	}

	g.mu.Lock()
	if g.pending == nil || *g.pending != a {
		g.mu.Unlock()
		return nil, ErrNoPending
	}
	g.pending = nil
	g.mu.Unlock()

	return g.svc.OverrideCorrectness(ctx, a.ResponseID, a.Kind == MarkCorrect)
}
