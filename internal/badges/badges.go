// Package badges detects newly earned badges by diffing award lists fetched
// from the backend, and queues them for celebration.
package badges

import (
	"context"
	"fmt"
	"sync"

	"github.com/abhisek/feelio/internal/api"
)

// Backend lists a user's earned badges.
type Backend interface {
	Achievements(ctx context.Context, userID int) ([]api.Award, error)
}

// Celebration is a batch of badges earned by one action.
type Celebration struct {
	Awards []api.Award
}

// Names lists the badge names in award order.
func (c Celebration) Names() []string {
	names := make([]string, len(c.Awards))
	for i, a := range c.Awards {
		names[i] = a.Badge.Name
	}
	return names
}

// Points sums the points of the batch.
func (c Celebration) Points() int {
	total := 0
	for _, a := range c.Awards {
		total += a.Points
	}
	return total
}

// Tracker remembers which badge ids have been seen so each one is announced
// once. Known ids only grow.
type Tracker struct {
	backend Backend
	userID  int

	mu      sync.Mutex
	known   map[int]bool
	pending []Celebration
}

// NewTracker creates a tracker seeded with awards already held.
func NewTracker(backend Backend, userID int, held []api.Award) *Tracker {
	t := &Tracker{backend: backend, userID: userID, known: make(map[int]bool)}
	for _, a := range held {
		t.known[a.Badge.ID] = true
	}
	return t
}

// Prime fetches the current awards and marks them all as known.
func Prime(ctx context.Context, backend Backend, userID int) (*Tracker, error) {
	held, err := backend.Achievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	return NewTracker(backend, userID, held), nil
}

// Diff returns awards in after whose badge was not known, in order, and
// marks them known. Calling Diff again with the same list returns nothing.
func (t *Tracker) Diff(after []api.Award) []api.Award {
	t.mu.Lock()
	defer t.mu.Unlock()

	var fresh []api.Award
	for _, a := range after {
		if t.known[a.Badge.ID] {
			continue
		}
		t.known[a.Badge.ID] = true
		fresh = append(fresh, a)
	}
	if len(fresh) > 0 {
		t.pending = append(t.pending, Celebration{Awards: fresh})
	}
	return fresh
}

// Refresh refetches awards and diffs them against what is known.
func (t *Tracker) Refresh(ctx context.Context) ([]api.Award, error) {
	after, err := t.backend.Achievements(ctx, t.userID)
	if err != nil {
		return nil, fmt.Errorf("refresh achievements: %w", err)
	}
	return t.Diff(after), nil
}

// Next pops the oldest queued celebration.
func (t *Tracker) Next() (Celebration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return Celebration{}, false
	}
	c := t.pending[0]
	t.pending = t.pending[1:]
	return c, true
}

// Known reports how many distinct badges have been seen.
func (t *Tracker) Known() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.known)
}
