// Package catalog decides which stories a learner may be given next. The
// backend's response history is the only source of truth: a story is done
// when its most recent answer is not marked repeatable.
package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/logger"
)

// Backend is the part of the backend API the catalog reads.
type Backend interface {
	Narratives(ctx context.Context, segment int) ([]api.Narrative, error)
	Responses(ctx context.Context, userID, limit int) ([]api.Response, error)
}

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// Selection is the outcome of choosing the next story. Exhausted is a
// normal result, not an error.
type Selection struct {
	Narrative  api.Narrative
	Exhausted  bool
	Candidates int
}

// LatestByNarrative keeps the newest response per story. When two responses
// share a timestamp the one seen first wins.
func LatestByNarrative(responses []api.Response) map[api.NarrativeID]api.Response {
	latest := make(map[api.NarrativeID]api.Response, len(responses))
	for _, r := range responses {
		cur, ok := latest[r.NarrativeID]
		if !ok || r.CreatedAt.After(cur.CreatedAt.Time) {
			latest[r.NarrativeID] = r
		}
	}
	return latest
}

// Latest returns the newest response per story, newest first.
func Latest(responses []api.Response) []api.Response {
	byID := LatestByNarrative(responses)
	out := make([]api.Response, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].CreatedAt.After(out[j].CreatedAt.Time)
		}
		return out[i].NarrativeID < out[j].NarrativeID
	})
	return out
}

// Completed returns the stories whose latest response is not repeatable.
func Completed(responses []api.Response) map[api.NarrativeID]bool {
	done := make(map[api.NarrativeID]bool)
	for id, r := range LatestByNarrative(responses) {
		if !r.Repeatable {
			done[id] = true
		}
	}
	return done
}

// Candidates returns the stories that may be presented, in catalog order.
func Candidates(narratives []api.Narrative, responses []api.Response, exclude ...api.NarrativeID) []api.Narrative {
	done := Completed(responses)
	for _, id := range exclude {
		done[id] = true
	}
	out := make([]api.Narrative, 0, len(narratives))
	for _, n := range narratives {
		if !done[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// Select picks one candidate uniformly at random.
func Select(narratives []api.Narrative, responses []api.Response, pick Picker, exclude ...api.NarrativeID) Selection {
	cands := Candidates(narratives, responses, exclude...)
	if len(cands) == 0 {
		return Selection{Exhausted: true}
	}
	if pick == nil {
		pick = globalPicker{}
	}
	return Selection{Narrative: cands[pick.IntN(len(cands))], Candidates: len(cands)}
}

// Client fetches the catalog and history and applies the selection rule.
// Nothing is cached between calls.
type Client struct {
	backend Backend
	pick    Picker
	log     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithPicker replaces the random source.
func WithPicker(p Picker) Option {
	return func(c *Client) { c.pick = p }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a catalog client.
func NewClient(backend Backend, opts ...Option) *Client {
	c := &Client{backend: backend, pick: globalPicker{}, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot is one fresh read of the catalog and the learner's history.
type Snapshot struct {
	Narratives []api.Narrative
	Responses  []api.Response
}

// Fetch reads the segment's catalog and the user's full history.
func (c *Client) Fetch(ctx context.Context, userID, segment int) (*Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := c.backend.Narratives(gctx, segment)
		if err != nil {
			return fmt.Errorf("load narratives: %w", err)
		}
		snap.Narratives = n
		return nil
	})
	g.Go(func() error {
		r, err := c.backend.Responses(gctx, userID, 0)
		if err != nil {
			return fmt.Errorf("load responses: %w", err)
		}
		snap.Responses = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Next fetches fresh data and selects the next story, skipping exclude.
func (c *Client) Next(ctx context.Context, userID, segment int, exclude ...api.NarrativeID) (Selection, error) {
	snap, err := c.Fetch(ctx, userID, segment)
	if err != nil {
		return Selection{}, err
	}
	sel := Select(snap.Narratives, snap.Responses, c.pick, exclude...)
	c.log.Debug("next story selected",
		"user_id", userID, "segment", segment,
		"catalog", len(snap.Narratives), "candidates", sel.Candidates,
		"exhausted", sel.Exhausted, "narrative_id", string(sel.Narrative.ID))
	return sel, nil
}
