package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/api/apitest"
	"github.com/abhisek/feelio/internal/auth"
	"github.com/abhisek/feelio/internal/feedback"
	"github.com/abhisek/feelio/internal/learn"
	"github.com/abhisek/feelio/internal/store"
)

const kidID = 21

type memJournal struct {
	entries []store.ActivityEventData
}

func (j *memJournal) Append(_ context.Context, d store.ActivityEventData) error {
	j.entries = append(j.entries, d)
	return nil
}

func (j *memJournal) Query(context.Context, int, store.QueryOpts) ([]store.ActivityRecord, error) {
	return nil, nil
}

func (j *memJournal) CountByKind(context.Context, int) ([]store.ActivityCount, error) {
	return nil, nil
}

type fixture struct {
	srv     *apitest.Server
	client  *api.Client
	svc     *Service
	journal *memJournal
	ids     map[api.NarrativeID]int
}

// newFixture seeds four answered stories. The second answer to n1 is the
// latest one for that story.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser(apitest.User{ID: kidID, Name: "Rani", Email: "rani@example.com", Password: "kucing", Role: api.RoleKid, Segment: 1})
	srv.AddNarratives(
		api.Narrative{ID: "n1", ExpectedEmotions: []string{"happy"}},
		api.Narrative{ID: "n2", ExpectedEmotions: []string{"sad"}},
		api.Narrative{ID: "n3", ExpectedEmotions: []string{"angry"}},
		api.Narrative{ID: "n4", ExpectedEmotions: []string{"fear"}},
	)
	f := &fixture{srv: srv, client: srv.Client(t), journal: &memJournal{}, ids: map[api.NarrativeID]int{}}
	srv.AddResponse(kidID, api.Response{NarrativeID: "n1", PredictedEmotion: []string{"sad"}})
	for _, id := range []api.NarrativeID{"n1", "n2", "n3", "n4"} {
		f.ids[id] = srv.AddResponse(kidID, api.Response{
			NarrativeID:      id,
			PredictedEmotion: []string{"happy"},
			IsCorrect:        id == "n1",
			Score:            map[bool]int{true: 10}[id == "n1"],
			Flagged:          id == "n2",
		})
	}
	f.svc = New(f.client, kidID, WithJournal(f.journal))
	return f
}

func tile(tiles []api.Response, id api.NarrativeID) api.Response {
	for _, t := range tiles {
		if t.NarrativeID == id {
			return t
		}
	}
	return api.Response{}
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	ov, err := f.svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, ov.Stats.TotalAttempted)
	assert.Equal(t, 1, ov.Stats.TotalCorrect)
	assert.Len(t, ov.Recent, RecentLimit)
	require.Len(t, ov.Tiles, 4, "one tile per story")
	assert.Equal(t, f.ids["n1"], tile(ov.Tiles, "n1").ID, "latest answer wins")
	assert.Equal(t, api.NarrativeID("n4"), ov.Tiles[0].NarrativeID, "newest first")
}

func TestOverview_FailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail("stats", 1)
	_, err := f.svc.Overview(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load stats")
}

func TestOverrideCorrectness_ClearsFlagAndRefetches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tiles, err := f.svc.OverrideCorrectness(ctx, f.ids["n2"], true)
	require.NoError(t, err)
	n2 := tile(tiles, "n2")
	assert.True(t, n2.IsCorrect)
	assert.False(t, n2.Flagged)
	assert.Equal(t, 10, n2.Score)
	assert.Equal(t, 1, f.srv.Calls("override-correct"))
	assert.Equal(t, 1, f.srv.Calls("unflag"))

	tiles, err = f.svc.OverrideCorrectness(ctx, f.ids["n2"], false)
	require.NoError(t, err)
	assert.False(t, tile(tiles, "n2").IsCorrect)

	require.Len(t, f.journal.entries, 2)
	assert.Equal(t, store.ActivityOverride, f.journal.entries[1].Kind)
	require.NotNil(t, f.journal.entries[1].Correct)
	assert.False(t, *f.journal.entries[1].Correct)
}

func TestOverrideCorrectness_UnflagFailureSkipsRefetch(t *testing.T) {
	f := newFixture(t)
	before := f.srv.Calls("responses")
	f.srv.Fail("unflag", 1)

	_, err := f.svc.OverrideCorrectness(context.Background(), f.ids["n2"], true)
	require.Error(t, err)
	assert.Equal(t, before, f.srv.Calls("responses"))
	assert.Empty(t, f.journal.entries)
}

// slowUnflag fails the override and holds the unflag until the override
// has returned.
type slowUnflag struct {
	*api.Client
	overridden chan struct{}
	unflagCtx  error
}

func (b *slowUnflag) OverrideCorrect(context.Context, int) error {
	defer close(b.overridden)
	return errors.New("override refused")
}

func (b *slowUnflag) Unflag(ctx context.Context, responseID int) error {
	<-b.overridden
	b.unflagCtx = ctx.Err()
	return b.Client.Unflag(ctx, responseID)
}

func TestOverrideCorrectness_FailureDoesNotCancelUnflag(t *testing.T) {
	f := newFixture(t)
	backend := &slowUnflag{Client: f.client, overridden: make(chan struct{})}
	svc := New(backend, kidID, WithJournal(f.journal))

	_, err := svc.OverrideCorrectness(context.Background(), f.ids["n2"], true)
	require.ErrorContains(t, err, "override refused")
	assert.NoError(t, backend.unflagCtx)
	assert.Equal(t, 1, f.srv.Calls("unflag"))
	stored, ok := f.srv.Response(f.ids["n2"])
	require.True(t, ok)
	assert.False(t, stored.Flagged)
	assert.Empty(t, f.journal.entries)
}

func TestSetRepeatable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tiles, err := f.svc.SetRepeatable(ctx, f.ids["n3"], true)
	require.NoError(t, err)
	assert.True(t, tile(tiles, "n3").Repeatable)

	tiles, err = f.svc.SetRepeatable(ctx, f.ids["n3"], false)
	require.NoError(t, err)
	assert.False(t, tile(tiles, "n3").Repeatable)

	assert.Equal(t, store.ActivityRepeatable, f.journal.entries[0].Kind)
	assert.Equal(t, store.ActivityUnrepeatable, f.journal.entries[1].Kind)
}

func TestFlagLatest(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.FlagLatest(context.Background(), "n1"))

	latest, _ := f.srv.Response(f.ids["n1"])
	assert.True(t, latest.Flagged)
	older := f.srv.Responses(kidID)[0]
	assert.False(t, older.Flagged, "only the newest answer is flagged")

	err := f.svc.FlagLatest(context.Background(), "missing")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestGate_WrongPasswordKeepsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := NewGate(f.svc)

	_, err := g.Confirm(ctx, "kucing")
	assert.ErrorIs(t, err, ErrNoPending)

	g.Request(Action{Kind: MarkCorrect, ResponseID: f.ids["n3"]})
	_, err = g.Confirm(ctx, "anjing")
	assert.ErrorIs(t, err, ErrWrongPassword)
	_, ok := g.Pending()
	assert.True(t, ok, "pending action survives a wrong password")
	assert.Zero(t, f.srv.Calls("override-correct"))

	tiles, err := g.Confirm(ctx, "kucing")
	require.NoError(t, err)
	assert.True(t, tile(tiles, "n3").IsCorrect)
	_, ok = g.Pending()
	assert.False(t, ok)
}

func TestGate_TransportFailureKeepsPending(t *testing.T) {
	f := newFixture(t)
	g := NewGate(f.svc)
	g.Request(Action{Kind: MarkIncorrect, ResponseID: f.ids["n1"]})

	f.srv.Fail("verify-password", 1)
	_, err := g.Confirm(context.Background(), "kucing")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrWrongPassword)
	_, ok := g.Pending()
	assert.True(t, ok)
}

func TestGate_Cancel(t *testing.T) {
	f := newFixture(t)
	g := NewGate(f.svc)
	g.Request(Action{Kind: MarkIncorrect, ResponseID: f.ids["n1"]})
	g.Cancel()

	_, err := g.Confirm(context.Background(), "kucing")
	assert.ErrorIs(t, err, ErrNoPending)
	assert.Zero(t, f.srv.Calls("verify-password"))
	assert.Zero(t, f.srv.Calls("override-incorrect"))
}

// A caregiver re-queues one story of an exhausted learner; the next visit
// offers exactly that story.
func TestRepeatableRequeuesStoryForLearner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kid := auth.Identity{ID: kidID, Role: auth.RoleKid, Segment: auth.SegmentYoung}
	src := feedback.NewBackendSource(f.client)

	visit := learn.New(f.client, kid, src)
	require.NoError(t, visit.Load(ctx))
	require.Equal(t, learn.PhaseExhausted, visit.Phase())

	_, err := f.svc.SetRepeatable(ctx, f.ids["n2"], true)
	require.NoError(t, err)

	visit = learn.New(f.client, kid, src)
	require.NoError(t, visit.Load(ctx))
	v := visit.View()
	assert.Equal(t, learn.PhasePresenting, v.Phase)
	assert.Equal(t, 1, v.Candidates)
	assert.Equal(t, api.NarrativeID("n2"), v.Narrative.ID)
}

func TestActionKindString(t *testing.T) {
	assert.Equal(t, "mark-correct", MarkCorrect.String())
	assert.Equal(t, "unknown", ActionKind(0).String())
}
