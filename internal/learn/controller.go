// Package learn runs one visit to the learning screen: pick a story the
// child has not finished, take an answer, score it against the story's
// expected emotions, store the result and announce any new badges.
//
// The backend is the only source of truth. Every selection starts from a
// fresh read of the child's history and nothing is cached across
// mutations. A failed step leaves the controller in the phase it was in
// before the step began, with the child's typed answer intact.
package learn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/auth"
	"github.com/abhisek/feelio/internal/badges"
	"github.com/abhisek/feelio/internal/catalog"
	"github.com/abhisek/feelio/internal/emotion"
	"github.com/abhisek/feelio/internal/feedback"
	"github.com/abhisek/feelio/internal/logger"
	"github.com/abhisek/feelio/internal/store"
)

var (
	ErrEmptyAnswer = errors.New("answer is empty")
	ErrNoNarrative = errors.New("no story selected")
	ErrNoIdentity  = errors.New("no signed-in learner")
	ErrWrongPhase  = errors.New("not allowed now")
	ErrNoFollowup  = errors.New("follow-up question is only asked of older children")
)

// Backend is every backend operation the learning flow uses.
type Backend interface {
	catalog.Backend
	badges.Backend

	Predict(ctx context.Context, text string) ([]float64, error)
	CreateResponse(ctx context.Context, r api.NewResponse) (int, error)
	AddFollowup(ctx context.Context, responseID int, feedback string) error
	FlagLatest(ctx context.Context, userID int, narrativeID api.NarrativeID) error
}

// Controller owns the state of one learning screen visit. Methods that talk
// to the backend block; the screen runs them off the UI loop and reads
// state through View. It is safe for concurrent use.
type Controller struct {
	backend  Backend
	catalog  *catalog.Client
	feedback feedback.Source
	journal  store.ActivityRepo
	log      *logger.Logger
	learner  auth.Identity
	visitID  string

	mu            sync.Mutex
	tracker       *badges.Tracker
	phase         Phase
	narrative     api.Narrative
	candidates    int
	draft         string
	followupDraft string
	result        *Result
	followup      *Followup
	flagged       bool
	busy          bool // a follow-up or flag request is in flight
	lastErr       error
	celebration   *badges.Celebration
}

// Option configures a Controller.
type Option func(*controllerOpts)

type controllerOpts struct {
	picker  catalog.Picker
	journal store.ActivityRepo
	log     *logger.Logger
	visitID string
}

// WithPicker replaces the random story picker.
func WithPicker(p catalog.Picker) Option {
	return func(o *controllerOpts) { o.picker = p }
}

// WithJournal records submissions, follow-ups and flags locally.
func WithJournal(j store.ActivityRepo) Option {
	return func(o *controllerOpts) { o.journal = j }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *controllerOpts) { o.log = l }
}

// WithVisitID fixes the visit id used in journal entries.
func WithVisitID(id string) Option {
	return func(o *controllerOpts) { o.visitID = id }
}

// New creates a controller for learner. Call Load before anything else.
func New(backend Backend, learner auth.Identity, source feedback.Source, opts ...Option) *Controller {
	o := controllerOpts{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.visitID == "" {
		o.visitID = uuid.NewString()
	}
	catOpts := []catalog.Option{catalog.WithLogger(o.log)}
	if o.picker != nil {
		catOpts = append(catOpts, catalog.WithPicker(o.picker))
	}
	return &Controller{
		backend:  backend,
		catalog:  catalog.NewClient(backend, catOpts...),
		feedback: source,
		journal:  o.journal,
		log:      o.log.With("visit_id", o.visitID, "user_id", learner.ID),
		learner:  learner,
		visitID:  o.visitID,
		phase:    PhaseLoading,
	}
}

// VisitID identifies this visit in the activity journal.
func (c *Controller) VisitID() string { return c.visitID }

// Learner is the identity answering.
func (c *Controller) Learner() auth.Identity { return c.learner }

// View returns a snapshot of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Phase:       c.phase,
		Narrative:   c.narrative,
		Candidates:  c.candidates,
		Draft:       c.draft,
		Flagged:     c.flagged,
		Busy:        c.busy,
		Err:         c.lastErr,
		Celebration: c.celebration,
	}
	if c.phase == PhaseAwaitingFollowup {
		v.Draft = c.followupDraft
	}
	if c.result != nil {
		r := *c.result
		v.Result = &r
		v.AwaitsFollowup = c.followup == nil && c.learner.Segment == auth.SegmentOld
	}
	if c.followup != nil {
		f := *c.followup
		v.Followup = &f
	}
	return v
}

// Phase reports the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Load reads the catalog and history and presents the first story. It may
// be called again after a failure.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseLoading {
		c.mu.Unlock()
		return c.wrongPhase("load")
	}
	tracker := c.tracker
	c.mu.Unlock()

	if c.learner.ID == 0 {
		return c.fail(ErrNoIdentity)
	}

	if tracker == nil {
		t, err := badges.Prime(ctx, c.backend, c.learner.ID)
		if err != nil {
			return c.fail(err)
		}
		tracker = t
	}
	sel, err := c.catalog.Next(ctx, c.learner.ID, c.learner.Segment.Code())
	if err != nil {
		c.mu.Lock()
		c.tracker = tracker
		c.mu.Unlock()
		return c.fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker = tracker
	c.present(sel)
	return nil
}

// SetDraft replaces the text being edited: the emotion answer while a story
// is shown, or the follow-up answer while that question is open.
func (c *Controller) SetDraft(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return fmt.Errorf("%w: edit answer while %s is being saved", ErrWrongPhase, c.phase)
	}
	switch c.phase {
	case PhasePresenting, PhaseAnswering:
		c.draft = text
		c.phase = PhaseAnswering
	case PhaseAwaitingFollowup:
		c.followupDraft = text
	default:
		return fmt.Errorf("%w: edit answer while %s", ErrWrongPhase, c.phase)
	}
	return nil
}

// Submit scores the drafted answer and stores it. The answer is classified,
// checked against the story's expected emotions, commented on (younger
// children only), stored, and then badges are rechecked.
func (c *Controller) Submit(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.phase != PhasePresenting && c.phase != PhaseAnswering {
		c.mu.Unlock()
		return nil, c.wrongPhase("submit")
	}
	answer := strings.TrimSpace(c.draft)
	narrative := c.narrative
	var guard error
	switch {
	case answer == "":
		guard = ErrEmptyAnswer
	case narrative.ID == "":
		guard = ErrNoNarrative
	case c.learner.ID == 0:
		guard = ErrNoIdentity
	}
	if guard != nil {
		c.lastErr = guard
		c.mu.Unlock()
		return nil, guard
	}
	prev := c.phase
	c.phase = PhaseSubmitting
	c.lastErr = nil
	c.mu.Unlock()

	res, err := c.score(ctx, narrative, answer)
	if err != nil {
		c.mu.Lock()
		c.phase = prev
		c.lastErr = err
		c.mu.Unlock()
		c.log.Warn("submit failed", "narrative_id", string(narrative.ID), "error", err)
		return nil, err
	}

	correct := res.Correct
	c.record(ctx, store.ActivityEventData{
		NarrativeID: string(narrative.ID),
		ResponseID:  res.ResponseID,
		Kind:        store.ActivitySubmit,
		Correct:     &correct,
		Detail:      strings.Join(emotion.Strings(res.Predicted), ","),
	})
	celebration := c.checkBadges(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = res
	c.followup = nil
	c.flagged = false
	c.celebration = celebration
	c.phase = PhaseReviewing
	c.log.Info("answer scored", "narrative_id", string(narrative.ID), "response_id", res.ResponseID, "correct", res.Correct)
	out := *res
	return &out, nil
}

// score runs the dependent calls of a submission. Nothing is stored unless
// every earlier step succeeded.
func (c *Controller) score(ctx context.Context, n api.Narrative, answer string) (*Result, error) {
	probs, err := c.backend.Predict(ctx, answer)
	if err != nil {
		return nil, fmt.Errorf("predict emotions: %w", err)
	}
	predicted := emotion.FromProbabilities(probs)
	expected := emotion.NormalizeAll(n.ExpectedEmotions)
	correct := emotion.Intersects(predicted, expected)
	score := 0
	if correct {
		score = CorrectScore
	}

	text := feedback.Acknowledgement
	if c.learner.Segment != auth.SegmentOld {
		generated, err := c.feedback.Generate(ctx, feedback.Request{
			Narrative:        n.Text,
			Answer:           answer,
			ExpectedEmotions: emotion.Strings(expected),
			Correct:          correct,
			Segment:          c.learner.Segment.Label(),
		})
		if err != nil {
			return nil, fmt.Errorf("generate feedback: %w", err)
		}
		text = feedback.OrAcknowledge(generated)
	}

	id, err := c.backend.CreateResponse(ctx, api.NewResponse{
		UserID:           c.learner.ID,
		NarrativeID:      n.ID,
		UserAnswer:       answer,
		PredictedEmotion: emotion.Strings(predicted),
		IsCorrect:        correct,
		Score:            score,
		Feedback:         text,
	})
	if err != nil {
		return nil, fmt.Errorf("save response: %w", err)
	}

	return &Result{
		ResponseID: id,
		Answer:     answer,
		Predicted:  predicted,
		Expected:   expected,
		Correct:    correct,
		Score:      score,
		Feedback:   text,
	}, nil
}

// StartFollowup opens the coping-strategy question for older children.
func (c *Controller) StartFollowup() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseReviewing {
		return fmt.Errorf("%w: follow-up while %s", ErrWrongPhase, c.phase)
	}
	if c.learner.Segment != auth.SegmentOld {
		return ErrNoFollowup
	}
	c.phase = PhaseAwaitingFollowup
	c.followupDraft = ""
	c.lastErr = nil
	return nil
}

// SubmitFollowup asks for feedback on the coping-strategy answer and
// attaches it to the stored response. A second call while the first is in
// flight fails with ErrWrongPhase.
func (c *Controller) SubmitFollowup(ctx context.Context) (*Followup, error) {
	c.mu.Lock()
	if c.phase != PhaseAwaitingFollowup || c.busy {
		c.mu.Unlock()
		return nil, c.wrongPhase("submit follow-up")
	}
	answer := strings.TrimSpace(c.followupDraft)
	if answer == "" {
		c.lastErr = ErrEmptyAnswer
		c.mu.Unlock()
		return nil, ErrEmptyAnswer
	}
	narrative := c.narrative
	res := *c.result
	c.busy = true
	c.lastErr = nil
	c.mu.Unlock()
	defer c.idle()

	generated, err := c.feedback.Generate(ctx, feedback.Request{
		Narrative:        narrative.Text,
		Answer:           answer,
		ExpectedEmotions: narrative.ExpectedEmotions,
		Correct:          res.Correct,
		Segment:          c.learner.Segment.Label(),
		Followup:         true,
	})
	if err != nil {
		return nil, c.fail(fmt.Errorf("generate follow-up feedback: %w", err))
	}
	text := feedback.OrAcknowledge(generated)
	if err := c.backend.AddFollowup(ctx, res.ResponseID, text); err != nil {
		return nil, c.fail(fmt.Errorf("save follow-up: %w", err))
	}

	c.record(ctx, store.ActivityEventData{
		NarrativeID: string(narrative.ID),
		ResponseID:  res.ResponseID,
		Kind:        store.ActivityFollowup,
	})
	celebration := c.checkBadges(ctx)

	f := &Followup{Answer: answer, Feedback: text}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.followup = f
	c.phase = PhaseFollowupReviewed
	if celebration != nil {
		c.celebration = celebration
	}
	out := *f
	return &out, nil
}

// Flag asks a caregiver to review the prediction for the current story. It
// does not change the local result.
func (c *Controller) Flag(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseFollowupReviewed || c.busy || c.flagged {
		c.mu.Unlock()
		return c.wrongPhase("flag")
	}
	narrative := c.narrative
	responseID := c.result.ResponseID
	c.busy = true
	c.lastErr = nil
	c.mu.Unlock()
	defer c.idle()

	if err := c.backend.FlagLatest(ctx, c.learner.ID, narrative.ID); err != nil {
		return c.fail(fmt.Errorf("flag response: %w", err))
	}
	c.record(ctx, store.ActivityEventData{
		NarrativeID: string(narrative.ID),
		ResponseID:  responseID,
		Kind:        store.ActivityFlag,
	})

	c.mu.Lock()
	c.flagged = true
	c.mu.Unlock()
	return nil
}

// Next rereads the history and presents another story, never the one just
// answered.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	if (c.phase != PhaseReviewing && c.phase != PhaseFollowupReviewed) || c.busy {
		c.mu.Unlock()
		return c.wrongPhase("next")
	}
	prev := c.phase
	current := c.narrative.ID
	c.phase = PhaseLoading
	c.lastErr = nil
	c.mu.Unlock()

	sel, err := c.catalog.Next(ctx, c.learner.ID, c.learner.Segment.Code(), current)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.phase = prev
		c.lastErr = err
		c.log.Warn("next story failed", "error", err)
		return err
	}
	c.present(sel)
	return nil
}

// DismissCelebration clears the badge announcement.
func (c *Controller) DismissCelebration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.celebration = nil
}

// ClearError hides the last failure.
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
}

// present moves to the selected story. Caller holds mu.
func (c *Controller) present(sel catalog.Selection) {
	c.draft = ""
	c.followupDraft = ""
	c.result = nil
	c.followup = nil
	c.flagged = false
	c.lastErr = nil
	c.candidates = sel.Candidates
	if sel.Exhausted {
		c.narrative = api.Narrative{}
		c.phase = PhaseExhausted
		c.log.Info("no stories left")
		return
	}
	c.narrative = sel.Narrative
	c.phase = PhasePresenting
}

// checkBadges refetches awards after a write. A failure here is logged and
// swallowed: the answer is already stored, and the next successful check
// still announces the badge.
func (c *Controller) checkBadges(ctx context.Context) *badges.Celebration {
	c.mu.Lock()
	tracker := c.tracker
	c.mu.Unlock()
	if tracker == nil {
		return nil
	}
	if _, err := tracker.Refresh(ctx); err != nil {
		c.log.Warn("badge check failed", "error", err)
		return nil
	}
	cel, ok := tracker.Next()
	if !ok {
		return nil
	}
	c.log.Info("badges earned", "count", len(cel.Awards))
	return &cel
}

func (c *Controller) record(ctx context.Context, data store.ActivityEventData) {
	if c.journal == nil {
		return
	}
	data.VisitID = c.visitID
	data.UserID = c.learner.ID
	if err := c.journal.Append(ctx, data); err != nil {
		c.log.Warn("journal append failed", "kind", data.Kind, "error", err)
	}
}

func (c *Controller) idle() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	return err
}

func (c *Controller) wrongPhase(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return fmt.Errorf("%w: %s while another request is in flight", ErrWrongPhase, op)
	}
	return fmt.Errorf("%w: %s while %s", ErrWrongPhase, op, c.phase)
}
