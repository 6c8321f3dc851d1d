package learn

import (
	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/badges"
	"github.com/abhisek/feelio/internal/emotion"
)

// Phase is the controller's position in the learning flow.
type Phase int

const (
	PhaseLoading          Phase = iota // Fetching catalog and history
	PhasePresenting                    // Story shown, no answer yet
	PhaseAnswering                     // Answer being typed or dictated
	PhaseSubmitting                    // Answer sent, waiting on the backend
	PhaseReviewing                     // Result shown
	PhaseAwaitingFollowup              // Older children: coping-strategy question open
	PhaseFollowupReviewed              // Follow-up feedback shown
	PhaseExhausted                     // No story left; terminal
)

var phaseNames = map[Phase]string{
	PhaseLoading:          "loading",
	PhasePresenting:       "presenting",
	PhaseAnswering:        "answering",
	PhaseSubmitting:       "submitting",
	PhaseReviewing:        "reviewing",
	PhaseAwaitingFollowup: "awaiting-followup",
	PhaseFollowupReviewed: "followup-reviewed",
	PhaseExhausted:        "exhausted",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// Score awarded for a correct answer.
const CorrectScore = 10

// Result is the outcome of one submitted answer.
type Result struct {
	ResponseID int
	Answer     string
	Predicted  []emotion.Tag
	Expected   []emotion.Tag
	Correct    bool
	Score      int
	Feedback   string
}

// Followup is the outcome of the coping-strategy round.
type Followup struct {
	Answer   string
	Feedback string
}

// View is a copy of the controller state for rendering.
type View struct {
	Phase      Phase
	Narrative  api.Narrative
	Candidates int

	// Draft is the answer being edited in the current phase: the emotion
	// answer before submission, the follow-up answer while one is open.
	Draft string

	Result   *Result
	Followup *Followup
	Flagged  bool

	// Busy is set while a follow-up or flag request is in flight.
	Busy bool

	// Err is the last failure. The phase is unchanged by it.
	Err error

	// Celebration holds badges earned by the last action, if any.
	Celebration *badges.Celebration

	// AwaitsFollowup reports whether the current result still expects the
	// coping-strategy round.
	AwaitsFollowup bool
}
