package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// IdentityRecord is a persisted user identity.
type IdentityRecord struct {
	UserID  int
	Name    string
	Email   string
	Role    string
	Segment int
}

// SessionRecord is the persisted login state: the active identity and, while
// a caregiver is acting as a child, the caregiver's own identity.
type SessionRecord struct {
	Active       *IdentityRecord
	Impersonator *IdentityRecord
	SavedAt      time.Time
}

// IdentityRepo persists the session identity across restarts.
type IdentityRepo interface {
	// Load returns the saved session, or nil if nobody is logged in.
	Load(ctx context.Context) (*SessionRecord, error)

	// Save replaces the saved session atomically.
	Save(ctx context.Context, rec SessionRecord) error

	// Clear removes the saved session.
	Clear(ctx context.Context) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides access to the LLM request log.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one event by id, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}

// ActivityKind names a journaled learner or caregiver action.
type ActivityKind string

const (
	ActivitySubmit       ActivityKind = "submit"
	ActivityFollowup     ActivityKind = "followup"
	ActivityFlag         ActivityKind = "flag"
	ActivityOverride     ActivityKind = "override"
	ActivityRepeatable   ActivityKind = "repeatable"
	ActivityUnrepeatable ActivityKind = "unrepeatable"
	ActivityLogin        ActivityKind = "login"
	ActivityImpersonate  ActivityKind = "impersonate"
)

// ActivityEventData is one journal entry. Correct is set only for kinds
// that carry a correctness outcome.
type ActivityEventData struct {
	VisitID     string
	UserID      int
	NarrativeID string
	ResponseID  int
	Kind        ActivityKind
	Correct     *bool
	Detail      string
}

// ActivityRecord is a stored journal entry.
type ActivityRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	ActivityEventData
}

// ActivityCount is the number of journal entries of one kind.
type ActivityCount struct {
	Kind  ActivityKind
	Count int
}

// ActivityRepo is the local activity journal. It is informational only; the
// backend stays authoritative for every learning decision.
type ActivityRepo interface {
	Append(ctx context.Context, data ActivityEventData) error

	// Query returns entries newest first. userID 0 matches every user.
	Query(ctx context.Context, userID int, opts QueryOpts) ([]ActivityRecord, error)

	// CountByKind tallies entries for a user (0 for every user).
	CountByKind(ctx context.Context, userID int) ([]ActivityCount, error)
}
