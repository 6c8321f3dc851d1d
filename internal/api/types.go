package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Segment codes on the wire.
const (
	SegmentYoung = 1
	SegmentOld   = 2
)

// Role values on the wire.
const (
	RoleKid       = "kid"
	RoleCaregiver = "pendamping"
)

// Timestamp accepts the backend's ISO-8601 strings, which usually lack a
// zone; those are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// NarrativeID is a story identifier. The backend stores short strings but
// numeric ids are accepted too.
type NarrativeID string

func (id *NarrativeID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = NarrativeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("narrative id: %w", err)
	}
	*id = NarrativeID(n.String())
	return nil
}

// LoginResult is the /login reply.
type LoginResult struct {
	UserID  int    `json:"user_id"`
	Name    string `json:"name"`
	Segment int    `json:"segment"`
	Role    string `json:"role"`
}

// SignupRequest creates a kid or caregiver account. ParentID links a kid to
// its caregiver.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Segment  int    `json:"segment"`
	Role     string `json:"role"`
	ParentID *int   `json:"parent_id,omitempty"`
}

// Child is an account listed on a caregiver's dashboard.
type Child struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Segment int    `json:"segment"`
}

// Narrative is a catalog story.
type Narrative struct {
	ID               NarrativeID `json:"id"`
	Title            string      `json:"title"`
	Text             string      `json:"text"`
	ImagePath        string      `json:"image_path"`
	ExpectedEmotions []string    `json:"expectedEmotions"`
	Segment          int         `json:"segment"`
}

// NarrativeRef is the story summary embedded in a response record.
type NarrativeRef struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Response is one stored answer.
type Response struct {
	ID               int          `json:"id"`
	NarrativeID      NarrativeID  `json:"narrative_id"`
	Narrative        NarrativeRef `json:"narrative"`
	UserAnswer       string       `json:"user_answer"`
	PredictedEmotion []string     `json:"predicted_emotion"`
	ExpectedEmotions []string     `json:"expected_emotions"`
	NarrativeText    string       `json:"narrative_text"`
	IsCorrect        bool         `json:"is_correct"`
	Feedback         string       `json:"feedback"`
	Score            int          `json:"score"`
	Repeatable       bool         `json:"repeatable"`
	Flagged          bool         `json:"flagged"`
	CreatedAt        Timestamp    `json:"created_at"`
}

// NewResponse is the body of POST /responses.
type NewResponse struct {
	UserID           int         `json:"user_id"`
	NarrativeID      NarrativeID `json:"narrative_id"`
	UserAnswer       string      `json:"user_answer"`
	PredictedEmotion []string    `json:"predicted_emotion"`
	IsCorrect        bool        `json:"is_correct"`
	Score            int         `json:"score"`
	Feedback         string      `json:"feedback"`
}

// Badge is an achievement definition.
type Badge struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageSrc    string `json:"imageSrc"`
	Points      int    `json:"points"`
}

// Award is a badge earned by a user.
type Award struct {
	ID         int       `json:"id"`
	UserID     int       `json:"userId"`
	Badge      Badge     `json:"badge"`
	Points     int       `json:"points"`
	DateEarned Timestamp `json:"dateEarned"`
}

// Summary is the dashboard score line.
type Summary struct {
	TotalScore     int `json:"total_score"`
	TotalResponses int `json:"total_responses"`
}

// EmotionStat counts answers whose prediction contained Emotion.
type EmotionStat struct {
	Emotion string `json:"emotion"`
	Total   int    `json:"total"`
	Correct int    `json:"correct"`
}

// Stats is the statistics screen aggregate.
type Stats struct {
	TotalAttempted int           `json:"total_attempted"`
	TotalCorrect   int           `json:"total_correct"`
	PerEmotion     []EmotionStat `json:"per_emotion"`
	TotalScore     int           `json:"total_score"`
}

// FeedbackRequest asks the backend for mentor feedback. Followup marks the
// second, coping-strategy round.
type FeedbackRequest struct {
	Answer           string   `json:"answer"`
	ExpectedEmotions []string `json:"expected_emotions"`
	IsCorrect        bool     `json:"is_correct"`
	Narrative        string   `json:"narrative"`
	Segment          string   `json:"segment,omitempty"`
	Followup         bool     `json:"followup,omitempty"`
}

func userPath(userID int, rest string) string {
	return "/user/" + strconv.Itoa(userID) + rest
}

func responsePath(responseID int, rest string) string {
	return "/responses/" + strconv.Itoa(responseID) + rest
}
