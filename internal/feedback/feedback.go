// Package feedback produces the mentor text shown after a child answers.
// Text comes either from the backend's /gpt-feedback endpoint or straight
// from a language model.
package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/llm"
	"github.com/abhisek/feelio/internal/logger"
)

// Acknowledgement replaces feedback that is empty or was not requested.
const Acknowledgement = "Terima kasih atas jawabanmu!"

// FollowupPrompt is the coping-strategy question asked of older children.
const FollowupPrompt = "Apa yang bisa kamu lakukan di situasi tersebut?"

// Older-segment label; initial feedback is never generated for it.
const segmentOld = "10-12"

// Request describes the answer to comment on.
type Request struct {
	Narrative        string
	Answer           string
	ExpectedEmotions []string
	Correct          bool

	// Segment is the age band label, "7-9" or "10-12".
	Segment string

	// Followup marks the coping-strategy round.
	Followup bool
}

// skipped reports whether the backend would decline this request.
func (r Request) skipped() bool {
	return r.Segment == segmentOld && !r.Followup
}

// Source generates feedback text. An empty string means none was produced;
// callers substitute Acknowledgement.
type Source interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// OrAcknowledge returns text, or Acknowledgement when text is blank.
func OrAcknowledge(text string) string {
	if strings.TrimSpace(text) == "" {
		return Acknowledgement
	}
	return strings.TrimSpace(text)
}

// Backend is the slice of the API client BackendSource needs.
type Backend interface {
	Feedback(ctx context.Context, req api.FeedbackRequest) (string, error)
}

// BackendSource asks the backend to generate feedback.
type BackendSource struct {
	backend Backend
}

func NewBackendSource(b Backend) *BackendSource {
	return &BackendSource{backend: b}
}

func (s *BackendSource) Generate(ctx context.Context, req Request) (string, error) {
	text, err := s.backend.Feedback(ctx, api.FeedbackRequest{
		Answer:           req.Answer,
		ExpectedEmotions: req.ExpectedEmotions,
		IsCorrect:        req.Correct,
		Narrative:        req.Narrative,
		Segment:          req.Segment,
		Followup:         req.Followup,
	})
	if err != nil {
		return "", fmt.Errorf("backend feedback: %w", err)
	}
	return text, nil
}

// Config tunes the model call.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig matches the backend's own generation settings.
func DefaultConfig() Config {
	return Config{MaxTokens: 200, Temperature: 0.7}
}

// LLMSource generates feedback with a language model, bypassing the
// backend. It applies the backend's rule that older children get no
// feedback before the follow-up round.
type LLMSource struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

func NewLLMSource(provider llm.Provider, cfg Config, log *logger.Logger) *LLMSource {
	if log == nil {
		log = logger.Nop()
	}
	return &LLMSource{provider: provider, cfg: cfg, log: log}
}

type mentorOutput struct {
	Feedback string `json:"feedback"`
}

func (s *LLMSource) Generate(ctx context.Context, req Request) (string, error) {
	if req.skipped() {
		return "", nil
	}

	purpose := llm.PurposeFeedback
	if req.Followup {
		purpose = llm.PurposeFollowup
	}
	ctx = llm.WithPurpose(ctx, purpose)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserMessage(buildUserMessage(req)),
		Schema:      MentorSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("mentor feedback: %w", err)
	}

	var out mentorOutput
	if err := resp.Decode(&out); err != nil {
		return "", fmt.Errorf("parse mentor feedback: %w", err)
	}
	s.log.Debug("mentor feedback generated", "purpose", purpose, "model", resp.Model, "chars", len(out.Feedback))
	return strings.TrimSpace(out.Feedback), nil
}
