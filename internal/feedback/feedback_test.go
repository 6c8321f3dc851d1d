package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/llm"
)

type fakeBackend struct {
	got  api.FeedbackRequest
	text string
	err  error
}

func (f *fakeBackend) Feedback(_ context.Context, req api.FeedbackRequest) (string, error) {
	f.got = req
	return f.text, f.err
}

func TestBackendSource_PassesRequestThrough(t *testing.T) {
	b := &fakeBackend{text: "Kamu hebat!"}
	src := NewBackendSource(b)

	text, err := src.Generate(context.Background(), Request{
		Narrative:        "Rani kehilangan boneka.",
		Answer:           "sedih",
		ExpectedEmotions: []string{"sad"},
		Correct:          true,
		Segment:          "10-12",
		Followup:         true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "Kamu hebat!" {
		t.Errorf("text = %q", text)
	}
	if !b.got.Followup || b.got.Segment != "10-12" || !b.got.IsCorrect || b.got.Narrative != "Rani kehilangan boneka." {
		t.Errorf("request = %+v", b.got)
	}
}

func TestBackendSource_WrapsErrors(t *testing.T) {
	src := NewBackendSource(&fakeBackend{err: api.ErrTransport})
	_, err := src.Generate(context.Background(), Request{})
	if !errors.Is(err, api.ErrTransport) {
		t.Fatalf("expected ErrTransport in chain, got %v", err)
	}
}

func TestLLMSource_Generates(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockJSON(map[string]string{"feedback": "  Bagus sekali, kamu tahu Rani sedih.  "}))
	src := NewLLMSource(mock, DefaultConfig(), nil)

	text, err := src.Generate(context.Background(), Request{
		Narrative:        "Rani kehilangan boneka.",
		Answer:           "dia sedih",
		ExpectedEmotions: []string{"sad"},
		Correct:          true,
		Segment:          "7-9",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "Bagus sekali, kamu tahu Rani sedih." {
		t.Errorf("text = %q", text)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	req := calls[0]
	if req.System != systemPrompt {
		t.Errorf("system = %q", req.System)
	}
	if req.Schema == nil || req.Schema.Name != "mentor-feedback" {
		t.Errorf("schema = %+v", req.Schema)
	}
	if req.MaxTokens != 200 || req.Temperature != 0.7 {
		t.Errorf("max tokens = %d, temperature = %v", req.MaxTokens, req.Temperature)
	}
	msg := req.Messages[0].Content
	for _, want := range []string{"Rani kehilangan boneka.", `"dia sedih"`, "dianggap benar", "sad."} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q:\n%s", want, msg)
		}
	}
}

func TestLLMSource_OlderSegmentSkipsFirstRound(t *testing.T) {
	mock := llm.NewMockProvider()
	src := NewLLMSource(mock, DefaultConfig(), nil)

	text, err := src.Generate(context.Background(), Request{Segment: "10-12", Answer: "marah"})
	if err != nil || text != "" {
		t.Fatalf("Generate = %q, %v", text, err)
	}
	if mock.CallCount() != 0 {
		t.Fatal("model must not be called for the first older-segment round")
	}
}

func TestLLMSource_FollowupPrompt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockJSON(map[string]string{"feedback": "Ide bagus!"}))
	src := NewLLMSource(mock, DefaultConfig(), nil)

	if _, err := src.Generate(context.Background(), Request{
		Segment:  "10-12",
		Followup: true,
		Answer:   "aku akan menghiburnya",
		Correct:  false,
	}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	msg := mock.Calls()[0].Messages[0].Content
	if !strings.Contains(msg, FollowupPrompt) || !strings.Contains(msg, "belum tepat") {
		t.Errorf("follow-up prompt:\n%s", msg)
	}
}

func TestLLMSource_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	src := NewLLMSource(mock, DefaultConfig(), nil)

	_, err := src.Generate(context.Background(), Request{Segment: "7-9"})
	var rl *llm.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %v", err)
	}
}

func TestOrAcknowledge(t *testing.T) {
	if got := OrAcknowledge("  "); got != Acknowledgement {
		t.Errorf("blank -> %q", got)
	}
	if got := OrAcknowledge(" Hebat! "); got != "Hebat!" {
		t.Errorf("text -> %q", got)
	}
}
