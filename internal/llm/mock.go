package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// errMockExhausted is returned once the canned queue runs dry.
var errMockExhausted = errors.New("mock provider has no responses left")

// MockResponse is a canned reply for MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Model   string
	Stop    string
	Err     error
}

// MockText is a free-text canned reply.
func MockText(s string) MockResponse {
	return MockResponse{Content: json.RawMessage(s)}
}

// MockJSON is a structured canned reply. It panics if v cannot be encoded.
func MockJSON(v any) MockResponse {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return MockResponse{Content: b}
}

// MockProvider is a deterministic Provider for tests and offline runs. It
// replays canned responses in FIFO order and records every request.
// Structured replies are validated like a real vendor's.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	if len(m.responses) == 0 {
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{Err: errMockExhausted}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	m.mu.Unlock()

	if resp.Err != nil {
		return nil, resp.Err
	}

	model := resp.Model
	if model == "" {
		model = "mock"
	}
	stop := resp.Stop
	if stop == "" {
		stop = "end"
	}
	return finish(req, string(resp.Content), resp.Usage, model, stop)
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// Calls returns a copy of the recorded requests.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
