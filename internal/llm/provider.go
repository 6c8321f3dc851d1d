// Package llm talks to hosted language models for mentor feedback. Each
// vendor sits behind Provider; retry and request journaling are layered on
// as decorators.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one completion. When the request carries a Schema the
// returned Content is JSON that has been validated against it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider sends requests to.
	ModelID() string
}

// Request is one completion call.
type Request struct {
	System   string
	Messages []Message

	// Schema asks for structured JSON output. Nil means free text, which
	// is returned as-is in Response.Content.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the vendor default.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage is shorthand for a single user turn.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Schema is a named JSON Schema for structured output.
type Schema struct {
	// Name is kebab-case, e.g. "mentor-feedback". It also keys the
	// compiled schema cache.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a completion result.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is "end" or "max_tokens".
	StopReason string
}

// Decode unmarshals structured Content into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Content, v); err != nil {
		return &ErrInvalidResponse{Content: r.Content, Err: err}
	}
	return nil
}

// Usage is token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
