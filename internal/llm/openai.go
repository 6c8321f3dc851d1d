package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
	"gpt-4.1":     "gpt-4.1",
}

// OpenAIProvider talks to the Chat Completions API or anything that speaks
// it, such as OpenRouter.
type OpenAIProvider struct {
	hosted
}

// NewOpenAIProvider creates a provider for cfg. BaseURL redirects it to an
// OpenAI-compatible endpoint.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	v, err := newChatVendor("openai", cfg.APIKey, resolveModel(cfg.Model, openaiModels), cfg.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	return &OpenAIProvider{hosted{v}}, nil
}

// chatVendor is the Chat Completions wire format.
type chatVendor struct {
	label  string
	client *openai.Client
	id     string
}

func newChatVendor(label, apiKey, model, baseURL string, hc *http.Client) (*chatVendor, error) {
	if model == "" {
		return nil, fmt.Errorf("%s: model is required", label)
	}
	cc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cc.BaseURL = baseURL
	}
	if hc != nil {
		cc.HTTPClient = hc
	}
	return &chatVendor{label: label, client: openai.NewClientWithConfig(cc), id: model}, nil
}

func (c *chatVendor) name() string  { return c.label }
func (c *chatVendor) model() string { return c.id }

func (c *chatVendor) send(ctx context.Context, req Request) (reply, error) {
	msgs := convert(req.Messages,
		func(s string) openai.ChatCompletionMessage {
			return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: s}
		},
		func(s string) openai.ChatCompletionMessage {
			return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: s}
		})
	if req.System != "" {
		system := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System}
		msgs = append([]openai.ChatCompletionMessage{system}, msgs...)
	}

	body := openai.ChatCompletionRequest{
		Model:               c.id,
		Messages:            msgs,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if s := req.Schema; s != nil {
		def, err := json.Marshal(s.Definition)
		if err != nil {
			return reply{}, fmt.Errorf("marshal schema %q: %w", s.Name, err)
		}
		body.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        s.Name,
				Description: s.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, body)
	if err != nil {
		return reply{}, chatError(err)
	}
	if len(resp.Choices) == 0 {
		return reply{}, &ErrInvalidResponse{Err: fmt.Errorf("%s returned no choices", c.label)}
	}
	first := resp.Choices[0]
	return reply{
		text: first.Message.Content,
		usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		model:     resp.Model,
		truncated: first.FinishReason == openai.FinishReasonLength,
	}, nil
}

// chatError pulls the status out of either error type the SDK returns.
func chatError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classify(err, apiErr.HTTPStatusCode, nil)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classify(err, reqErr.HTTPStatusCode, nil)
	}
	return classify(err, 0, nil)
}
