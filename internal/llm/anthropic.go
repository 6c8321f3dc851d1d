package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var anthropicModels = map[string]string{
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// The Messages API has no implicit output limit.
const anthropicDefaultMaxTokens = 1024

// AnthropicProvider talks to the Anthropic Messages API.
type AnthropicProvider struct {
	hosted
}

// NewAnthropicProvider creates a provider for cfg. extra options are
// appended after the defaults, so tests can override the base URL.
func NewAnthropicProvider(cfg AnthropicConfig, extra ...option.RequestOption) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0), // RetryProvider owns retries
	}
	client := anthropic.NewClient(append(opts, extra...)...)
	return &AnthropicProvider{hosted{&messagesVendor{
		client: client,
		id:     resolveModel(cfg.Model, anthropicModels),
	}}}, nil
}

type messagesVendor struct {
	client anthropic.Client
	id     string
}

func (m *messagesVendor) name() string  { return "anthropic" }
func (m *messagesVendor) model() string { return m.id }

func (m *messagesVendor) send(ctx context.Context, req Request) (reply, error) {
	limit := req.MaxTokens
	if limit <= 0 {
		limit = anthropicDefaultMaxTokens
	}
	text := func(s string) anthropic.ContentBlockParamUnion { return anthropic.NewTextBlock(s) }

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.id),
		MaxTokens: int64(limit),
		Messages: convert(req.Messages,
			func(s string) anthropic.MessageParam { return anthropic.NewUserMessage(text(s)) },
			func(s string) anthropic.MessageParam { return anthropic.NewAssistantMessage(text(s)) }),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{Schema: req.Schema.Definition},
		}
	}

	msg, err := m.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if !errors.As(err, &apiErr) {
			return reply{}, classify(err, 0, nil)
		}
		var header http.Header
		if apiErr.Response != nil {
			header = apiErr.Response.Header
		}
		return reply{}, classify(err, apiErr.StatusCode, header)
	}

	var b strings.Builder
	blocks := 0
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
			blocks++
		}
	}
	if blocks == 0 {
		return reply{}, &ErrInvalidResponse{Err: errors.New("anthropic reply has no text block")}
	}

	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return reply{
		text:      b.String(),
		usage:     Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out},
		model:     string(msg.Model),
		truncated: msg.StopReason == anthropic.StopReasonMaxTokens,
	}, nil
}
