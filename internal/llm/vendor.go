package llm

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/abhisek/feelio/internal/llm"

// reply is a vendor answer before structured-output checks.
type reply struct {
	text  string
	usage Usage
	model string

	// truncated means the vendor stopped at the token limit.
	truncated bool
}

// vendor is one hosted model API. send translates the request, makes a
// single call and classifies failures with classify.
type vendor interface {
	name() string
	model() string
	send(ctx context.Context, req Request) (reply, error)
}

// hosted turns a vendor into a Provider.
type hosted struct {
	v vendor
}

func (h hosted) ModelID() string { return h.v.model() }

func (h hosted) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.vendor", h.v.name()),
			attribute.String("llm.model", h.v.model()),
			attribute.String("llm.purpose", PurposeFrom(ctx)),
			attribute.Bool("llm.structured", req.Schema != nil),
			attribute.Int("llm.max_tokens", req.MaxTokens),
		))
	defer span.End()

	r, err := h.v.send(ctx, req)
	if err == nil {
		span.SetAttributes(
			attribute.String("llm.response_model", r.model),
			attribute.Int("llm.input_tokens", r.usage.InputTokens),
			attribute.Int("llm.output_tokens", r.usage.OutputTokens),
			attribute.Bool("llm.truncated", r.truncated),
		)
		stop := "end"
		if r.truncated {
			stop = "max_tokens"
		}
		var resp *Response
		if resp, err = finish(req, r.text, r.usage, r.model, stop); err == nil {
			return resp, nil
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

// classify maps an HTTP status from a vendor SDK error to the package's
// error types. Status 0 means the request never got an answer.
func classify(err error, status int, header http.Header) error {
	switch {
	case status == http.StatusTooManyRequests:
		rl := &ErrRateLimit{Err: err}
		if header != nil {
			rl.RetryAfter = parseRetryAfter(header)
		}
		return rl
	case status == http.StatusBadRequest, status == http.StatusUnauthorized,
		status == http.StatusForbidden, status == http.StatusNotFound:
		return &ErrRejected{Status: status, Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// convert maps conversation turns onto a vendor's message type.
func convert[T any](msgs []Message, user, assistant func(string) T) []T {
	out := make([]T, len(msgs))
	for i, m := range msgs {
		if m.Role == RoleAssistant {
			out[i] = assistant(m.Content)
		} else {
			out[i] = user(m.Content)
		}
	}
	return out
}

// resolveModel maps a friendly model name to a vendor model ID. Unknown
// names pass through so direct IDs work.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
