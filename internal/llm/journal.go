package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/feelio/internal/logger"
	"github.com/abhisek/feelio/internal/store"
)

// JournalProvider stores every call, prompt and reply included, in the
// local event store so `feelio llm` can show what the mentor was asked.
type JournalProvider struct {
	inner  Provider
	vendor string
	events store.EventRepo
	log    *logger.Logger
}

// WithJournal wraps p. vendor is the configured provider name stored with
// each entry; the model comes from the reply when it names one.
func WithJournal(p Provider, vendor string, events store.EventRepo, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &JournalProvider{inner: p, vendor: vendor, events: events, log: log}
}

func (j *JournalProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)

	began := time.Now()
	resp, err := j.inner.Generate(ctx, req)
	entry := store.LLMRequestEventData{
		Provider:    j.vendor,
		Model:       j.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(began).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		entry.InputTokens, entry.OutputTokens = resp.Usage.InputTokens, resp.Usage.OutputTokens
		entry.ResponseBody = string(resp.Content)
		if resp.Model != "" {
			entry.Model = resp.Model
		}
	}

	log := j.log.With("purpose", purpose, "model", entry.Model)
	if err != nil {
		entry.ErrorMessage = err.Error()
		log.Warn("llm request failed", "error", err)
	} else {
		fields := []any{"input_tokens", entry.InputTokens, "output_tokens", entry.OutputTokens, "latency_ms", entry.LatencyMs}
		if c := LookupCost(entry.Model); c != nil {
			fields = append(fields, "cost_usd", c.Cost(entry.InputTokens, entry.OutputTokens))
		}
		log.Debug("llm request", fields...)
	}

	// A journal write failure never masks the call's own result.
	if werr := j.events.AppendLLMRequest(ctx, entry); werr != nil {
		j.log.Warn("journal llm request", "error", werr)
	}
	return resp, err
}

func (j *JournalProvider) ModelID() string {
	return j.inner.ModelID()
}

// transcript renders req as labelled blocks:
//
//	[system]
//	...
//
//	[user]
//	...
//
// followed by the schema name and definition for structured requests.
func transcript(req Request) string {
	var b strings.Builder
	block := func(label, body string) {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", label, body)
	}
	if req.System != "" {
		block("system", req.System)
	}
	for _, m := range req.Messages {
		block(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
