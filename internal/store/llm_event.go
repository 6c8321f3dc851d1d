package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on the llm_request_events table.
type eventRepo struct {
	drv *entsql.Driver
}

var llmColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

type llmRow struct {
	ID           int    `sql:"id"`
	Sequence     int64  `sql:"sequence"`
	Timestamp    int64  `sql:"timestamp"`
	Provider     string `sql:"provider"`
	Model        string `sql:"model"`
	Purpose      string `sql:"purpose"`
	InputTokens  int    `sql:"input_tokens"`
	OutputTokens int    `sql:"output_tokens"`
	LatencyMs    int64  `sql:"latency_ms"`
	Success      bool   `sql:"success"`
	ErrorMessage string `sql:"error_message"`
	RequestBody  string `sql:"request_body"`
	ResponseBody string `sql:"response_body"`
}

func (r llmRow) record() LLMRequestEventRecord {
	return LLMRequestEventRecord{
		ID:        r.ID,
		Sequence:  r.Sequence,
		Timestamp: fromMillis(r.Timestamp),
		LLMRequestEventData: LLMRequestEventData{
			Provider:     r.Provider,
			Model:        r.Model,
			Purpose:      r.Purpose,
			InputTokens:  r.InputTokens,
			OutputTokens: r.OutputTokens,
			LatencyMs:    r.LatencyMs,
			Success:      r.Success,
			ErrorMessage: r.ErrorMessage,
			RequestBody:  r.RequestBody,
			ResponseBody: r.ResponseBody,
		},
	}
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	ins := builder().Insert(tableLLMRequests).
		Set("provider", data.Provider).
		Set("model", data.Model).
		Set("purpose", data.Purpose).
		Set("input_tokens", data.InputTokens).
		Set("output_tokens", data.OutputTokens).
		Set("latency_ms", data.LatencyMs).
		Set("success", data.Success).
		Set("error_message", data.ErrorMessage).
		Set("request_body", data.RequestBody).
		Set("response_body", data.ResponseBody)
	if _, err := insertEvent(ctx, r.drv, ins); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	b := builder()
	sel := b.Select(llmColumns...).
		From(b.Table(tableLLMRequests)).
		OrderBy(entsql.Desc("sequence"))
	applyQueryOpts(sel, opts)

	var rows []llmRow
	if err := scanAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}

	records := make([]LLMRequestEventRecord, len(rows))
	for i, row := range rows {
		records[i] = row.record()
	}
	return records, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error) {
	b := builder()
	sel := b.Select(llmColumns...).
		From(b.Table(tableLLMRequests)).
		Where(entsql.EQ("id", id)).
		Limit(1)

	var rows []llmRow
	if err := scanAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rec := rows[0].record()
	return &rec, nil
}

type purposeRow struct {
	Purpose      string  `sql:"purpose"`
	Calls        int     `sql:"calls"`
	InputTokens  int     `sql:"input_tokens"`
	OutputTokens int     `sql:"output_tokens"`
	AvgLatencyMs float64 `sql:"avg_latency_ms"`
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error) {
	b := builder()
	sel := b.Select(
		"purpose",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As(entsql.Avg("latency_ms"), "avg_latency_ms"),
	).
		From(b.Table(tableLLMRequests)).
		GroupBy("purpose").
		OrderBy(entsql.Desc("calls"), "purpose")

	var rows []purposeRow
	if err := scanAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query LLM usage by purpose: %w", err)
	}

	stats := make([]LLMUsageStats, len(rows))
	for i, row := range rows {
		stats[i] = LLMUsageStats{
			Purpose:      row.Purpose,
			Calls:        row.Calls,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
			AvgLatencyMs: int64(row.AvgLatencyMs),
		}
	}
	return stats, nil
}

type modelRow struct {
	Model        string `sql:"model"`
	Calls        int    `sql:"calls"`
	InputTokens  int    `sql:"input_tokens"`
	OutputTokens int    `sql:"output_tokens"`
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	b := builder()
	sel := b.Select(
		"model",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
	).
		From(b.Table(tableLLMRequests)).
		GroupBy("model").
		OrderBy("model")

	var rows []modelRow
	if err := scanAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query LLM usage by model: %w", err)
	}

	usage := make([]LLMModelUsage, len(rows))
	for i, row := range rows {
		usage[i] = LLMModelUsage(row)
	}
	return usage, nil
}
