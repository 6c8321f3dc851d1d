package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/feelio/internal/llm"
	"github.com/abhisek/feelio/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM feedback requests and their cost",
	Long: "When feedback_source is \"llm\" every mentor feedback request is " +
		"recorded locally. These commands read that log.",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		t := newTable(false, "ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
		n := 0
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			n++
			t.Row(
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format("01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				mark(e.Success),
			)
		}
		if n == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No LLM requests recorded.")
			return nil
		}
		printTable(cmd.OutOrStdout(), t)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full prompt and reply of one request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		out := cmd.OutOrStdout()
		field := func(k, v string) { fmt.Fprintf(out, "%-9s %s\n", k+":", v) }
		field("ID", strconv.Itoa(e.ID))
		field("Time", e.Timestamp.Local().Format(time.DateTime))
		field("Provider", e.Provider)
		field("Model", e.Model)
		field("Purpose", e.Purpose)
		field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
		field("Latency", fmt.Sprintf("%dms", e.LatencyMs))
		field("Success", strconv.FormatBool(e.Success))
		if e.ErrorMessage != "" {
			field("Error", e.ErrorMessage)
		}
		section(cmd, "PROMPT", e.RequestBody)
		section(cmd, "REPLY", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		events := s.EventRepo()
		byPurpose, err := events.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		usage := newTable(true, "Purpose", "Calls", "Input", "Output", "Avg ms")
		var calls, in, outTok int
		for _, u := range byPurpose {
			usage.Row(u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
				strconv.Itoa(u.OutputTokens), strconv.FormatInt(u.AvgLatencyMs, 10))
			calls += u.Calls
			in += u.InputTokens
			outTok += u.OutputTokens
		}
		usage.Row("TOTAL", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(outTok), "")
		printTable(out, usage)

		byModel, err := events.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(byModel) == 0 {
			return nil
		}

		cost := newTable(true, "Model", "Calls", "Input", "Output", "Cost (USD)")
		var total float64
		var unpriced []string
		for _, mu := range byModel {
			price := "?"
			if p := llm.LookupCost(mu.Model); p != nil {
				c := p.Cost(mu.InputTokens, mu.OutputTokens)
				total += c
				price = formatCost(c)
			} else {
				unpriced = append(unpriced, mu.Model)
			}
			cost.Row(truncate(mu.Model, 32), strconv.Itoa(mu.Calls),
				strconv.Itoa(mu.InputTokens), strconv.Itoa(mu.OutputTokens), price)
		}
		label := "TOTAL"
		if len(unpriced) > 0 {
			label = "TOTAL (partial)"
		}
		cost.Row(label, "", "", "", formatCost(total))
		printTable(out, cost)

		if len(unpriced) > 0 {
			fmt.Fprintf(out, "Pricing unavailable for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

func section(cmd *cobra.Command, title, body string) {
	out := cmd.OutOrStdout()
	rule := strings.Repeat("─", 60)
	fmt.Fprintf(out, "\n%s\n%s\n%s\n", rule, title, rule)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Fprintln(out, body)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only this purpose ("+llm.PurposeFeedback+", "+llm.PurposeFollowup+")")
	llmListCmd.Flags().Duration("since", 0, "Only requests newer than this, e.g. 24h")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
