package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/feelio/internal/store"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show recent local activity",
	Long: "Show the local activity journal: answers, follow-ups, flags, " +
		"overrides and logins recorded on this machine.",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		userID, _ := cmd.Flags().GetInt("user")
		kind, _ := cmd.Flags().GetString("kind")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.ActivityRepo()
		records, err := repo.Query(ctx, userID, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query journal: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No activity recorded.")
			return nil
		}

		t := newTable(false, "Seq", "Time", "User", "Kind", "Story", "Answer", "Detail")
		for _, r := range records {
			if kind != "" && string(r.Kind) != kind {
				continue
			}
			detail := r.Detail
			if r.Correct != nil {
				detail = strings.TrimSpace(mark(*r.Correct) + " " + detail)
			}
			resp := ""
			if r.ResponseID != 0 {
				resp = strconv.Itoa(r.ResponseID)
			}
			t.Row(
				strconv.FormatInt(r.Sequence, 10),
				r.Timestamp.Local().Format("01-02 15:04:05"),
				strconv.Itoa(r.UserID),
				string(r.Kind),
				r.NarrativeID,
				resp,
				detail,
			)
		}
		printTable(out, t)

		counts, err := repo.CountByKind(ctx, userID)
		if err != nil {
			return fmt.Errorf("count journal: %w", err)
		}
		parts := make([]string, len(counts))
		for i, c := range counts {
			parts[i] = fmt.Sprintf("%s=%d", c.Kind, c.Count)
		}
		fmt.Fprintf(out, "Totals: %s\n", strings.Join(parts, "  "))
		return nil
	},
}

func init() {
	journalCmd.Flags().Int("limit", 20, "Maximum entries to show")
	journalCmd.Flags().Int("user", 0, "Only entries for this user ID")
	journalCmd.Flags().String("kind", "", "Only entries of this kind (submit, followup, flag, override, ...)")
}
