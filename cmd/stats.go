package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/feelio/internal/auth"
	"github.com/abhisek/feelio/internal/emotion"
	"github.com/abhisek/feelio/internal/moderation"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	Long: "Show statistics for the active child. A caregiver who is not acting " +
		"as a child can pick one with --child.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		kid, err := e.targetChild(cmd)
		if err != nil {
			return err
		}
		svc := moderation.New(e.client, kid.ID, moderation.WithLogger(e.log))
		ov, err := svc.Overview(cmd.Context())
		if err != nil {
			return backendErr(err)
		}

		out := cmd.OutOrStdout()
		st := ov.Stats
		fmt.Fprintf(out, "Statistics for %s\n", kid.Name)
		fmt.Fprintln(out, strings.Repeat("─", 48))
		fmt.Fprintf(out, "Answered:  %d\n", st.TotalAttempted)
		fmt.Fprintf(out, "Correct:   %d (%d%%)\n", st.TotalCorrect, percent(st.TotalCorrect, st.TotalAttempted))
		fmt.Fprintf(out, "Score:     %d\n", st.TotalScore)

		if len(st.PerEmotion) > 0 {
			t := newTable(false, "Emotion", "Total", "Correct", "%")
			for _, es := range st.PerEmotion {
				t.Row(emotion.Normalize(es.Emotion).DisplayName(), strconv.Itoa(es.Total),
					strconv.Itoa(es.Correct), strconv.Itoa(percent(es.Correct, es.Total))+"%")
			}
			printTable(out, t)
		}

		if len(ov.Recent) > 0 {
			t := newTable(false, "", "Recent answers", "When")
			for _, r := range ov.Recent {
				t.Row(mark(r.IsCorrect), truncate(r.UserAnswer, 40), r.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			printTable(out, t)
		}
		return nil
	},
}

// targetChild resolves whose answers a command works on: the active kid, or
// the caregiver's child named by --child.
func (e *env) targetChild(cmd *cobra.Command) (auth.Identity, error) {
	id, err := e.current()
	if err != nil {
		return id, err
	}
	childID, _ := cmd.Flags().GetInt("child")
	if id.IsKid() {
		if childID != 0 && childID != id.ID {
			return id, fmt.Errorf("--child needs a caregiver session; currently %s", id.Name)
		}
		return id, nil
	}
	if childID == 0 {
		return id, fmt.Errorf("pass --child or run `feelio impersonate <child-id>` first")
	}
	c, err := findChild(cmd.Context(), e.client, id.ID, childID)
	if err != nil {
		return id, err
	}
	return auth.ChildIdentity(c), nil
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return n * 100 / total
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func init() {
	statsCmd.Flags().Int("child", 0, "Child ID (caregivers only)")
}
