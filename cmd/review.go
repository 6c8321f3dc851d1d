package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/emotion"
	"github.com/abhisek/feelio/internal/moderation"
)

// passwordAttempts bounds the prompt loop of the correctness overrides.
const passwordAttempts = 3

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review and correct a child's answers",
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the latest answer to every story",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, svc, err := openReview(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		tiles, err := svc.Tiles(cmd.Context())
		if err != nil {
			return backendErr(err)
		}
		printTiles(cmd, tiles)
		return nil
	},
}

func overrideCmd(use, short string, kind moderation.ActionKind) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <response-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			responseID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid response ID %q: %w", args[0], err)
			}
			e, svc, err := openReview(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			gate := moderation.NewGate(svc)
			gate.Request(moderation.Action{Kind: kind, ResponseID: responseID})
			defer gate.Cancel()

			prompt := newPrompter(cmd)
			for attempt := 1; ; attempt++ {
				password, err := prompt.Password("Child's password: ")
				if err != nil {
					return err
				}
				tiles, err := gate.Confirm(cmd.Context(), password)
				switch {
				case errors.Is(err, moderation.ErrWrongPassword) && attempt < passwordAttempts:
					fmt.Fprintln(cmd.ErrOrStderr(), "Wrong password, try again.")
					continue
				case err != nil:
					return backendErr(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Response %d updated.\n", responseID)
				printTiles(cmd, tiles)
				return nil
			}
		},
	}
}

func repeatableCmd(use, short string, repeatable bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <response-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			responseID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid response ID %q: %w", args[0], err)
			}
			e, svc, err := openReview(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			tiles, err := svc.SetRepeatable(cmd.Context(), responseID, repeatable)
			if err != nil {
				return backendErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Response %d updated.\n", responseID)
			printTiles(cmd, tiles)
			return nil
		},
	}
}

func openReview(cmd *cobra.Command) (*env, *moderation.Service, error) {
	e, err := openEnv(cmd)
	if err != nil {
		return nil, nil, err
	}
	kid, err := e.targetChild(cmd)
	if err != nil {
		e.Close()
		return nil, nil, err
	}
	svc := moderation.New(e.client, kid.ID,
		moderation.WithJournal(e.store.ActivityRepo()),
		moderation.WithLogger(e.log),
	)
	return e, svc, nil
}

func printTiles(cmd *cobra.Command, tiles []api.Response) {
	out := cmd.OutOrStdout()
	if len(tiles) == 0 {
		fmt.Fprintln(out, "No answers yet.")
		return
	}
	t := newTable(false, "ID", "Story", "", "Answer", "Expected", "Flags")
	for _, r := range tiles {
		var flags []string
		if r.Flagged {
			flags = append(flags, "flagged")
		}
		if r.Repeatable {
			flags = append(flags, "repeatable")
		}
		expected := emotion.DisplayNames(emotion.NormalizeAll(r.ExpectedEmotions), ", ")
		t.Row(strconv.Itoa(r.ID), string(r.NarrativeID), mark(r.IsCorrect),
			truncate(r.UserAnswer, 32), expected, strings.Join(flags, ", "))
	}
	printTable(out, t)
}

func init() {
	reviewCmd.PersistentFlags().Int("child", 0, "Child ID (caregivers only)")

	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(overrideCmd("correct", "Count an answer as correct", moderation.MarkCorrect))
	reviewCmd.AddCommand(overrideCmd("incorrect", "Count an answer as incorrect", moderation.MarkIncorrect))
	reviewCmd.AddCommand(repeatableCmd("repeatable", "Offer the story again", true))
	reviewCmd.AddCommand(repeatableCmd("unrepeatable", "Stop offering the story again", false))
}
