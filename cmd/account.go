package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/feelio/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		password, err := newPrompter(cmd).Password("Password: ")
		if err != nil {
			return err
		}
		id, err := e.auth.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login: %w", backendErr(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s).\n", id.Name, id.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		id, err := e.current()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:      %d\n", id.ID)
		fmt.Fprintf(out, "Name:    %s\n", id.Name)
		fmt.Fprintf(out, "Email:   %s\n", id.Email)
		fmt.Fprintf(out, "Role:    %s\n", id.Role)
		if id.IsKid() {
			fmt.Fprintf(out, "Age:     %s\n", id.Segment)
		}
		if cg, ok := e.auth.Impersonator(); ok {
			fmt.Fprintf(out, "Acting for caregiver %s (%d).\n", cg.Name, cg.ID)
		}
		return nil
	},
}

// parseSegment accepts the wire codes and the age labels.
func parseSegment(s string) (auth.Segment, error) {
	switch s {
	case "1", auth.SegmentYoung.Label():
		return auth.SegmentYoung, nil
	case "2", auth.SegmentOld.Label():
		return auth.SegmentOld, nil
	}
	return 0, fmt.Errorf("unknown age group %q (use %s or %s)", s,
		auth.SegmentYoung.Label(), auth.SegmentOld.Label())
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	_ = loginCmd.MarkFlagRequired("email")
}
