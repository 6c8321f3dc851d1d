package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/auth"
)

var childrenCmd = &cobra.Command{
	Use:   "children",
	Short: "Manage a caregiver's children",
}

var childrenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List linked children",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cg, err := e.caregiver()
		if err != nil {
			return err
		}
		children, err := e.client.Children(cmd.Context(), cg.ID)
		if err != nil {
			return fmt.Errorf("list children: %w", backendErr(err))
		}
		if len(children) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No children yet. Add one with `feelio children add`.")
			return nil
		}

		t := newTable(false, "ID", "Name", "Email", "Age")
		for _, c := range children {
			t.Row(strconv.Itoa(c.ID), c.Name, c.Email, auth.Segment(c.Segment).String())
		}
		printTable(cmd.OutOrStdout(), t)
		return nil
	},
}

var childrenAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a child account linked to the caregiver",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		age, _ := cmd.Flags().GetString("age")
		seg, err := parseSegment(age)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cg, err := e.caregiver()
		if err != nil {
			return err
		}
		password, err := newPrompter(cmd).Password("Child's password: ")
		if err != nil {
			return err
		}
		err = e.auth.Signup(cmd.Context(), auth.SignupForm{
			Name:     name,
			Email:    email,
			Password: password,
			Segment:  seg,
			Role:     auth.RoleKid,
			ParentID: cg.ID,
		})
		if err != nil {
			return fmt.Errorf("add child: %w", backendErr(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s.\n", strings.TrimSpace(name))
		return nil
	},
}

var impersonateCmd = &cobra.Command{
	Use:   "impersonate <child-id>",
	Short: "Act as one of your children",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		childID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid child ID %q: %w", args[0], err)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cg, err := e.caregiver()
		if err != nil {
			return err
		}
		child, err := findChild(cmd.Context(), e.client, cg.ID, childID)
		if err != nil {
			return err
		}
		if err := e.auth.Impersonate(cmd.Context(), auth.ChildIdentity(child)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Now acting as %s. Run `feelio return` to switch back.\n", child.Name)
		return nil
	},
}

var returnCmd = &cobra.Command{
	Use:   "return",
	Short: "Stop acting as a child",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cg, err := e.auth.ReturnToCaregiver(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Back to %s.\n", cg.Name)
		return nil
	},
}

// caregiver returns the active caregiver identity.
func (e *env) caregiver() (auth.Identity, error) {
	id, err := e.current()
	if err != nil {
		return id, err
	}
	if !id.IsCaregiver() {
		if e.auth.IsImpersonating() {
			return id, fmt.Errorf("currently acting as %s; run `feelio return` first", id.Name)
		}
		return id, auth.ErrNotCaregiver
	}
	return id, nil
}

func findChild(ctx context.Context, client *api.Client, caregiverID, childID int) (api.Child, error) {
	children, err := client.Children(ctx, caregiverID)
	if err != nil {
		return api.Child{}, fmt.Errorf("list children: %w", backendErr(err))
	}
	for _, c := range children {
		if c.ID == childID {
			return c, nil
		}
	}
	return api.Child{}, fmt.Errorf("child %d is not linked to this account", childID)
}

func init() {
	childrenAddCmd.Flags().String("name", "", "Child's name")
	childrenAddCmd.Flags().String("email", "", "Child's login email")
	childrenAddCmd.Flags().String("age", auth.SegmentYoung.Label(), "Age group: 7-9 or 10-12")
	_ = childrenAddCmd.MarkFlagRequired("name")
	_ = childrenAddCmd.MarkFlagRequired("email")

	childrenCmd.AddCommand(childrenListCmd)
	childrenCmd.AddCommand(childrenAddCmd)
}
