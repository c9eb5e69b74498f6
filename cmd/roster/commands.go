package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/auth"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/listing"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/nav"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/sessions"
	"github.com/spf13/cobra"
)

type setupFunc func(cmd *cobra.Command) (*env, error)

// userError prints the user-facing text for err while keeping it matchable.
type userError struct {
	err error
}

func (u *userError) Error() string { return auth.Message(u.err) }
func (u *userError) Unwrap() error { return u.err }

func newStartCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Open the app: show the roster when signed in, otherwise the form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			flow := auth.NewFlow(e.records, e.sessions, e.nav, e.opts)
			dest, sess, err := flow.Bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			if dest == nav.Auth {
				fmt.Fprintln(e.out, "Not signed in. Use `roster login` or `roster register`.")
				return nil
			}
			fmt.Fprintf(e.out, "Signed in as %s (%s)\n", sess.Name, sess.Identifier)
			return printListing(cmd.Context(), e)
		},
	}
}

func newLoginCmd(setup setupFunc) *cobra.Command {
	form := &auth.Form{Mode: auth.ModeLogin}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an existing identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, setup, form)
		},
	}
	cmd.Flags().StringVar(&form.Identifier, "identifier", "", "student identifier")
	cmd.Flags().StringVar(&form.Credential, "credential", "", "password")
	return cmd
}

func newRegisterCmd(setup setupFunc) *cobra.Command {
	form := &auth.Form{Mode: auth.ModeRegister}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a student record and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, setup, form)
		},
	}
	cmd.Flags().StringVar(&form.Identifier, "identifier", "", "student identifier")
	cmd.Flags().StringVar(&form.Name, "name", "", "full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "email address")
	cmd.Flags().StringVar(&form.Credential, "credential", "", "password")
	return cmd
}

func submit(cmd *cobra.Command, setup setupFunc, form *auth.Form) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := auth.NewFlow(e.records, e.sessions, e.nav, e.opts).Submit(cmd.Context(), form)
	if err != nil {
		return &userError{err: err}
	}
	fmt.Fprintf(e.out, "Welcome, %s\n", sess.Name)
	return nil
}

func newListCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			sess, _, err := e.sessions.Load(cmd.Context())
			if err != nil {
				return err
			}
			if !sessions.Active(sess) {
				return fmt.Errorf("not signed in")
			}
			return printListing(cmd.Context(), e)
		},
	}
}

func printListing(ctx context.Context, e *env) error {
	screen := listing.NewFlow(e.records, e.sessions, e.nav).NewScreen()
	screen.Mount(ctx)
	entries := screen.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(e.out, "No students.")
		return nil
	}
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IDENTIFIER\tNAME\tEMAIL")
	for _, en := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", en.Identifier, en.Name, en.Email)
	}
	return tw.Flush()
}

func newLogoutCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in student on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			return listing.NewFlow(e.records, e.sessions, e.nav).Logout(cmd.Context())
		},
	}
}
