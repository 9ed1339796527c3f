package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartshop/smartshop/internal/auth"
)

// newAuthProvider is replaced in tests to stub the identity service.
var newAuthProvider = func(endpoint, apiKey string) auth.Provider {
	return auth.NewClient(endpoint, apiKey)
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		password    string
		signUp      bool
		displayName string
	)

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in to the identity provider",
		Long: `Sign in (or, with --signup, register) against the configured identity
provider and persist the session locally.

The password is read from the SMARTSHOP_PASSWORD environment variable or
the --password flag.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if email == "" {
				return NewExitError(ExitCommandError, "email is required")
			}

			if password == "" {
				password = os.Getenv("SMARTSHOP_PASSWORD")
			}
			if password == "" {
				return NewExitError(ExitCommandError, "password is required (flag --password or SMARTSHOP_PASSWORD)")
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Auth.Endpoint == "" {
				return NewExitError(ExitCommandError, "no auth endpoint configured")
			}
			provider := newAuthProvider(a.cfg.Auth.Endpoint, a.cfg.Auth.APIKey)

			ctx := cmd.Context()
			var session auth.Session
			if signUp {
				session, err = provider.SignUp(ctx, email, password, displayName)
			} else {
				session, err = provider.SignIn(ctx, email, password)
			}
			if err != nil {
				return WrapExitError(ExitFailure, "authentication failed", err)
			}

			if err := auth.SaveSession(a.cfg.StateDir, session); err != nil {
				return WrapExitError(ExitCommandError, "failed to save session", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(fmt.Sprintf("signed in as %s", session.Email))
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&signUp, "signup", false, "register a new account")
	cmd.Flags().StringVar(&displayName, "display-name", "", "display name for --signup")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear local data",
		Long: `Sign out: remove the persisted session and clear the local product
store. The remote collection is untouched; data returns on next sign-in
via reconciliation.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := auth.ClearSession(a.cfg.StateDir); err != nil {
				return WrapExitError(ExitCommandError, "failed to clear session", err)
			}
			if err := a.store.Clear(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, "failed to clear local store", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success("signed out; local data cleared")
		},
	}

	return cmd
}
