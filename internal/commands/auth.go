package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ringlify/ringlify-cli/internal/output"
	"github.com/ringlify/ringlify-cli/internal/tui"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the business session",
		Long:  "Sign in to a business account, create one, sign out, or inspect the stored session.",
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthSignupCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to a business account",
		Long:  "Sign in with email and password. Missing values are prompted for on a terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			if email == "" || password == "" {
				if !app.IsInteractive() {
					return output.ErrUsage("--email and --password required")
				}
				if err := tui.Credentials(&email, &password); err != nil {
					return promptError(err)
				}
			}

			resp, err := app.Portal.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			auth := app.Session.Auth()
			summary := "Signed in"
			if resp.Business != nil && resp.Business.Name != "" {
				summary = fmt.Sprintf("Signed in to %s", resp.Business.Name)
			}
			return app.OK(auth,
				output.WithSummary(summary),
				output.WithBreadcrumbs(
					output.Breadcrumb{Action: "stats", Cmd: "ringlify stats today", Description: "Today's calls and appointments"},
					output.Breadcrumb{Action: "business", Cmd: "ringlify business show", Description: "Business details"},
				),
			)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")

	return cmd
}

func newAuthSignupCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a business account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			if password == "" {
				if !app.IsInteractive() {
					return output.ErrUsage("--password required")
				}
				if err := tui.NewPassword(&password); err != nil {
					return promptError(err)
				}
			}

			resp, err := app.Portal.Signup(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}

			return app.OK(app.Session.Auth(),
				output.WithSummary(fmt.Sprintf("Created %s and signed in", resp.Name)),
				output.WithBreadcrumbs(output.Breadcrumb{
					Action:      "kb",
					Cmd:         "ringlify kb set --file kb.json",
					Description: "Upload a knowledge base",
				}),
			)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Business name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password, at least 6 characters")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			if err := app.Portal.Logout(); err != nil {
				return err
			}

			return app.OK(map[string]string{
				"status": "logged_out",
			}, output.WithSummary("Successfully logged out"))
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Long:  "Show whether a session is stored. With --verify, check it against the backend and clear it if rejected.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			auth := app.Session.Auth()
			status := map[string]any{
				"authenticated": auth.IsAuthenticated,
				"origin":        app.Config.BaseURL,
			}
			if auth.BusinessID != "" {
				status["businessId"] = auth.BusinessID
			}

			if !auth.IsAuthenticated {
				return app.OK(status,
					output.WithSummary("Not authenticated"),
					output.WithBreadcrumbs(output.Breadcrumb{Action: "login", Cmd: "ringlify auth login", Description: "Sign in"}),
				)
			}

			if verify {
				b, err := app.Portal.Restore(cmd.Context())
				if err != nil {
					return err
				}
				status["verified"] = true
				status["business"] = b.Name
				return app.OK(status, output.WithSummary("Authenticated as "+b.Name))
			}

			return app.OK(status, output.WithSummary("Authenticated"))
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Check the session against the backend")

	return cmd
}

// promptError maps an aborted prompt to a usage error.
func promptError(err error) error {
	if errors.Is(err, tui.ErrCanceled) {
		return output.ErrUsage("Canceled")
	}
	return err
}
