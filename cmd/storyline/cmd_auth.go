package main

import (
	"fmt"
	"time"

	"storyline/internal/api"
	"storyline/internal/logging"
	"storyline/internal/session"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.client.Register(cmd.Context(), api.Registration{Name: name, Email: email, Password: password}); err != nil {
				return fmt.Errorf("registration failed: %s", api.Message(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registration successful! Please login.")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password, at least 8 characters (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.client.Login(cmd.Context(), api.Credentials{Email: email, Password: password})
			if err != nil {
				return fmt.Errorf("login failed: %s", api.Message(err))
			}
			if err := a.sessions.Set(res.Token, res.UserID, res.Name); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			logging.CLI("logged in as %s", res.UserID)
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s!\n", res.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.client.Logout(); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "You have been logged out.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.sessions.Get()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !s.Authenticated() {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			fmt.Fprintf(out, "Name:    %s\n", s.UserName)
			fmt.Fprintf(out, "User ID: %s\n", s.UserID)
			fmt.Fprintf(out, "Token:   %s\n", describeExpiry(s, time.Now()))
			return nil
		},
	}
}

// describeExpiry reads the token's exp claim without verifying it. Opaque
// tokens report no expiry.
func describeExpiry(s session.Session, now time.Time) string {
	exp, err := s.ExpiresAt()
	switch {
	case err != nil:
		return "no expiry"
	case exp.Before(now):
		return "expired " + humanize.RelTime(exp, now, "ago", "from now")
	default:
		return "expires " + humanize.RelTime(exp, now, "ago", "from now")
	}
}
