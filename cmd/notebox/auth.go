package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebox"
	"github.com/aretw0/notebox/pkg/session"
)

var (
	authEmail    string
	authPassword string
)

func credentials() notebox.Credentials {
	password := authPassword
	if password == "" {
		password = os.Getenv("NOTEBOX_PASSWORD")
	}
	return notebox.Credentials{Email: authEmail, Password: password}
}

// authCommand builds register/login, which only differ in the session call.
func authCommand(use, short string, run func(*session.Manager, context.Context, session.Credentials) (session.UserID, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			id, err := run(app.Session, cmd.Context(), credentials())
			if err != nil {
				// details are in the debug log; the user only needs to retry
				return errors.New("login failed, try again")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	cmd.Flags().StringVar(&authPassword, "password", "", "Account password (or NOTEBOX_PASSWORD)")
	cmd.MarkFlagRequired("email")
	return cmd
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Session.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("failed to log out: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		u, ok := app.Session.User()
		if !ok {
			return notebox.ErrNotAuthenticated
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s)\n", u.ID, u.Email, u.Provider)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCommand("register", "Create an account and log in", (*session.Manager).Register))
	rootCmd.AddCommand(authCommand("login", "Log in with email and password", (*session.Manager).Login))
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
