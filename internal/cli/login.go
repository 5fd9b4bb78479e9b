package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ErrLoginRefused is returned when the server answers a login with anything but success
var ErrLoginRefused = errors.New("login refused")

func newLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Submit the current window with a username and password",
		Long: `Submit the current login window. The puzzle must be solved first.

On success the role pass is saved and the window is forgotten. A failed
attempt prints the regenerated puzzle to solve before trying again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := cfg.Window()
			if err != nil {
				return err
			}

			var result LoginResult

			req := map[string]string{"username": username, "password": password}
			if err := client.Post(fmt.Sprintf("/api/v1/windows/%s/login", token), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)

			if result.Pass == "" {
				return ErrLoginRefused
			}

			if err := cfg.SavePass(result.Pass); err != nil {
				return fmt.Errorf("failed to save pass: %w", err)
			}
			return cfg.ClearWindow()
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved role pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ClearPass(); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage("Logged out")
			return nil
		},
	}
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the account the saved pass belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Me

			if err := client.Get("/api/v1/accounts/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
