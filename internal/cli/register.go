package cli

import (
	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	return newAccountFormCmd("register", "Register a new account", "/api/v1/accounts",
		"Role: student or teacher (default: student)")
}

// newAccountFormCmd builds a command that posts the account form to path
func newAccountFormCmd(use, short, path, roleHelp string) *cobra.Command {
	var (
		username string
		password string
		confirm  string
		fullName string
		phone    string
		email    string
		role     string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if confirm == "" {
				confirm = password
			}

			req := map[string]string{
				"username":         username,
				"password":         password,
				"confirm_password": confirm,
				"full_name":        fullName,
				"phone":            phone,
				"email":            email,
				"role":             role,
			}

			var result Account

			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Password confirmation (default: same as --password)")
	cmd.Flags().StringVar(&fullName, "name", "", "Full name")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&role, "role", "", roleHelp)
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
