package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Account administration (requires an admin pass)",
	}

	cmd.AddCommand(newAdminListCmd())
	cmd.AddCommand(newAdminGetCmd())
	cmd.AddCommand(newAccountFormCmd("create", "Create an account with any role", "/api/v1/admin/accounts",
		"Role: student, teacher or admin (default: student)"))
	cmd.AddCommand(newAdminEditCmd())
	cmd.AddCommand(newAdminActionCmd("block", "Block an account", "/block"))
	cmd.AddCommand(newAdminActionCmd("unblock", "Unblock an account and clear its failed attempts", "/unblock"))
	cmd.AddCommand(newAdminActionCmd("reset", "Clear an account's failed attempts", "/reset-attempts"))
	cmd.AddCommand(newAdminDeleteCmd())

	return cmd
}

func accountPath(id, suffix string) string {
	return fmt.Sprintf("/api/v1/admin/accounts/%s%s", id, suffix)
}

func newAdminListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Account

			if err := client.Get("/api/v1/admin/accounts", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newAdminGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Account

			if err := client.Get(accountPath(args[0], ""), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

// editFlags maps each edit flag to its request field
var editFlags = map[string]string{
	"user":     "username",
	"name":     "full_name",
	"phone":    "phone",
	"email":    "email",
	"role":     "role",
	"password": "password",
}

func newAdminEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an account; only the given flags are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			for flag, field := range editFlags {
				if cmd.Flags().Changed(flag) {
					value, _ := cmd.Flags().GetString(flag)
					req[field] = value
				}
			}
			if len(req) == 0 {
				return errors.New("nothing to change: pass at least one of --user, --name, --phone, --email, --role, --password")
			}

			var result Account

			if err := client.Patch(accountPath(args[0], ""), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringP("user", "u", "", "New username")
	cmd.Flags().String("name", "", "New full name")
	cmd.Flags().String("phone", "", "New phone number")
	cmd.Flags().String("email", "", "New email address")
	cmd.Flags().String("role", "", "New role: student, teacher or admin")
	cmd.Flags().StringP("password", "p", "", "New password (omit to keep the current one)")

	return cmd
}

func newAdminActionCmd(use, short, suffix string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Account

			if err := client.Post(accountPath(args[0], suffix), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newAdminDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(accountPath(args[0], "")); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Deleted account %s", args[0]))
			return nil
		},
	}
}
