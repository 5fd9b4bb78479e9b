package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "schoolgate",
		Short: "CLI client for the schoolgate login API",
		Long: `schoolgate drives the school login gate over its JSON API.

Open a login window, put the four puzzle tiles in order, then log in. The
role pass returned on success is saved and used for account and admin
commands.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.LoadPass(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL, cfg.Pass)
			if cfg.Verbose {
				client.SetTrace(cmd.ErrOrStderr())
			}
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: SCHOOLGATE_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Pass, "role-pass", cfg.Pass, "Role pass (env: SCHOOLGATE_PASS)")
	rootCmd.PersistentFlags().StringVar(&cfg.Home, "home", cfg.Home, "Directory for the saved pass and window (env: SCHOOLGATE_HOME)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newWindowCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newMeCmd())
	rootCmd.AddCommand(newAdminCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
