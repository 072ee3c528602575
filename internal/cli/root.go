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
		Use:   "linkctl",
		Short: "CLI tool for the account linking API",
		Long: `linkctl is a CLI tool for the identity linking JSON API.

It can start link verifications, deliver confirmation signals on behalf of a
platform gateway, and trigger unlink or reconciliation runs for a player.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: LINKCTL_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Platform, "platform", "p", cfg.Platform, "Platform: teamspeak, discord (env: LINKCTL_PLATFORM)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLinkCmd())
	rootCmd.AddCommand(newSignalCmd())
	rootCmd.AddCommand(newReloadCmd())
	rootCmd.AddCommand(newUnlinkCmd())
	rootCmd.AddCommand(newCancelCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
