// Package cmd implements the mentor command line interface.
package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Command groups shown in help output.
const (
	GroupLearn   = "learn"
	GroupAccount = "account"
	GroupSetup   = "setup"
)

var rootCmd = &cobra.Command{
	Use:   "mentor",
	Short: "A study mentor in your terminal",
	Long: `mentor is a terminal study companion backed by a generative
language API.

Ask one-off questions, hold a tutoring conversation, or generate a
course outline for a topic you want to learn. API credentials come from
the environment (GEMINI_API_KEY and per-pool GEMINI_API_KEY_*
variables); run 'mentor keys' to see what is configured.`,
}

var (
	configPath string // --config: alternate config file
	verbose    bool   // --verbose: debug logging
)

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupLearn, Title: "Learning Commands:"},
		&cobra.Group{ID: GroupAccount, Title: "Account Commands:"},
		&cobra.Group{ID: GroupSetup, Title: "Setup Commands:"},
	)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/mentor/mentor.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cobra.OnInitialize(func() {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// requireSubcommand is the RunE for parent commands that only exist to
// hold subcommands.
func requireSubcommand(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}
