package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mentorkit/mentor/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	GroupID: GroupLearn,
	Short:   "Start an interactive chat with the mentor",
	Long: `Start an interactive chat session with the mentor.

The full conversation is kept in context, so follow-up questions work the
way you would expect. Press esc or ctrl+c to leave.

If you are signed in ('mentor account login'), the mentor greets you by
name; otherwise the chat works the same without one.

Examples:
  mentor chat
  mentor chat --model gemini-1.5-pro`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

var chatModel string // --model: override the configured chat model

func init() {
	chatCmd.Flags().StringVar(&chatModel, "model", "", "Model to use (default from config)")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if chatModel != "" {
		cfg.Chat.Model = chatModel
	}
	svc := newService(cfg)

	// The greeting name is best-effort: an anonymous chat is fine.
	userName := "there"
	if store, closeStore, err := newAccountStore(cfg); err == nil {
		if profile, err := store.Current(context.Background()); err == nil && profile != nil {
			if first := firstName(profile.Name); first != "" {
				userName = first
			}
		}
		closeStore()
	}

	return tui.Run(svc, userName, cfg.Chat.Model)
}

// firstName returns the first word of a full name.
func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
