package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mentorkit/mentor/internal/genai"
	"github.com/mentorkit/mentor/internal/style"
)

var askCmd = &cobra.Command{
	Use:     "ask <question>",
	GroupID: GroupLearn,
	Short:   "Ask the mentor a single question",
	Long: `Ask a one-off question and print the mentor's answer.

This is the stateless path: no session, no chat history, one request and
one reply. For a back-and-forth conversation use 'mentor chat' instead.

Examples:
  mentor ask "what is a goroutine?"
  mentor ask "explain the difference between TCP and UDP"
  mentor ask --model gemini-1.5-pro "walk me through Bayes' theorem"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var askModel string // --model: override the configured chat model

func init() {
	askCmd.Flags().StringVar(&askModel, "model", "", "Model to use (default from config)")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if askModel != "" {
		cfg.Chat.Model = askModel
	}
	svc := newService(cfg)

	fmt.Printf("%s Asking %s...\n\n", style.ArrowPrefix, cfg.Chat.Model)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	reply, err := svc.ChatReply(ctx, []genai.Message{{Role: genai.RoleUser, Text: question}})
	if err != nil {
		return describeGenError(err)
	}

	fmt.Println(strings.TrimSpace(reply))
	return nil
}
