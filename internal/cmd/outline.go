package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mentorkit/mentor/internal/style"
)

var outlineCmd = &cobra.Command{
	Use:     "outline <topic>",
	GroupID: GroupLearn,
	Short:   "Generate a course outline for a topic",
	Long: `Generate a structured course outline for a topic you want to study.

The outline is a plain-text tree, at most three levels deep, meant to be
read top to bottom as a study plan. Output is printed as-is so it can be
piped into a file.

Examples:
  mentor outline "linear algebra"
  mentor outline "rust for systems programming" > plan.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOutline,
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc := newService(cfg)

	fmt.Printf("%s Outlining %q with %s...\n\n", style.ArrowPrefix, topic, cfg.Outline.Model)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	outline, err := svc.CourseOutline(ctx, topic)
	if err != nil {
		return describeGenError(err)
	}

	fmt.Println(style.Tree.Render(strings.TrimSpace(outline)))
	return nil
}
