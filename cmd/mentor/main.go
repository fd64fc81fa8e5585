package main

import (
	"os"

	"github.com/mentorkit/mentor/internal/cmd"
)

func main() {
	// Cobra prints the error; we only set the exit code.
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
