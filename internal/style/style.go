// Package style provides consistent terminal styling using Lipgloss.
package style

import "github.com/charmbracelet/lipgloss"

var (
	// Header styles screen and section titles.
	Header = lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")). // Blue
		Bold(true)

	// Success style for positive outcomes
	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")). // Green
		Bold(true)

	// Warning style for cautionary messages
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")). // Yellow
		Bold(true)

	// Error style for failures
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")). // Red
		Bold(true)

	// Dim style for secondary information
	Dim = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")) // Gray

	// MentorLabel marks mentor turns in chat output.
	MentorLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")). // Magenta
			Bold(true)

	// UserLabel marks the learner's turns in chat output.
	UserLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")). // Cyan
			Bold(true)

	// Tree styles the ASCII course outline.
	Tree = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")) // Green

	// SuccessPrefix is the checkmark prefix for success messages
	SuccessPrefix = Success.Render("✓")

	// ErrorPrefix is the error prefix
	ErrorPrefix = Error.Render("✗")

	// ArrowPrefix for action indicators
	ArrowPrefix = Header.Render("→")
)
