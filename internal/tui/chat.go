// Package tui implements the interactive chat surface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mentorkit/mentor/internal/genai"
	"github.com/mentorkit/mentor/internal/keypool"
	"github.com/mentorkit/mentor/internal/mentor"
	"github.com/mentorkit/mentor/internal/style"
)

// replyMsg delivers a finished mentor turn to the update loop.
type replyMsg struct {
	text string
	err  error
}

// Model is the chat program state.
type Model struct {
	svc   *mentor.Service
	user  string
	model string

	viewport viewport.Model
	input    textarea.Model
	spin     spinner.Model

	history []genai.Message
	lines   []string
	waiting bool
	ready   bool
}

// NewModel creates the chat program. userName labels the learner's turns;
// model is shown in the header.
func NewModel(svc *mentor.Service, userName, model string) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask your mentor anything..."
	ta.Prompt = "┃ "
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = style.Dim

	greeting := fmt.Sprintf("Hi %s! What are we studying today?", userName)
	return Model{
		svc:   svc,
		user:  userName,
		model: model,
		input: ta,
		spin:  sp,
		lines: []string{style.MentorLabel.Render("Mentor: ") + greeting},
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Header, status line, and the three input rows frame the viewport.
		vpHeight := msg.Height - m.input.Height() - 3
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.SetWidth(msg.Width - 2)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.history = append(m.history, genai.Message{Role: genai.RoleUser, Text: question})
			m.lines = append(m.lines, style.UserLabel.Render(m.user+": ")+question)
			m.input.Reset()
			m.waiting = true
			m.refresh()
			return m, tea.Batch(m.spin.Tick, m.ask())
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.lines = append(m.lines, renderError(msg.err))
		} else {
			m.history = append(m.history, genai.Message{Role: genai.RoleModel, Text: msg.text})
			m.lines = append(m.lines, style.MentorLabel.Render("Mentor: ")+msg.text)
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// ask runs the next mentor turn off the update loop.
func (m Model) ask() tea.Cmd {
	history := make([]genai.Message, len(m.history))
	copy(history, m.history)
	return func() tea.Msg {
		text, err := m.svc.ChatReply(context.Background(), history)
		return replyMsg{text: text, err: err}
	}
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	transcript := strings.Join(m.lines, "\n\n")
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(transcript))
	m.viewport.GotoBottom()
}

// View renders the chat screen.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	header := style.Header.Render("mentor chat") +
		style.Dim.Render(fmt.Sprintf("  %s · %dk context · esc quits",
			m.model, genai.MaxContextTokens(m.model)/1024))

	status := ""
	if m.waiting {
		status = m.spin.View() + style.Dim.Render(" thinking...")
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, m.viewport.View(), status, m.input.View())
}

// renderError gives each failure class its own voice in the transcript.
func renderError(err error) string {
	var blocked *genai.BlockedError
	var cfgErr *keypool.ConfigError
	var exhausted *keypool.ExhaustedError
	switch {
	case errors.As(err, &blocked):
		return style.Warning.Render("⚠ ") + "The mentor declined to answer that one (upstream safety policy)."
	case errors.As(err, &cfgErr):
		return style.ErrorPrefix + " " + err.Error()
	case errors.As(err, &exhausted):
		return style.ErrorPrefix + " Every configured key failed; try again in a moment.\n" +
			style.Dim.Render(err.Error())
	default:
		return style.ErrorPrefix + " " + err.Error()
	}
}

// Run starts the chat program and blocks until it exits.
func Run(svc *mentor.Service, userName, model string) error {
	p := tea.NewProgram(NewModel(svc, userName, model), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
