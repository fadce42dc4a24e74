// Package tui is the interactive terminal front end for asking questions
// about indexed documents.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/docqa/internal/util"
)

// Asker answers one question.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Info describes the session shown in the header.
type Info struct {
	Provider   string
	IndexCount int
	Summary    string
}

type exchange struct {
	question string
	answer   string
	err      error
	elapsed  time.Duration
}

type answerMsg exchange

// Model is the Bubble Tea model for the question loop.
type Model struct {
	ctx      context.Context
	asker    Asker
	info     Info
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	history  []exchange
	waiting  bool
	status   string
	ready    bool
	width    int
}

// New creates a new TUI model instance.
func New(ctx context.Context, asker Asker, info Info) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "How can I help you today? (Enter asks, Esc quits)"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		ctx:      ctx,
		asker:    asker,
		info:     info,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   "Ready. An empty question lists all the files.",
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, asker Asker, info Info) error {
	p := tea.NewProgram(New(ctx, asker, info), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		answer, err := m.asker.Ask(m.ctx, question)
		return answerMsg{question: question, answer: answer, err: err, elapsed: time.Since(start)}
	}
}

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		_, rh := historyBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header lines, status, input frame, input line
		vh := msg.Height - reserved - rh
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(3, vh)
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.waiting {
				return m, nil
			}
			question := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			m.waiting = true
			m.status = "Asking the model..."
			return m, tea.Batch(m.spinner.Tick, m.askCmd(question))
		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case answerMsg:
		m.waiting = false
		m.history = append(m.history, exchange(msg))
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Answered in %s", msg.elapsed.Truncate(time.Millisecond))
		}
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the header, answer history, input box and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("docqa") + renderProviderBadge(m.info.Provider) + " " + renderIndexBadge(m.info.IndexCount)
	summary := summaryStyle.Render(m.info.Summary)
	history := historyBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())

	status := statusStyle.Render(m.status)
	if m.waiting {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + summary + "\n" + history + "\n" + input + "\n" + status
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "No questions yet."
	}
	width := m.viewport.Width
	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		question := ex.question
		if question == "" {
			question = "(list all the files)"
		}
		b.WriteString(questionStyle.Render(util.WrapToWidth("Q: "+question, width)))
		b.WriteString("\n")
		if ex.err != nil {
			b.WriteString(errorStyle.Render(util.WrapToWidth("Error: "+ex.err.Error(), width)))
			continue
		}
		b.WriteString(util.WrapToWidth(ex.answer, width))
	}
	return b.String()
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	summaryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
