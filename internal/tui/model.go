// Package tui is the interactive chat front end.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Farewell is printed when the user leaves.
const Farewell = "Thank you for consulting me. Stay legally informed! 👨‍⚖️"

var quitWords = map[string]struct{}{"quit": {}, "exit": {}, "bye": {}}

const intro = "I'm here to help you understand legal matters.\n" +
	"Ask about laws, offences, or legal implications.\n" +
	"Type 'quit' to exit. 👋"

// ChatPort is the TUI-facing subset of the assistant.
type ChatPort interface {
	Reply(ctx context.Context, input string) (string, error)
}

type role int

const (
	roleUser role = iota
	roleBot
	roleError
)

type entry struct {
	role role
	text string
}

// replyMsg carries a finished Reply back into Update.
type replyMsg struct {
	text string
	err  error
}

// Model is the Bubble Tea model for the chat.
type Model struct {
	ctx        context.Context
	assistant  ChatPort
	input      textinput.Model
	viewport   viewport.Model
	transcript []entry
	status     string
	pending    bool
	done       bool
	ready      bool
}

// New creates a chat model with an initial status line.
func New(ctx context.Context, assistant ChatPort, status string) Model {
	ti := textinput.New()
	ti.Prompt = "🗣️ Your legal query: "
	ti.Placeholder = "Ask a legal question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{ctx: ctx, assistant: assistant, input: ti, viewport: vp, status: status}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, resize and reply events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + status + input + spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-bh)
		m.refresh()
		return m, nil
	case replyMsg:
		m.pending = false
		m.status = "Ready."
		if msg.err != nil {
			m.transcript = append(m.transcript, entry{roleError, "🚨 Oops! An error occurred: " + msg.err.Error()})
		} else {
			m.transcript = append(m.transcript, entry{roleBot, msg.text})
		}
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if q == "" || m.pending {
		return m, nil
	}
	m.input.SetValue("")
	if _, ok := quitWords[strings.ToLower(q)]; ok {
		m.transcript = append(m.transcript, entry{roleBot, Farewell})
		m.done = true
		m.refresh()
		return m, tea.Quit
	}
	m.transcript = append(m.transcript, entry{roleUser, q})
	m.pending = true
	m.status = "Thinking..."
	m.refresh()
	return m, ask(m.ctx, m.assistant, q)
}

func ask(ctx context.Context, a ChatPort, q string) tea.Cmd {
	return func() tea.Msg {
		text, err := a.Reply(ctx, q)
		return replyMsg{text: text, err: err}
	}
}

// Done reports whether the user ended the session.
func (m Model) Done() bool { return m.done }

// View renders the layout.
func (m Model) View() string {
	if m.done {
		return Farewell + "\n"
	}
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("⚖️ AI Legal Companion")
	body := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + body + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return introStyle.Render(intro)
	}
	width := max(10, m.viewport.Width-4)
	parts := make([]string, len(m.transcript))
	for i, e := range m.transcript {
		switch e.role {
		case roleUser:
			parts[i] = userStyle.Width(width).Render("You: " + e.text)
		case roleError:
			parts[i] = errorStyle.Width(width).Render(e.text)
		default:
			parts[i] = botStyle.Width(width).Render(e.text)
		}
	}
	return strings.Join(parts, "\n\n")
}

var (
	headerStyle        = lipgloss.NewStyle().Bold(true)
	introStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle           = lipgloss.NewStyle()
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
