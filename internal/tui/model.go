// Package tui is the terminal chat client: a Bubble Tea model over the conversation service.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kamtechie/zenji/internal/datatypes"
	"github.com/kamtechie/zenji/internal/models"
)

const inputPlaceholder = "Tell me what's going on..."

// ChatService is the TUI-facing subset of the conversation service.
type ChatService interface {
	SendMessage(ctx context.Context, history []models.ChatMessage) (models.ChatMessage, error)
}

// replyMsg carries the assistant's answer to a submitted turn.
type replyMsg struct {
	message models.ChatMessage
}

// errMsg reports a failed turn.
type errMsg struct {
	err error
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	ctx      context.Context
	service  ChatService
	history  []models.ChatMessage
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	status   string
	pending  bool
	ready    bool
}

// New creates a chat model. ctx bounds every service call.
func New(ctx context.Context, service ChatService) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = inputPlaceholder
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		service:  service,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   "Enter to send, Esc to quit.",
	}
}

// History returns a copy of the conversation so far.
func (m Model) History() []models.ChatMessage {
	return append([]models.ChatMessage(nil), m.history...)
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and service events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, qh := queryBoxStyle.GetFrameSize()
		_, th := transcriptBoxStyle.GetFrameSize()
		reserved := 1 + 1 + 1 + qh + th // header, input line, status
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.input.Width = max(10, msg.Width-6)
		m.refresh()

		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)

			return m, cmd
		}
	case replyMsg:
		m.pending = false
		m.history = append(m.history, msg.message)
		m.status = "Enter to send, Esc to quit."
		m.refresh()

		return m, nil
	case errMsg:
		m.pending = false
		m.status = "Error: " + msg.err.Error()

		return m, nil
	case spinner.TickMsg:
		if !m.pending {
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

// submit appends the user's message and starts the service call. Blank input and input typed
// while a turn is in flight are ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.pending {
		return m, nil
	}

	m.history = append(m.history, models.UserMessage(text))
	m.input.SetValue("")
	m.pending = true
	m.status = "Thinking..."
	m.refresh()

	return m, tea.Batch(m.send(m.History()), m.spinner.Tick)
}

func (m Model) send(history []models.ChatMessage) tea.Cmd {
	ctx, service := m.ctx, m.service

	return func() tea.Msg {
		reply, err := service.SendMessage(ctx, history)
		if err != nil {
			return errMsg{err: err}
		}

		return replyMsg{message: reply}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// View renders the transcript, input box and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := headerStyle.Render("Zenji")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())

	status := statusStyle.Render(m.status)
	if m.pending {
		status = m.spinner.View() + " " + status
	}

	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return placeholderStyle.Render("Share how you're feeling and I'll suggest remedies that may help.")
	}

	width := max(10, m.viewport.Width-2)
	blocks := make([]string, 0, len(m.history))

	for _, msg := range m.history {
		style, label := roleStyle(msg.Role)
		blocks = append(blocks, style.Width(width).Render(label+msg.Content))
	}

	return strings.Join(blocks, "\n\n")
}

func roleStyle(role datatypes.Role) (lipgloss.Style, string) {
	switch role {
	case datatypes.RoleUser:
		return userStyle, "you: "
	case datatypes.RoleAssistant:
		return assistantStyle, "zenji: "
	default:
		return placeholderStyle, role.String() + ": "
	}
}

var (
	headerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	placeholderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)
