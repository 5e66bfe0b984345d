package client

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Nickname length bounds enforced before the nickname is sent.
const (
	minNicknameLen = 3
	maxNicknameLen = 32
)

// clientState tracks which screen the client is on.
type clientState int

const (
	stateNickname clientState = iota // Choosing a nickname
	stateChat                        // Connected command loop / conversation
)

// serverEvent carries one Connection event into the Bubble Tea loop.
type serverEvent Event

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))

	selfStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))
)

// Model is the Bubble Tea model for the chat client: a nickname prompt
// followed by a transcript viewport with a message input.
type Model struct {
	conn *Connection

	state      clientState
	nickname   string
	input      textinput.Model
	view       viewport.Model
	transcript string

	width     int
	height    int
	nickError string
	discoErr  error
	quitting  bool
}

// NewModel creates the client model for an established connection.
func NewModel(conn *Connection, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "nickname (3 to 32 characters)"
	ti.CharLimit = maxNicknameLen
	ti.Focus()

	vp := viewport.New(width, viewportHeight(height))

	return Model{
		conn:   conn,
		state:  stateNickname,
		input:  ti,
		view:   vp,
		width:  width,
		height: height,
	}
}

func viewportHeight(height int) int {
	h := height - 5 // Title, status, input and margins
	if h < 3 {
		h = 3
	}
	return h
}

// Init starts cursor blinking and the server reader.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForServer())
}

// waitForServer returns a command that delivers the next server event.
func (m Model) waitForServer() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.conn.Recv()
		if !ok {
			return nil
		}
		return serverEvent(ev)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			m.quitting = true
			m.conn.Close()
			return m, tea.Quit
		case "enter":
			return m.handleEnter()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.Width = msg.Width
		m.view.Height = viewportHeight(msg.Height)
		m.view.SetContent(m.transcript)
		m.view.GotoBottom()
		return m, nil
	case serverEvent:
		return m.handleServerEvent(Event(msg))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleEnter submits the nickname or sends the typed line to the server.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if m.state == stateNickname {
		if len(text) < minNicknameLen || len(text) > maxNicknameLen {
			m.nickError = fmt.Sprintf("Nickname must be between %d and %d characters", minNicknameLen, maxNicknameLen)
			return m, nil
		}
		m.nickname = text
		m.nickError = ""
		if err := m.conn.SendLine(fmt.Sprintf("//command:NICKNAME<%s>", text)); err != nil {
			m.discoErr = err
			m.quitting = true
			return m, tea.Quit
		}
		m.state = stateChat
		m.input.Reset()
		m.input.Placeholder = "message, or //command:<HELP> for commands"
		m.input.CharLimit = 0
		return m, nil
	}

	// Everything typed goes to the server verbatim; the server decides
	// whether it is a command or chat text.
	if err := m.conn.SendLine(text); err != nil {
		m.discoErr = err
		m.quitting = true
		return m, tea.Quit
	}
	m.appendTranscript(selfStyle.Render(fmt.Sprintf("\n-- <%s> --\n", m.nickname)) + text + "\n")
	m.input.Reset()
	return m, nil
}

// handleServerEvent appends server output to the transcript.
func (m Model) handleServerEvent(ev Event) (tea.Model, tea.Cmd) {
	if ev.Err != nil {
		m.discoErr = ev.Err
		m.quitting = true
		return m, tea.Quit
	}
	m.appendTranscript(ev.Text)
	return m, m.waitForServer()
}

func (m *Model) appendTranscript(text string) {
	m.transcript += text
	m.view.SetContent(m.transcript)
	m.view.GotoBottom()
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		if m.nickname != "" {
			return fmt.Sprintf("*** GOODBYE %s ! ***\n", m.nickname)
		}
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("***** WELCOME TO RANDOMCHAT ! *****"))
	b.WriteString("\n\n")

	if m.state == stateNickname {
		b.WriteString("Pick a nickname to chat with:\n\n")
		b.WriteString(m.input.View())
		if m.nickError != "" {
			b.WriteString("\n\n")
			b.WriteString(errorStyle.Render(m.nickError))
		}
		b.WriteString("\n\n")
		b.WriteString(statusStyle.Render("Enter: confirm  |  Ctrl+C: quit"))
		return b.String()
	}

	b.WriteString(m.view.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render("//command:<HELP> for commands  |  Ctrl+C: quit"))
	return b.String()
}

// Disconnected returns the error that ended the session, if any.
func (m Model) Disconnected() error {
	return m.discoErr
}

// Run connects the model to a terminal of the given size and blocks until
// the user quits or the connection drops.
func Run(conn *Connection, width, height int) error {
	p := tea.NewProgram(NewModel(conn, width, height))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(Model); ok && m.Disconnected() != nil {
		return m.Disconnected()
	}
	return nil
}
