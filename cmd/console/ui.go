package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/outerrim/holonet/pkg/chat"
	"github.com/outerrim/holonet/pkg/styletag"
)

const (
	PlaceHolderText = "Type your message here... (@Name, text to summon an NPC)"
	pollInterval    = 5 * time.Second
)

// Identity is who the console user posts as. The hub has no accounts;
// the console mints a fresh authorId per session.
type Identity struct {
	AuthorID   string
	AuthorName string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	room         *chat.Room
	identity     Identity
	messages     []chat.Message
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error

	// Single-slot invocation state: while an NPC reply is pending,
	// further sends are blocked.
	busy       bool
	pendingNpc string

	// Last NPC reply text, for Ctrl+Y clipboard copy
	lastNpcReply string
	copied       bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int

	// SSE plumbing. The channel is filled by a goroutine started in Init
	// and drained one event per waitForEvent command.
	events chan SSEEvent
}

type postResponseMsg struct {
	response *chat.PostResponse
	err      error
}

type messagesMsg struct {
	messages []chat.Message
	err      error
}

type sseEventMsg struct {
	event SSEEvent
}

type sseClosedMsg struct {
	err error
}

type progressTickMsg struct{}

type pollTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // light grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, room *chat.Room, identity Identity) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		room:         room,
		identity:     identity,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		ready:        false,
		events:       make(chan SSEEvent, 16),
	}
}

func writeMetadata(m *ConsoleUI) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("ROOM") + "\n\n")

	content.WriteString("Name:\n")
	content.WriteString(m.room.Name + "\n\n")

	if m.room.Topic != "" {
		content.WriteString("Topic:\n")
		content.WriteString(m.room.Topic + "\n\n")
	}

	content.WriteString("You:\n")
	content.WriteString(m.identity.AuthorName + "\n\n")

	content.WriteString("Messages:\n")
	content.WriteString(fmt.Sprintf("%d total\n\n", len(m.messages)))

	if m.busy {
		content.WriteString("NPC:\n")
		content.WriteString(loadingStyle.Render(m.pendingNpc+" is thinking...") + "\n\n")
	}

	if m.copied {
		content.WriteString(loadingStyle.Render("Copied reply to clipboard") + "\n\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy last NPC reply\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

// writeChatContent rebuilds the chat log for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("HOLONET") + "\n\n")
	content.WriteString(fmt.Sprintf("Connected to %s as %s.\n", m.room.Name, m.identity.AuthorName))
	content.WriteString("Address an NPC with \"@Name, your message\" to summon a reply.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	m.lastNpcReply = ""
	for _, msg := range m.messages {
		switch {
		case msg.IsNpc:
			content.WriteString(formatNpcMessage(msg, chatWidth) + "\n\n")
			m.lastNpcReply = msg.Text
		case msg.AuthorID == chat.SystemAuthorID:
			content.WriteString(systemStyle.Render(wordwrap.String(msg.Text, chatWidth)) + "\n\n")
		default:
			userMsg := userStyle.Render(msg.AuthorName+": ") + wordwrap.String(msg.Text, chatWidth-6) + "\n\n"
			content.WriteString(userMsg)
		}
	}

	// If an NPC reply is pending, add the progress bar
	if m.busy {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

// formatNpcMessage renders an NPC message line by line, honoring the
// style-tag prefixes embedded in the text.
func formatNpcMessage(msg chat.Message, width int) string {
	var formattedLines []string
	formattedLines = append(formattedLines, speakerStyle.Render(msg.AuthorName+":"))

	for _, line := range styletag.ParseMessage(msg.Text) {
		style := npcStyle
		if line.Style.Bold {
			style = style.Bold(true)
		}
		if line.Style.Italic {
			style = style.Italic(true)
		}
		if line.Style.Underline {
			style = style.Underline(true)
		}

		wrapped := wordwrap.String(line.Text, width)
		if line.Style.Center {
			wrapped = lipgloss.PlaceHorizontal(width, lipgloss.Center, wrapped)
		}
		formattedLines = append(formattedLines, style.Render(wrapped))
	}

	return strings.Join(formattedLines, "\n")
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.fetchMessages(), m.startSSE(), m.waitForEvent(), pollTick())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// Pass mouse events to all components; each ignores events
		// outside its bounds
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(&m))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if m.lastNpcReply != "" {
				if err := clipboard.WriteAll(m.lastNpcReply); err == nil {
					m.copied = true
					m.metaViewport.SetContent(writeMetadata(&m))
				}
			}
			return m, nil
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.copied = false

			return m, m.sendMessage(input)
		}

	case postResponseMsg:
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			currentContent := m.chatViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.chatViewport.SetContent(currentContent + errorMsg)
			return m, nil
		}
		if msg.response.NpcPending {
			m.busy = true
			m.progressTick = 0
			m.metaViewport.SetContent(writeMetadata(&m))
			return m, tea.Batch(m.fetchMessages(), progressTick())
		}
		if msg.response.Error != "" {
			m.err = fmt.Errorf("%s", msg.response.Error)
		}
		return m, m.fetchMessages()

	case messagesMsg:
		if msg.err == nil {
			m.messages = msg.messages
			m.writeChatContent()
			m.metaViewport.SetContent(writeMetadata(&m))
		}

	case sseEventMsg:
		return m.handleEvent(msg.event)

	case sseClosedMsg:
		// Stream dropped; polling keeps the view current
		return m, nil

	case pollTickMsg:
		return m, tea.Batch(m.fetchMessages(), pollTick())

	case progressTickMsg:
		if m.busy {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleEvent(event SSEEvent) (tea.Model, tea.Cmd) {
	switch event.Type {
	case "npc.thinking":
		if name, ok := event.Data["npc_name"].(string); ok {
			m.pendingNpc = name
		}
		m.busy = true
		m.metaViewport.SetContent(writeMetadata(&m))
		return m, tea.Batch(m.waitForEvent(), progressTick())

	case "npc.completed", "npc.failed":
		m.busy = false
		m.pendingNpc = ""
		return m, tea.Batch(m.waitForEvent(), m.fetchMessages())

	case "message.created":
		return m, tea.Batch(m.waitForEvent(), m.fetchMessages())

	default:
		return m, m.waitForEvent()
	}
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• Ctrl+Y - Copy last NPC reply
• Ctrl+C - Quit

How to chat:
• Type a message and press Enter
• Open with "@Name," to summon the named NPC
• NPCs remember past exchanges across sessions
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()
	}

	m.textarea.Reset()
	return m, nil
}

func (m ConsoleUI) sendMessage(text string) tea.Cmd {
	return func() tea.Msg {
		resp, err := postMessage(m.client, m.config.APIBaseURL, m.room.ID, chat.PostRequest{
			Text:       text,
			AuthorID:   m.identity.AuthorID,
			AuthorName: m.identity.AuthorName,
		})
		return postResponseMsg{resp, err}
	}
}

func (m ConsoleUI) fetchMessages() tea.Cmd {
	return func() tea.Msg {
		msgs, err := listMessages(m.client, m.config.APIBaseURL, m.room.ID)
		return messagesMsg{msgs, err}
	}
}

// startSSE launches the event stream reader. The reader feeds m.events;
// waitForEvent turns channel reads into tea messages.
func (m ConsoleUI) startSSE() tea.Cmd {
	events := m.events
	client := &http.Client{} // no timeout; the stream stays open
	baseURL := m.config.APIBaseURL
	roomID := m.room.ID
	return func() tea.Msg {
		err := listenToSSE(context.Background(), client, baseURL, roomID, events)
		return sseClosedMsg{err}
	}
}

func (m ConsoleUI) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return sseEventMsg{<-events}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave Room?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to disconnect?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for the pending
// NPC reply.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}

	label := ""
	if m.pendingNpc != "" {
		label = loadingStyle.Render(m.pendingNpc+" is thinking...") + "\n"
	}
	return label + separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}
