package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
)

const (
	VendorName      = "Vendor"
	PlaceHolderText = "Type a response number or /help..."
	clockStep       = time.Second
)

type entryKind int

const (
	entryVendor entryKind = iota
	entryPlayer
	entryServer
	entryNotice
	entryError
)

type entry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	session      *Session
	state        State
	entries      []entry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	// Quit confirmation state
	showQuitModal bool
}

type turnMsg struct {
	turn Turn
	err  error
}

type stateMsg struct {
	state State
	err   error
}

type clockTickMsg struct{}

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

	vendorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	serverStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	unavailableStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Strikethrough(true)

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

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func NewConsoleUI(s *Session) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = "> "
	ta.CharLimit = 120
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	return ConsoleUI{
		session:      s,
		textarea:     ta,
		chatViewport: viewport.New(0, 0),
		metaViewport: viewport.New(0, 0),
		entries:      []entry{{kind: entryVendor, text: s.Start()}},
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.refreshState(), clockTick())
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
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.65) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.state, m.metaViewport.Width))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			n, err := strconv.Atoi(input)
			if err != nil {
				m.addEntry(entryError, fmt.Sprintf("%q is not a response number. Type /help for commands.", input))
				return m, nil
			}
			m.loading = true
			return m, m.choose(n - 1)
		}

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "Error: "+msg.err.Error())
			return m, m.refreshState()
		}
		m.addTurn(msg.turn)
		return m, m.refreshState()

	case stateMsg:
		if msg.err != nil {
			m.addEntry(entryError, "Error: "+msg.err.Error())
		}
		m.state = msg.state
		m.metaViewport.SetContent(writeMetadata(m.state, m.metaViewport.Width))

	case clockTickMsg:
		if m.loading {
			return m, clockTick()
		}
		return m, tea.Batch(m.advanceClock(), clockTick())
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) addEntry(kind entryKind, text string) {
	m.entries = append(m.entries, entry{kind: kind, text: text})
	m.writeChatContent()
}

func (m *ConsoleUI) addTurn(t Turn) {
	m.entries = append(m.entries, entry{kind: entryPlayer, text: t.Choice})
	for _, text := range t.Messages {
		m.entries = append(m.entries, entry{kind: entryServer, text: text})
	}
	if t.Outcome.Rejected {
		m.entries = append(m.entries, entry{kind: entryNotice, text: "The vendor won't accept that response."})
	}
	if v := t.Outcome.Spawned; v != nil {
		m.entries = append(m.entries, entry{kind: entryNotice, text: fmt.Sprintf("Your %s is waiting.", vehicleName(v.PrefabName()))})
	}
	if t.Outcome.Ended() {
		m.entries = append(m.entries, entry{kind: entryNotice, text: "The conversation ended. Type /start to talk again."})
	} else if t.Speech != "" {
		m.entries = append(m.entries, entry{kind: entryVendor, text: t.Speech})
	}
	m.writeChatContent()
}

func (m *ConsoleUI) writeChatContent() {
	if !m.ready {
		return
	}
	width := m.chatViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Vehicle Vendor: "+m.state.Vendor) + "\n\n")
	for _, e := range m.entries {
		b.WriteString(formatEntry(e, width))
		b.WriteString("\n\n")
	}
	m.chatViewport.SetContent(b.String())
	m.chatViewport.GotoBottom()
}

func formatEntry(e entry, width int) string {
	switch e.kind {
	case entryVendor:
		return vendorStyle.Render(VendorName+": ") + wordwrap.String(e.text, width-len(VendorName)-2)
	case entryPlayer:
		return playerStyle.Render("You: " + wordwrap.String(e.text, width-5))
	case entryServer:
		return serverStyle.Render("[server] " + wordwrap.String(e.text, width-9))
	case entryError:
		return errorStyle.Render(wordwrap.String(e.text, width))
	default:
		return promptStyle.Render(wordwrap.String(e.text, width))
	}
}

func writeMetadata(st State, width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Responses") + "\n")
	if len(st.Options) == 0 {
		b.WriteString(promptStyle.Render("Not talking to the vendor") + "\n")
	}
	for _, opt := range st.Options {
		line := fmt.Sprintf("%d. %s", opt.Index+1, opt.Response.Text)
		if width > 4 {
			line = wordwrap.String(line, width)
		}
		if opt.Available {
			b.WriteString(line + "\n")
		} else {
			b.WriteString(unavailableStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + titleStyle.Render("Wallet") + "\n")
	fmt.Fprintf(&b, "Scrap: %d\n", st.Scrap)
	if st.ShownScrap != st.Scrap {
		b.WriteString(serverStyle.Render(fmt.Sprintf("Client shows: %d", st.ShownScrap)) + "\n")
	}
	fmt.Fprintf(&b, "Coins: %.2f\n", st.Economics)
	fmt.Fprintf(&b, "Reward points: %.0f\n", st.ServerRewards)

	b.WriteString("\n" + titleStyle.Render("Permissions") + "\n")
	if len(st.Granted) == 0 {
		b.WriteString(promptStyle.Render("None") + "\n")
	}
	for _, perm := range st.Granted {
		b.WriteString("• " + perm + "\n")
	}

	b.WriteString("\n" + titleStyle.Render("Vehicles") + "\n")
	if len(st.Spawned) == 0 {
		b.WriteString(promptStyle.Render("None") + "\n")
	}
	for _, v := range st.Spawned {
		fuel := 0
		if fs := v.Fuel(); fs != nil {
			fuel = fs.FuelAmount()
		}
		owner := "-"
		if o := v.Owner(); o != "" {
			owner = string(o)
		}
		fmt.Fprintf(&b, "• %s\n  fuel %d, owner %s\n", vehicleName(v.PrefabName()), fuel, owner)
	}
	return b.String()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/help":
		m.addEntry(entryNotice, `Commands:
• <n> - Pick response n
• /start - Talk to the vendor again
• /scrap <amount> - Set your scrap
• /fund <economics|serverrewards> <amount> - Add to a balance
• /grant <permission>, /revoke <permission>
• /perms - List the plugin's permissions
• /reload - Reload the settings file
• /copy - Copy the transcript to the clipboard
• Ctrl+C - Quit`)

	case "/start":
		m.addEntry(entryVendor, m.session.Start())
		return m, m.refreshState()

	case "/scrap":
		n, err := intArg(args, 0)
		if err != nil {
			m.addEntry(entryError, "Usage: /scrap <amount>")
			return m, nil
		}
		m.session.SetScrap(n)
		return m, m.refreshState()

	case "/fund":
		if len(args) != 2 {
			m.addEntry(entryError, "Usage: /fund <economics|serverrewards> <amount>")
			return m, nil
		}
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			m.addEntry(entryError, "Usage: /fund <economics|serverrewards> <amount>")
			return m, nil
		}
		return m, m.fund(strings.ToLower(args[0]), amount)

	case "/grant", "/revoke":
		if len(args) != 1 {
			m.addEntry(entryError, "Usage: "+cmd+" <permission>")
			return m, nil
		}
		if cmd == "/grant" {
			m.session.Grant(args[0])
		} else {
			m.session.Revoke(args[0])
		}
		return m, m.refreshState()

	case "/perms":
		m.addEntry(entryNotice, "Permissions:\n"+strings.Join(m.session.Permissions(), "\n"))

	case "/reload":
		m.session.Reload()
		m.addEntry(entryNotice, "Settings reloaded.")
		return m, m.refreshState()

	case "/copy":
		if err := clipboard.WriteAll(m.transcript()); err != nil {
			m.addEntry(entryError, "Failed to copy transcript: "+err.Error())
		} else {
			m.addEntry(entryNotice, "Transcript copied to clipboard.")
		}

	case "/quit":
		m.showQuitModal = true

	default:
		m.addEntry(entryError, fmt.Sprintf("Unknown command %s. Type /help for commands.", cmd))
	}
	return m, nil
}

func vehicleName(prefab string) string {
	if info, ok := vehicle.ForPrefab(prefab); ok {
		return info.DisplayName
	}
	return prefab
}

// transcript renders the conversation as plain text.
func (m ConsoleUI) transcript() string {
	var b strings.Builder
	for _, e := range m.entries {
		switch e.kind {
		case entryVendor:
			b.WriteString(VendorName + ": ")
		case entryPlayer:
			b.WriteString("You: ")
		case entryServer:
			b.WriteString("[server] ")
		}
		b.WriteString(e.text)
		b.WriteString("\n")
	}
	return b.String()
}

func intArg(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, errors.New("missing argument")
	}
	return strconv.Atoi(args[i])
}

func (m ConsoleUI) choose(index int) tea.Cmd {
	return func() tea.Msg {
		turn, err := m.session.Choose(index)
		return turnMsg{turn, err}
	}
}

func (m ConsoleUI) fund(ledger string, amount float64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.session.Fund(ctx, ledger, amount); err != nil {
			return stateMsg{m.state, err}
		}
		st, err := m.session.State(ctx)
		return stateMsg{st, err}
	}
}

func (m ConsoleUI) refreshState() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st, err := m.session.State(ctx)
		return stateMsg{st, err}
	}
}

// advanceClock lets scheduled server work, like display refreshes, catch up with real time.
func (m ConsoleUI) advanceClock() tea.Cmd {
	return func() tea.Msg {
		m.session.Advance(clockStep)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st, err := m.session.State(ctx)
		return stateMsg{st, err}
	}
}

func clockTick() tea.Cmd {
	return tea.Tick(clockStep, func(time.Time) tea.Msg {
		return clockTickMsg{}
	})
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
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
	content.WriteString(modalTitleStyle.Render("Leave the Vendor?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit?")
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

	chatWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
