// Package ui implements the interactive Nitrokey terminal interface: a
// menu of device actions, a PIN entry box, and a log view.
// Grounded on the teacher's internal/cli/ui/ui.go Bubble Tea model — same
// bubbles/list + lipgloss styling conventions and FileLogger pattern —
// scaled down from its pipeline/chat/ASIC-discovery surface to the
// device-session/slot/config surface this domain needs.
package ui

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vinaebizs/libnitrokey/internal/driver/device"
)

// FileLogger handles writing session logs to a file, the same singleton
// pattern the teacher's CLI uses for its own log pane.
type FileLogger struct {
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
}

var (
	logger     *FileLogger
	loggerOnce sync.Once
)

// GetLogger returns the singleton file logger, creating it on first use.
func GetLogger() *FileLogger {
	loggerOnce.Do(func() {
		logger = &FileLogger{}
		logger.init()
	})
	return logger
}

func (l *FileLogger) init() {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	logDir := filepath.Join(dir, "nitrokey-tui", "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("nitrokey-tui_%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open log file: %v\n", err)
		return
	}
	l.file = file
	l.writer = bufio.NewWriter(file)
}

// Write appends one timestamped log line.
func (l *FileLogger) Write(msg string) {
	if l == nil || l.writer == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	timestamp := time.Now().Format("2006/01/02 15:04:05")
	l.writer.WriteString(fmt.Sprintf("[%s] %s\n", timestamp, msg))
	l.writer.Flush()
}

// Close flushes and closes the log file.
func (l *FileLogger) Close() {
	if l == nil || l.file == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer.Flush()
	l.file.Close()
}

// View states.
const (
	MenuView = iota
	PinEntryView
	OtpView
	LogView
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFFF00")).
			Padding(0, 2).
			Bold(true).
			Width(80)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4B5563")).
			Padding(0, 2).
			Width(80)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2563EB")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60A5FA"))

	copyNoticeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#10B981")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 2).
			Bold(true)

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			Bold(true).
			MarginTop(1)
)

const nitrokeyLogo = `
███╗   ██╗██╗████████╗██████╗  ██████╗ ██╗  ██╗███████╗██╗   ██╗
████╗  ██║██║╚══██╔══╝██╔══██╗██╔═══██╗██║ ██╔╝██╔════╝╚██╗ ██╔╝
██╔██╗ ██║██║   ██║   ██████╔╝██║   ██║█████╔╝ █████╗   ╚████╔╝
██║╚██╗██║██║   ██║   ██╔══██╗██║   ██║██╔═██╗ ██╔══╝    ╚██╔╝
██║ ╚████║██║   ██║   ██║  ██║╚██████╔╝██║  ██╗███████╗   ██║
╚═╝  ╚═══╝╚═╝   ╚═╝   ╚═╝  ╚═╝ ╚═════╝ ╚═╝  ╚═╝╚══════╝   ╚═╝`

type menuItem struct {
	title       string
	description string
	action      func(m *Model) tea.Cmd
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.description }
func (i menuItem) FilterValue() string { return i.title }

var mainMenuItems = []list.Item{
	menuItem{title: "1. Connect", description: "Connect to the first Nitrokey Pro or Storage found", action: (*Model).actionConnect},
	menuItem{title: "2. Authenticate", description: "Enter the user PIN to unlock PIN-protected OTP reads", action: (*Model).actionAuthenticate},
	menuItem{title: "3. Read HOTP slot 0", description: "Show HOTP slot 0's current code", action: (*Model).actionReadOtp},
	menuItem{title: "4. Device status", description: "Show serial number and admin PIN retry count", action: (*Model).actionStatus},
	menuItem{title: "5. View logs", description: "Show where this session's log file is kept", action: (*Model).actionViewLogs},
	menuItem{title: "0. Quit", description: "Exit the application", action: nil},
}

// Model is the Bubble Tea application state.
type Model struct {
	view   int
	menu   list.Model
	input  textinput.Model
	status string
	err    string
	width  int
	height int

	mgr          *device.Manager
	otp          *device.PinProtectedOtp
	pendingSlot  int
	pendingKind  string // "auth", "hotp" or "totp"
	copyNotice   bool
}

// NewModel constructs the initial TUI state around a fresh Manager.
func NewModel() Model {
	l := list.New(mainMenuItems, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Nitrokey"
	l.SetShowStatusBar(false)

	ti := textinput.New()
	ti.Placeholder = "PIN"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'

	mgr := device.NewManager()

	return Model{
		view:  MenuView,
		menu:  l,
		input: ti,
		mgr:   mgr,
		otp:   device.NewPinProtectedOtp(mgr),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.view != MenuView {
				m.view = MenuView
				return m, nil
			}
		}

		switch m.view {
		case MenuView:
			return m.updateMenu(msg)
		case PinEntryView:
			return m.updatePinEntry(msg)
		case OtpView:
			if msg.String() == "c" {
				_ = clipboard.WriteAll(m.status)
				m.copyNotice = true
			}
			if msg.String() == "enter" || msg.String() == "esc" {
				m.view = MenuView
			}
			return m, nil
		case LogView:
			if msg.String() == "enter" || msg.String() == "esc" {
				m.view = MenuView
			}
			return m, nil
		}
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		item, ok := m.menu.SelectedItem().(menuItem)
		if !ok {
			return m, nil
		}
		if item.action == nil {
			return m, tea.Quit
		}
		cmd := item.action(&m)
		return m, cmd
	}
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m Model) updatePinEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		pin := m.input.Value()
		m.input.SetValue("")
		return m.submitPin(pin)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitPin(pin string) (tea.Model, tea.Cmd) {
	if m.pendingKind == "auth" {
		if err := m.mgr.UserAuthenticate(pin); err != nil {
			m.err = err.Error()
		} else {
			m.status = "Authenticated."
			m.err = ""
		}
		m.view = MenuView
		return m, nil
	}

	var code string
	var err error
	switch m.pendingKind {
	case "hotp":
		code, err = m.otp.Hotp(m.pendingSlot, pin)
	case "totp":
		code, err = m.otp.Totp(m.pendingSlot, pin, uint64(time.Now().Unix()))
	}
	if err != nil {
		m.err = err.Error()
		m.view = MenuView
		return m, nil
	}
	m.status = code
	m.err = ""
	m.view = OtpView
	return m, nil
}

func (m *Model) actionConnect() tea.Cmd {
	err := device.ConnectAuto(m.mgr)
	if err != nil {
		m.err = err.Error()
		return nil
	}
	m.status = fmt.Sprintf("Connected to %s device.", m.mgr.Model())
	m.err = ""
	GetLogger().Write(m.status)
	return nil
}

func (m *Model) actionAuthenticate() tea.Cmd {
	m.pendingKind = "auth"
	m.view = PinEntryView
	m.input.Focus()
	return nil
}

func (m *Model) actionReadOtp() tea.Cmd {
	m.pendingKind = "hotp"
	m.pendingSlot = 0
	m.view = PinEntryView
	m.input.Focus()
	return nil
}

func (m *Model) actionStatus() tea.Cmd {
	serial, err := m.mgr.GetSerialNumber()
	if err != nil {
		m.err = err.Error()
		return nil
	}
	retries, err := m.mgr.GetPasswordRetryCount()
	if err != nil {
		m.err = err.Error()
		return nil
	}
	m.status = "Serial: " + serial + "  Admin PIN retries: " + strconv.Itoa(int(retries))
	m.err = ""
	return nil
}

func (m *Model) actionViewLogs() tea.Cmd {
	m.view = LogView
	return nil
}

func (m Model) View() string {
	var body string
	switch m.view {
	case PinEntryView:
		body = inputStyle.Render(m.input.View())
	case OtpView:
		body = infoStyle.Render("Code: "+m.status) + "\n\n" + "[c] copy   [enter] back"
		if m.copyNotice {
			body += "\n" + copyNoticeStyle.Render("Copied to clipboard")
		}
	case LogView:
		body = infoStyle.Render("Session log written under your cache directory.") + "\n\n[enter] back"
	default:
		body = m.menu.View()
	}

	footer := m.status
	if m.err != "" {
		footer = errorStyle.Render(m.err)
	}

	return logoStyle.Render(nitrokeyLogo) + "\n\n" +
		headerStyle.Render("Nitrokey Terminal") + "\n" +
		body + "\n" +
		footerStyle.Render(footer)
}
