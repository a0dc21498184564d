// Package tui provides the interactive terminal dashboard for FocusBreaker.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")
	cyanColor    = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	taskItemStyle = lipgloss.NewStyle().
			Padding(0, 2)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true).
			Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cyanColor)

	breakStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warningColor)

	daemonOnlineStyle = lipgloss.NewStyle().
				Foreground(successColor).
				Bold(true)

	daemonOfflineStyle = lipgloss.NewStyle().
				Foreground(errorColor)
)

// App is the main TUI application model.
type App struct {
	client       *Client
	tasks        []TaskItem
	selectedIdx  int
	input        textinput.Model
	bar          progress.Model
	width        int
	height       int
	mode         string // "dashboard", "tasks"
	session      *SessionView
	streaks      []StreakView
	message      string
	daemonOnline bool
}

// New creates a new TUI application.
func New(apiAddr string) *App {
	ti := textinput.New()
	ti.Placeholder = "Type: add <minutes> <mode> <name> | extend <minutes>"
	ti.Focus()
	ti.CharLimit = 128
	ti.Width = 80

	bar := progress.New(progress.WithGradient("#7C3AED", "#06B6D4"))

	return &App{
		client: NewClient(apiAddr),
		input:  ti,
		bar:    bar,
		mode:   "dashboard",
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		a.fetchSession(),
		a.fetchStreaks(),
		a.checkDaemon(),
		a.tickCmd(),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if a.input.Value() == "" || msg.String() == "ctrl+c" {
				return a, tea.Quit
			}

		case "esc":
			if a.mode == "tasks" {
				a.mode = "dashboard"
				return a, a.fetchSession()
			}

		case "up":
			if a.mode == "tasks" && a.selectedIdx > 0 {
				a.selectedIdx--
			}

		case "down":
			if a.mode == "tasks" && a.selectedIdx < len(a.tasks)-1 {
				a.selectedIdx++
			}

		case "tab":
			if a.mode == "dashboard" {
				a.mode = "tasks"
				return a, a.fetchTasks()
			}
			a.mode = "dashboard"

		case "enter":
			cmd := strings.TrimSpace(a.input.Value())
			if cmd != "" {
				a.input.SetValue("")
				return a, a.executeCommand(cmd)
			}
			if a.mode == "tasks" && len(a.tasks) > 0 {
				task := a.tasks[a.selectedIdx]
				a.mode = "dashboard"
				return a, a.startSession(task.ID)
			}

		case "s":
			if a.input.Value() == "" && a.hasSession() {
				return a, a.sessionAction("snooze")
			}

		case "k":
			if a.input.Value() == "" && a.hasSession() {
				return a, a.sessionAction("skip")
			}

		case "b":
			if a.input.Value() == "" && a.hasSession() {
				return a, a.sessionAction("take")
			}

		case "c":
			if a.input.Value() == "" && a.hasSession() {
				return a, a.sessionAction("complete")
			}

		case "x":
			if a.input.Value() == "" && a.hasSession() {
				return a, a.sessionAction("exit")
			}

		case "r":
			return a, tea.Batch(a.fetchSession(), a.fetchStreaks(), a.checkDaemon())
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = msg.Width - 4
		a.bar.Width = min(msg.Width-10, 60)

	case sessionLoadedMsg:
		a.session = msg.session
		a.daemonOnline = true

	case tasksLoadedMsg:
		a.tasks = msg.tasks
		if a.selectedIdx >= len(a.tasks) {
			a.selectedIdx = max(0, len(a.tasks)-1)
		}

	case streaksLoadedMsg:
		a.streaks = msg.streaks

	case daemonStatusMsg:
		a.daemonOnline = msg.online

	case tickMsg:
		if a.mode == "dashboard" {
			cmds = append(cmds, a.fetchSession())
		}
		cmds = append(cmds, a.tickCmd())

	case commandResultMsg:
		a.message = msg.message
		return a, tea.Batch(a.fetchSession(), a.fetchStreaks())

	case errMsg:
		a.message = "Error: " + msg.err.Error()
	}

	// Update input
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	daemonStatus := daemonOnlineStyle.Render("● DAEMON")
	if !a.daemonOnline {
		daemonStatus = daemonOfflineStyle.Render("○ DAEMON")
	}

	header := titleStyle.Render("⏳ FocusBreaker")
	header += "  " + daemonStatus
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", max(a.width, 1)) + "\n")

	contentHeight := a.height - 8
	if contentHeight < 5 {
		contentHeight = 5
	}

	switch a.mode {
	case "tasks":
		b.WriteString(a.renderTaskList(contentHeight))
	default:
		b.WriteString(a.renderDashboard())
	}

	// Message bar
	if a.message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(successColor)
		if strings.HasPrefix(a.message, "Error") {
			msgStyle = lipgloss.NewStyle().Foreground(errorColor)
		}
		b.WriteString("\n" + msgStyle.Render(a.message))
	} else {
		b.WriteString("\n")
	}

	// Input box
	b.WriteString("\n")
	b.WriteString(inputBoxStyle.Render(a.input.View()))
	b.WriteString("\n")

	// Status bar
	var status string
	switch a.mode {
	case "tasks":
		status = fmt.Sprintf(" Tasks: %d | ↑↓:nav | Enter:start | Tab:dashboard | Esc:back | Ctrl+C:quit", len(a.tasks))
	default:
		status = " s:snooze | k:skip | b:break now | c:complete | x:exit | Tab:tasks | r:refresh | Ctrl+C:quit"
	}
	b.WriteString(statusBarStyle.Width(max(a.width, 1)).Render(status))

	return b.String()
}

func (a *App) renderDashboard() string {
	var b strings.Builder

	if a.session == nil || a.session.SessionID == "" {
		if a.session != nil && a.session.CoolingDown {
			b.WriteString("\n  " + breakStyle.Render("❄ Cooldown in progress") + "\n")
			b.WriteString(fmt.Sprintf("  Next session unlocks in %s\n",
				formatSeconds(a.session.CooldownRemainingSeconds)))
		} else {
			b.WriteString("\n  No session running.\n")
			b.WriteString("  " + helpStyle.Render("Press Tab to pick a task, or type: add <minutes> <mode> <name>") + "\n")
		}
		b.WriteString(a.renderStreaks())
		return b.String()
	}

	s := a.session
	b.WriteString(fmt.Sprintf("\n  Session %s  %s\n",
		shortID(s.SessionID),
		lipgloss.NewStyle().Foreground(cyanColor).Render("["+strings.ToUpper(s.Mode)+"]")))

	if s.OnBreak {
		b.WriteString("\n  " + breakStyle.Render("☕ ON BREAK") + "\n")
		b.WriteString(fmt.Sprintf("  Back to work in %s\n", formatSeconds(s.BreakRemainingSeconds)))
	} else {
		b.WriteString("\n  " + clockStyle.Render(s.Clock) + " remaining\n\n")
		b.WriteString("  " + a.bar.ViewAs(s.ProgressPercent/100) + "\n")
		if s.NextBreakTime != nil {
			until := time.Until(*s.NextBreakTime)
			if until > 0 {
				b.WriteString(fmt.Sprintf("\n  Next break in %s\n", formatSeconds(int(until.Seconds()))))
			}
		}
	}

	b.WriteString(fmt.Sprintf("\n  Breaks taken: %d   skipped: %d   snooze passes left: %d\n",
		s.BreaksTaken, s.BreaksSkipped, s.SnoozePassesRemaining))

	b.WriteString(a.renderStreaks())
	return b.String()
}

func (a *App) renderStreaks() string {
	if len(a.streaks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n  🔥 Streaks\n")
	for _, s := range a.streaks {
		label := strings.ReplaceAll(s.Type, "_", " ")
		b.WriteString(fmt.Sprintf("    %-20s %d (best %d)\n", label, s.Current, s.Best))
	}
	return b.String()
}

func (a *App) renderTaskList(height int) string {
	if len(a.tasks) == 0 {
		return "\n  No tasks found. Type: add <minutes> <mode> <name> to create one.\n"
	}

	var lines []string
	for i, task := range a.tasks {
		label := fmt.Sprintf("%s  %3dm  [%s]  %s", shortID(task.ID), task.AllocatedMinutes, task.Mode, task.Name)
		if i == a.selectedIdx {
			lines = append(lines, selectedStyle.Render("▶ "+label))
		} else {
			lines = append(lines, taskItemStyle.Render("  "+label))
		}
	}

	if len(lines) > height {
		start := a.selectedIdx - height/2
		if start < 0 {
			start = 0
		}
		end := start + height
		if end > len(lines) {
			end = len(lines)
			start = max(0, end-height)
		}
		lines = lines[start:end]
	}

	return strings.Join(lines, "\n")
}

func (a *App) hasSession() bool {
	return a.session != nil && a.session.SessionID != ""
}

// executeCommand parses and runs a typed command.
func (a *App) executeCommand(cmd string) tea.Cmd {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return nil
	}

	switch parts[0] {
	case "add":
		// add <minutes> <mode> <name...>
		if len(parts) < 4 {
			return resultCmd("Usage: add <minutes> <mode> <name>")
		}
		minutes, err := strconv.Atoi(parts[1])
		if err != nil {
			return resultCmd("Minutes must be a number")
		}
		mode := parts[2]
		name := strings.Join(parts[3:], " ")
		return func() tea.Msg {
			if _, err := a.client.CreateTask(name, minutes, mode); err != nil {
				return errMsg{err}
			}
			return commandResultMsg{message: "✓ Task created"}
		}

	case "extend":
		if len(parts) != 2 {
			return resultCmd("Usage: extend <minutes>")
		}
		extra, err := strconv.Atoi(parts[1])
		if err != nil {
			return resultCmd("Minutes must be a number")
		}
		if !a.hasSession() {
			return resultCmd("No session running")
		}
		id := a.session.SessionID
		return func() tea.Msg {
			if err := a.client.ExtendSession(id, extra); err != nil {
				return errMsg{err}
			}
			return commandResultMsg{message: fmt.Sprintf("✓ Extended by %d minutes", extra)}
		}

	case "abandon":
		if !a.hasSession() {
			return resultCmd("No session running")
		}
		return a.sessionAction("abandon")

	default:
		return resultCmd("Unknown command: " + parts[0])
	}
}

func (a *App) sessionAction(action string) tea.Cmd {
	id := a.session.SessionID
	return func() tea.Msg {
		var err error
		var message string
		switch action {
		case "snooze":
			ok, reason, snoozeErr := a.client.SnoozeBreak(id)
			err = snoozeErr
			if err == nil && !ok {
				message = "✗ Snooze refused: " + reason
			} else {
				message = "✓ Break snoozed"
			}
		case "skip":
			ok, reason, skipErr := a.client.SkipBreak(id)
			err = skipErr
			if err == nil && !ok {
				message = "✗ Skip refused: " + reason
			} else {
				message = "✓ Break skipped"
			}
		case "take":
			ok, reason, takeErr := a.client.TakeBreak(id)
			err = takeErr
			if err == nil && !ok {
				message = "✗ Break refused: " + reason
			} else {
				message = "✓ Break started"
			}
		case "complete":
			err = a.client.CompleteSession(id)
			message = "✓ Session completed"
		case "abandon":
			err = a.client.AbandonSession(id)
			message = "Session abandoned"
		case "exit":
			err = a.client.EmergencyExit(id)
			message = "Emergency exit used"
		}
		if err != nil {
			return errMsg{err}
		}
		return commandResultMsg{message: message}
	}
}

func (a *App) startSession(taskID string) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.client.StartSession(taskID); err != nil {
			return errMsg{err}
		}
		return commandResultMsg{message: "✓ Session started"}
	}
}

// --- Messages and Commands ---

type sessionLoadedMsg struct{ session *SessionView }
type tasksLoadedMsg struct{ tasks []TaskItem }
type streaksLoadedMsg struct{ streaks []StreakView }
type daemonStatusMsg struct{ online bool }
type commandResultMsg struct{ message string }
type errMsg struct{ err error }
type tickMsg time.Time

func (a *App) fetchSession() tea.Cmd {
	return func() tea.Msg {
		session, err := a.client.ActiveSession()
		if err != nil {
			return daemonStatusMsg{online: false}
		}
		return sessionLoadedMsg{session: session}
	}
}

func (a *App) fetchTasks() tea.Cmd {
	return func() tea.Msg {
		tasks, err := a.client.ListTasks()
		if err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{tasks: tasks}
	}
}

func (a *App) fetchStreaks() tea.Cmd {
	return func() tea.Msg {
		streaks, err := a.client.ListStreaks()
		if err != nil {
			return errMsg{err}
		}
		return streaksLoadedMsg{streaks: streaks}
	}
}

func (a *App) checkDaemon() tea.Cmd {
	return func() tea.Msg {
		ok, err := a.client.CheckHealth()
		return daemonStatusMsg{online: err == nil && ok}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func resultCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{message: message}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	m := total / 60
	s := total % 60
	if m >= 60 {
		return fmt.Sprintf("%dh %dm", m/60, m%60)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
