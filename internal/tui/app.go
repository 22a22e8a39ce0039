// Package tui provides the interactive terminal UI for recur.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/recur/internal/display"
	"github.com/fentz26/recur/internal/models"
	"github.com/fentz26/recur/internal/tasks"
)

// PollInterval is how often the task list is refetched from the daemon.
const PollInterval = 5 * time.Second

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6366F1")
	successColor   = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	fgColor        = lipgloss.Color("#F9FAFB")
	cyanColor      = lipgloss.Color("#06B6D4")

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

	onlineStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

// App is the main TUI application model.
type App struct {
	client *Client
	clock  func() time.Time

	order     tasks.Ordering
	orderName string

	// tasks is kept sorted at now.
	tasks      []models.Task
	now        time.Time
	selectedID string

	input        textinput.Model
	suggestions  *Suggestions
	width        int
	height       int
	message      string
	loading      bool
	daemonOnline bool
}

// New creates a new TUI application. An unknown orderName falls back to the
// recurring order.
func New(apiAddr, orderName string) *App {
	ti := textinput.New()
	ti.Placeholder = "Type / for commands, Enter toggles the selected task"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 80

	a := &App{
		client:      NewClient(apiAddr),
		clock:       func() time.Time { return time.Now().UTC().Round(0) },
		input:       ti,
		suggestions: NewSuggestions(),
	}
	if err := a.setOrder(orderName); err != nil {
		a.setOrder(tasks.OrderRecurring)
	}
	a.now = a.clock()
	return a
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
		a.fetchTasks(),
		tickCmd(),
		pollCmd(),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit

		case "esc":
			a.input.SetValue("")
			a.suggestions.Update("")
			return a, nil

		case "up":
			if a.suggestions.IsVisible() {
				a.suggestions.Prev()
			} else {
				a.moveSelection(-1)
			}
			return a, nil

		case "down":
			if a.suggestions.IsVisible() {
				a.suggestions.Next()
			} else {
				a.moveSelection(1)
			}
			return a, nil

		case "tab":
			if selected := a.suggestions.Selected(); selected != nil {
				a.input.SetValue("/" + selected.Text + " ")
				a.input.CursorEnd()
				a.suggestions.Update(a.input.Value())
			}
			return a, nil

		case "enter":
			if a.suggestions.IsVisible() {
				if selected := a.suggestions.Selected(); selected != nil {
					a.input.SetValue("/" + selected.Text + " ")
					a.input.CursorEnd()
					a.suggestions.Update(a.input.Value())
				}
				return a, nil
			}
			input := strings.TrimSpace(a.input.Value())
			a.input.SetValue("")
			if input != "" {
				return a, a.executeCommand(input)
			}
			return a, a.toggleSelected()
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = msg.Width - 6

	case tickMsg:
		a.now = time.Time(msg)
		a.resort()
		return a, tickCmd()

	case pollMsg:
		return a, tea.Batch(a.fetchTasks(), pollCmd())

	case tasksLoadedMsg:
		a.loading = false
		a.daemonOnline = true
		a.tasks = msg.tasks
		a.resort()

	case fetchFailedMsg:
		a.loading = false
		a.daemonOnline = false
		a.message = "Error: " + msg.err.Error()

	case commandResultMsg:
		a.message = msg.message
		return a, a.fetchTasks()
	}

	// Update input
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)

	a.suggestions.Update(a.input.Value())

	return a, tea.Batch(cmds...)
}

// resort orders the tasks at now and keeps the selection on the same task.
func (a *App) resort() {
	a.tasks = tasks.Sort(a.tasks, a.order(a.now))
	if a.indexOf(a.selectedID) < 0 {
		a.selectedID = ""
		if len(a.tasks) > 0 {
			a.selectedID = a.tasks[0].ID
		}
	}
}

func (a *App) setOrder(name string) error {
	order, err := tasks.OrderByName(name)
	if err != nil {
		return err
	}
	a.order = order
	a.orderName = name
	a.resort()
	return nil
}

func (a *App) indexOf(id string) int {
	for i, t := range a.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (a *App) moveSelection(delta int) {
	if len(a.tasks) == 0 {
		return
	}
	i := a.indexOf(a.selectedID) + delta
	if i < 0 {
		i = 0
	}
	if i >= len(a.tasks) {
		i = len(a.tasks) - 1
	}
	a.selectedID = a.tasks[i].ID
}

func (a *App) selected() (models.Task, bool) {
	i := a.indexOf(a.selectedID)
	if i < 0 {
		return models.Task{}, false
	}
	return a.tasks[i], true
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	daemonStatus := onlineStyle.Render("● DAEMON")
	if !a.daemonOnline {
		daemonStatus = offlineStyle.Render("○ DAEMON")
	}

	header := titleStyle.Render("recur")
	header += "  " + daemonStatus
	header += "  " + lipgloss.NewStyle().Foreground(cyanColor).Render(fmt.Sprintf("[%d tasks]", len(a.tasks)))
	header += "  " + lipgloss.NewStyle().Foreground(mutedColor).Render("order: "+a.orderName)

	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", a.width) + "\n")

	contentHeight := a.height - 8
	if contentHeight < 5 {
		contentHeight = 5
	}
	b.WriteString(a.renderTaskList(contentHeight))

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

	b.WriteString("\n")
	b.WriteString(inputBoxStyle.Render(a.input.View()))

	if a.suggestions.IsVisible() {
		b.WriteString("\n")
		b.WriteString(a.suggestions.Render(a.width))
	}
	b.WriteString("\n")

	status := fmt.Sprintf(" %s | ↑↓:nav | Enter:toggle done | /:commands | Ctrl+C:quit", a.now.Local().Format("15:04:05"))
	b.WriteString(statusBarStyle.Width(a.width).Render(status))

	return b.String()
}

func (a *App) renderTaskList(height int) string {
	if a.loading && len(a.tasks) == 0 {
		return "\n  Loading tasks...\n"
	}
	if len(a.tasks) == 0 {
		return "\n  No tasks yet. Type: /add <description> to create one.\n"
	}

	selectedIdx := a.indexOf(a.selectedID)
	var lines []string
	for i, t := range a.tasks {
		d := tasks.Derive(t, a.now)
		mark := "○"
		if d.Completed {
			mark = "●"
		}
		status := fmt.Sprintf("%-18s", display.Status(t, d, a.now))
		every := fmt.Sprintf("%-18s", display.Every(t))

		if i == selectedIdx {
			lines = append(lines, selectedStyle.Render(fmt.Sprintf("▶ %s %s %s %s", mark, status, every, t.Description)))
			continue
		}
		lines = append(lines, taskItemStyle.Render(fmt.Sprintf("  %s %s %s %s", mark, statusStyle(d).Render(status), every, t.Description)))
	}

	// Limit visible lines
	if len(lines) > height {
		start := selectedIdx - height/2
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

func statusStyle(d tasks.Derived) lipgloss.Style {
	switch {
	case d.Completed:
		return lipgloss.NewStyle().Foreground(successColor)
	case d.Pending.IsSet():
		return lipgloss.NewStyle().Foreground(warningColor)
	default:
		return lipgloss.NewStyle().Foreground(fgColor)
	}
}

func (a *App) fetchTasks() tea.Cmd {
	a.loading = true
	client := a.client
	return func() tea.Msg {
		list, err := client.ListTasks()
		if err != nil {
			return fetchFailedMsg{err}
		}
		return tasksLoadedMsg{list}
	}
}

// toggleSelected flips the selected task's done state, locally first.
func (a *App) toggleSelected() tea.Cmd {
	t, ok := a.selected()
	if !ok {
		return nil
	}
	done := !tasks.IsCompleted(t, a.now)
	a.tasks[a.indexOf(t.ID)] = tasks.MarkDone(t, done, a.now)
	a.resort()

	client := a.client
	return func() tea.Msg {
		if _, err := client.SetDone(t.ID, done); err != nil {
			return commandResultMsg{"Error: " + err.Error()}
		}
		if done {
			return commandResultMsg{"✓ Done: " + t.Description}
		}
		return commandResultMsg{"✓ Not done: " + t.Description}
	}
}

// parseCommand splits "/name args" (the slash is optional) into its parts.
func parseCommand(input string) (name, arg string) {
	input = strings.TrimPrefix(strings.TrimSpace(input), "/")
	name, arg, _ = strings.Cut(input, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func (a *App) executeCommand(input string) tea.Cmd {
	name, arg := parseCommand(input)
	client := a.client
	selected, hasSelected := a.selected()

	result := func(message string) tea.Cmd {
		return func() tea.Msg { return commandResultMsg{message} }
	}
	needSelected := func(fn func(t models.Task) tea.Msg) tea.Cmd {
		if !hasSelected {
			return result("No task selected")
		}
		return func() tea.Msg { return fn(selected) }
	}

	switch name {
	case "add":
		if arg == "" {
			return result("Usage: /add <description>")
		}
		return func() tea.Msg {
			t, err := client.CreateTask(models.TaskFields{Description: &arg})
			if err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			return commandResultMsg{fmt.Sprintf("✓ Created task: %s", display.ShortID(t.ID))}
		}

	case "repeat":
		secs, err := tasks.ParseCooldown(arg)
		if err != nil {
			return result("Usage: /repeat <cooldown>, e.g. /repeat 3d")
		}
		repeat := true
		return needSelected(func(t models.Task) tea.Msg {
			fields := models.TaskFields{RepeatEnabled: &repeat, CooldownSeconds: &secs}
			if _, err := client.EditTask(t.ID, fields); err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			return commandResultMsg{fmt.Sprintf("✓ %s repeats %s", t.Description, display.Every(fields.ApplyTo(t)))}
		})

	case "once":
		repeat := false
		return needSelected(func(t models.Task) tea.Msg {
			if _, err := client.EditTask(t.ID, models.TaskFields{RepeatEnabled: &repeat}); err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			return commandResultMsg{"✓ One-shot: " + t.Description}
		})

	case "edit":
		if arg == "" {
			return result("Usage: /edit <description>")
		}
		return needSelected(func(t models.Task) tea.Msg {
			if _, err := client.EditTask(t.ID, models.TaskFields{Description: &arg}); err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			return commandResultMsg{"✓ Renamed to " + arg}
		})

	case "done", "undo":
		done := name == "done"
		return needSelected(func(t models.Task) tea.Msg {
			if _, err := client.SetDone(t.ID, done); err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			return commandResultMsg{fmt.Sprintf("✓ %s: %s", name, t.Description)}
		})

	case "rm":
		return needSelected(func(t models.Task) tea.Msg {
			if err := client.DeleteTask(t.ID); err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			return commandResultMsg{"✓ Deleted: " + t.Description}
		})

	case "order":
		if err := a.setOrder(arg); err != nil {
			a.message = "Error: " + err.Error()
			return nil
		}
		a.message = "✓ Order: " + arg
		return nil

	case "q", "quit", "exit":
		return tea.Quit

	default:
		return result(fmt.Sprintf("Unknown: %s (try: /add, /repeat, /once, /edit, /rm)", name))
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type commandResultMsg struct {
	message string
}

type tasksLoadedMsg struct {
	tasks []models.Task
}

type fetchFailedMsg struct {
	err error
}

type tickMsg time.Time

type pollMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t.UTC().Round(0))
	})
}

func pollCmd() tea.Cmd {
	return tea.Tick(PollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}
