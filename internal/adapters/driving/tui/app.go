package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/views/agent"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/views/taskform"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/views/tasks"
	"github.com/custodia-labs/todo-agent/internal/core/services"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	// statusBar is rendered beneath every view except the menu.
	statusBar *status.Bar

	menuView  *menu.View
	tasksView *tasks.View
	formView  *taskform.View
	agentView *agent.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	h := help.New()
	h.ShowAll = true

	a := &App{
		ports:       ports,
		styles:      s,
		keymap:      km,
		help:        h,
		statusBar:   status.NewBar(s, km),
		menuView:    menu.NewView(s),
		currentView: messages.ViewMenu,
	}
	a.buildViews(context.Background())
	return a, nil
}

// buildViews creates the service-backed views bound to ctx.
func (a *App) buildViews(ctx context.Context) {
	a.ctx = ctx
	a.tasksView = tasks.NewView(ctx, a.styles, a.keymap, a.ports.Tasks)
	a.formView = taskform.NewView(ctx, a.styles, a.keymap, a.ports.Tasks)
	a.agentView = agent.NewView(ctx, a.styles, a.ports.Agent)
}

// WithContext sets the context for the app. Call it before Run.
func (a *App) WithContext(ctx context.Context) *App {
	a.buildViews(ctx)
	if a.ready {
		a.setDimensions(a.width, a.height)
	}
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("todo"),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.setDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.EditRequested:
		a.currentView = messages.ViewForm
		a.statusBar.SetBindings(a.keymap.FormHelp())
		a.statusBar.Clear()
		return a, a.formView.Open(msg.Task)

	case messages.TasksLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError, msg.Err.Error())
		}
		a.tasksView, cmd = a.tasksView.Update(msg)
		return a, cmd

	case messages.TaskSaved:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError, msg.Err.Error())
			a.formView, cmd = a.formView.Update(msg)
			return a, cmd
		}
		a.formView, _ = a.formView.Update(msg)
		a.statusBar.SetState(status.StateDone, msg.Message)
		a.currentView = messages.ViewTasks
		a.statusBar.SetBindings(a.keymap.TasksHelp())
		return a, a.tasksView.Reload()

	case messages.TaskDeleted:
		switch {
		case msg.Err != nil:
			a.err = msg.Err
			a.statusBar.SetState(status.StateError, msg.Err.Error())
		case msg.Deleted:
			a.statusBar.SetState(status.StateDone, services.MsgTaskDeleted)
		default:
			a.statusBar.SetState(status.StateError, services.MsgTaskNotFound)
		}
		return a, a.tasksView.Reload()

	case messages.TaskToggled:
		switch {
		case msg.Err != nil:
			a.err = msg.Err
			a.statusBar.SetState(status.StateError, msg.Err.Error())
		case msg.Completed:
			a.statusBar.SetState(status.StateDone, fmt.Sprintf("Task %d marked done.", msg.ID))
		default:
			a.statusBar.SetState(status.StateDone, fmt.Sprintf("Task %d reopened.", msg.ID))
		}
		return a, a.tasksView.Reload()

	case messages.AgentReplied:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError, msg.Err.Error())
		} else {
			a.statusBar.SetState(status.StateReady, "")
		}
		a.agentView, cmd = a.agentView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if msg.Err != nil {
			a.statusBar.SetState(status.StateError, msg.Err.Error())
		}
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages, such as cursor blinks, to the active view.
	return a, a.forward(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit with ctrl+c
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			return a, a.switchTo(messages.ViewMenu)
		}
		return a, nil

	case messages.ViewTasks:
		if msg.Type == tea.KeyEsc && a.tasksView.PendingDelete() == 0 {
			return a, a.switchTo(messages.ViewMenu)
		}
		if msg.String() == "?" {
			return a, a.switchTo(messages.ViewHelp)
		}

	case messages.ViewAgent:
		if msg.Type == tea.KeyEsc {
			return a, a.switchTo(messages.ViewMenu)
		}
		if msg.Type == tea.KeyEnter && a.agentView.Available() && !a.agentView.Working() {
			a.statusBar.SetState(status.StateWorking, "Thinking...")
		}

	case messages.ViewMenu:
		if msg.String() == "?" {
			return a, a.switchTo(messages.ViewHelp)
		}

	case messages.ViewForm:
		// The form handles esc itself
	}

	return a, a.forward(msg)
}

// switchTo activates a view and runs its entry command.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	a.statusBar.Clear()

	switch view {
	case messages.ViewTasks:
		a.statusBar.SetBindings(a.keymap.TasksHelp())
		return a.tasksView.Init()
	case messages.ViewForm:
		a.statusBar.SetBindings(a.keymap.FormHelp())
	case messages.ViewAgent:
		a.statusBar.SetBindings(nil)
		return a.agentView.Focus()
	case messages.ViewMenu, messages.ViewHelp:
		a.statusBar.SetBindings(nil)
	}
	return nil
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewTasks:
		a.tasksView, cmd = a.tasksView.Update(msg)
	case messages.ViewForm:
		a.formView, cmd = a.formView.Update(msg)
	case messages.ViewAgent:
		a.agentView, cmd = a.agentView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}
	return cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewMenu:
		return a.menuView.View()
	case messages.ViewTasks:
		body = a.tasksView.View()
	case messages.ViewForm:
		body = a.formView.View()
	case messages.ViewAgent:
		body = a.agentView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		return a.menuView.View()
	}

	return body + "\n\n" + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(a.help.View(a.keymap))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("In the assistant, type a request such as \"add pay rent due 1 november\"."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// StatusMessage returns the status bar text.
func (a *App) StatusMessage() string {
	return a.statusBar.Message()
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.setDimensions(width, height)
}

func (a *App) setDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// Two lines go to the status bar.
	viewHeight := height - 2
	a.menuView.SetDimensions(width, height)
	a.tasksView.SetDimensions(width, viewHeight)
	a.formView.SetDimensions(width, viewHeight)
	a.agentView.SetDimensions(width, viewHeight)
	a.statusBar.SetWidth(width)
	a.help.Width = width
}
