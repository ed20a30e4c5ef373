// Package tasks provides the task list view for the TUI.
package tasks

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driving"
)

// View lists tasks and dispatches edit, toggle and delete actions.
type View struct {
	ctx     context.Context
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.TaskService
	list    *list.TaskList
	width   int
	height  int
	ready   bool
	loading bool
	err     error

	// pendingDelete holds the id awaiting y/n confirmation, or 0.
	pendingDelete int64
}

// NewView creates a new task list view.
func NewView(ctx context.Context, s *styles.Styles, km *keymap.KeyMap, service driving.TaskService) *View {
	if ctx == nil {
		ctx = context.Background()
	}
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		ctx:     ctx,
		styles:  s,
		keymap:  km,
		service: service,
		list:    list.NewTaskList(s),
		width:   80,
		height:  24,
	}
}

// Init loads the task list.
func (v *View) Init() tea.Cmd {
	return v.Reload()
}

// Reload returns a command that re-reads all tasks.
func (v *View) Reload() tea.Cmd {
	if v.service == nil {
		return nil
	}
	v.loading = true
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		tasks, err := service.List(ctx)
		return messages.TasksLoaded{Tasks: tasks, Err: err}
	}
}

// Update handles messages for the task list view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.TasksLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetTasks(msg.Tasks)
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	if v.pendingDelete != 0 {
		id := v.pendingDelete
		v.pendingDelete = 0
		if keyStr == "y" || keyStr == "Y" {
			return v, v.deleteTask(id)
		}
		return v, nil
	}

	switch {
	case keymap.Matches(keyStr, v.keymap.Add):
		return v, func() tea.Msg { return messages.EditRequested{} }

	case keymap.Matches(keyStr, v.keymap.Edit):
		task := v.list.SelectedTask()
		if task == nil {
			return v, nil
		}
		return v, func() tea.Msg { return messages.EditRequested{Task: task} }

	case keymap.Matches(keyStr, v.keymap.Toggle):
		task := v.list.SelectedTask()
		if task == nil {
			return v, nil
		}
		return v, v.toggleTask(task.ID, !task.Completed)

	case keymap.Matches(keyStr, v.keymap.Delete):
		if task := v.list.SelectedTask(); task != nil {
			v.pendingDelete = task.ID
		}
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Reload):
		return v, v.Reload()
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *View) toggleTask(id int64, completed bool) tea.Cmd {
	if v.service == nil {
		return nil
	}
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		_, err := service.Update(ctx, id, domain.TaskPatch{Completed: domain.Some(completed)})
		return messages.TaskToggled{ID: id, Completed: completed, Err: err}
	}
}

func (v *View) deleteTask(id int64) tea.Cmd {
	if v.service == nil {
		return nil
	}
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		deleted, err := service.Delete(ctx, id)
		return messages.TaskDeleted{ID: id, Deleted: deleted, Err: err}
	}
}

// View renders the task list.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Tasks"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.loading && v.list.IsEmpty():
		b.WriteString(v.styles.Muted.Render("Loading..."))
	default:
		b.WriteString(v.list.View())
	}
	b.WriteString("\n\n")

	if v.pendingDelete != 0 {
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Delete task %d? [y/N]", v.pendingDelete)))
		b.WriteString("\n")
	}

	b.WriteString(v.styles.Help.Render("[a] Add  [e/Enter] Edit  [space] Done  [d] Delete  [r] Reload  [Esc] Back"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, height-4)
}

// Tasks returns the tasks currently shown.
func (v *View) Tasks() []domain.Task {
	return v.list.Tasks()
}

// PendingDelete returns the id awaiting confirmation, or 0.
func (v *View) PendingDelete() int64 {
	return v.pendingDelete
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
