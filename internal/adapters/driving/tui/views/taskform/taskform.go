// Package taskform provides the add/edit task form for the TUI.
package taskform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driving"
	"github.com/custodia-labs/todo-agent/internal/core/services"
)

// Field indices.
const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldCount
)

// View is a three-field form that adds a new task or edits an existing one.
type View struct {
	ctx     context.Context
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.TaskService
	fields  []*input.Field
	focus   int
	editing *domain.Task
	saving  bool
	err     error
	now     func() time.Time
	width   int
	height  int
	ready   bool
}

// NewView creates a new task form.
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
		fields: []*input.Field{
			input.NewField(s, "Title", "What needs doing?"),
			input.NewField(s, "Description", "Optional details"),
			input.NewField(s, "Due date", "e.g. tomorrow, 7 october, 2025-11-01"),
		},
		now:    time.Now,
		width:  80,
		height: 24,
	}
}

// Init initialises the form.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open resets the form for a new task, or fills it from task when editing.
func (v *View) Open(task *domain.Task) tea.Cmd {
	for _, f := range v.fields {
		f.Reset()
		f.Blur()
	}
	v.editing = nil
	v.err = nil
	v.saving = false
	v.focus = fieldTitle

	if task != nil {
		t := *task
		v.editing = &t
		v.fields[fieldTitle].SetValue(t.Title)
		v.fields[fieldDescription].SetValue(deref(t.Description))
		v.fields[fieldDueDate].SetValue(deref(t.DueDate))
	}

	return v.fields[v.focus].Focus()
}

// Update handles messages for the form.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.TaskSaved:
		v.saving = false
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		if v.saving {
			return v, nil
		}

		keyStr := msg.String()
		switch {
		case keymap.Matches(keyStr, v.keymap.Back):
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewTasks} }

		case keymap.Matches(keyStr, v.keymap.NextField):
			return v, v.moveFocus(1)

		case keymap.Matches(keyStr, v.keymap.PrevField):
			return v, v.moveFocus(-1)

		case keyStr == "ctrl+s":
			return v, v.submit()

		case keymap.Matches(keyStr, v.keymap.Select):
			if v.focus < fieldCount-1 {
				return v, v.moveFocus(1)
			}
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

func (v *View) moveFocus(delta int) tea.Cmd {
	v.fields[v.focus].Blur()
	v.focus = (v.focus + delta + fieldCount) % fieldCount
	return v.fields[v.focus].Focus()
}

func (v *View) submit() tea.Cmd {
	title := strings.TrimSpace(v.fields[fieldTitle].Value())
	if err := domain.ValidateTitle(title); err != nil {
		v.err = err
		return nil
	}
	if v.service == nil {
		v.err = errors.New("task service not configured")
		return nil
	}

	v.err = nil
	v.saving = true
	description := strings.TrimSpace(v.fields[fieldDescription].Value())
	rawDue := strings.TrimSpace(v.fields[fieldDueDate].Value())
	service, ctx := v.service, v.ctx

	if v.editing == nil {
		var descPtr *string
		if description != "" {
			descPtr = &description
		}
		due := services.NormalizeDueDate(rawDue, v.now())
		return func() tea.Msg {
			id, err := service.Add(ctx, title, descPtr, due)
			if err != nil {
				return messages.TaskSaved{Created: true, Err: err}
			}
			return messages.TaskSaved{ID: id, Created: true, Message: services.AddedMessage(id, due)}
		}
	}

	id := v.editing.ID
	patch := v.diff(title, description, rawDue)
	if patch.IsEmpty() {
		return func() tea.Msg {
			return messages.TaskSaved{ID: id, Message: services.MsgTaskNotChanged}
		}
	}
	return func() tea.Msg {
		updated, err := service.Update(ctx, id, patch)
		if err != nil {
			return messages.TaskSaved{ID: id, Err: err}
		}
		if !updated {
			return messages.TaskSaved{ID: id, Message: services.MsgTaskNotFound}
		}
		return messages.TaskSaved{ID: id, Message: services.MsgTaskUpdated}
	}
}

// diff builds a patch holding only the fields that differ from the task being edited.
// Clearing the due date stores an empty string.
func (v *View) diff(title, description, rawDue string) domain.TaskPatch {
	var patch domain.TaskPatch
	if title != v.editing.Title {
		patch.Title = domain.Some(title)
	}
	if description != deref(v.editing.Description) {
		patch.Description = domain.Some(description)
	}
	if rawDue != deref(v.editing.DueDate) {
		if due := services.NormalizeDueDate(rawDue, v.now()); due != nil {
			patch.DueDate = domain.Some(*due)
		} else {
			patch.DueDate = domain.Some("")
		}
	}
	return patch
}

// View renders the form.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	title := "New task"
	if v.editing != nil {
		title = fmt.Sprintf("Edit task %d", v.editing.ID)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	for _, f := range v.fields {
		b.WriteString(f.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case v.saving:
		b.WriteString(v.styles.Muted.Render("Saving..."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(v.styles.Help.Render("[Tab] Next field  [Enter] Next/Save  [Ctrl+S] Save  [Esc] Cancel"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	for _, f := range v.fields {
		f.SetWidth(width)
	}
}

// Editing returns the task being edited, or nil for a new task.
func (v *View) Editing() *domain.Task {
	return v.editing
}

// Focus returns the index of the focused field.
func (v *View) Focus() int {
	return v.focus
}

// Err returns the last validation or save error.
func (v *View) Err() error {
	return v.err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
