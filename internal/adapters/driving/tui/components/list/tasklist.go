// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/todo-agent/internal/core/domain"
)

// TaskList displays tasks in a navigable list.
type TaskList struct {
	tasks    []domain.Task
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewTaskList creates a new task list component.
func NewTaskList(s *styles.Styles) *TaskList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &TaskList{
		styles: s,
		width:  80,
		height: 20,
	}
}

// Init initialises the task list.
func (l *TaskList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *TaskList) Update(msg tea.Msg) (*TaskList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home", "g":
			l.selected = 0
		case "end", "G":
			if len(l.tasks) > 0 {
				l.selected = len(l.tasks) - 1
			}
		}
	}
	return l, nil
}

// View renders the visible window of tasks.
func (l *TaskList) View() string {
	if len(l.tasks) == 0 {
		return l.styles.Muted.Render(domain.RenderTasks(nil))
	}

	// One line per task, leaving room for the view chrome.
	visible := l.height - 6
	if visible < 1 {
		visible = 1
	}

	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.tasks) {
		end = len(l.tasks)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, l.renderTask(i, &l.tasks[i]))
	}
	return strings.Join(lines, "\n")
}

// renderTask formats one task using its canonical text form.
func (l *TaskList) renderTask(index int, task *domain.Task) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	text := task.String()
	maxLen := l.width - 4
	if maxLen < 20 {
		maxLen = 20
	}
	if r := []rune(text); len(r) > maxLen {
		text = string(r[:maxLen-3]) + "..."
	}

	switch {
	case index == l.selected:
		return l.styles.Selected.Render(indicator + text)
	case task.Completed:
		return l.styles.Normal.Render(indicator) + l.styles.Done.Render(text)
	case task.DueDate != nil && *task.DueDate != "":
		return l.styles.Normal.Render(indicator) + l.styles.Due.Render(text)
	default:
		return l.styles.Normal.Render(fmt.Sprintf("%s%s", indicator, text))
	}
}

// SetTasks replaces the list, keeping the selection in range.
func (l *TaskList) SetTasks(tasks []domain.Task) {
	l.tasks = tasks
	if l.selected >= len(tasks) {
		l.selected = len(tasks) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Tasks returns the current tasks.
func (l *TaskList) Tasks() []domain.Task {
	return l.tasks
}

// Selected returns the index of the selected task.
func (l *TaskList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *TaskList) SetSelected(index int) {
	if index >= 0 && index < len(l.tasks) {
		l.selected = index
	}
}

// SelectedTask returns the currently selected task, or nil if none.
func (l *TaskList) SelectedTask() *domain.Task {
	if len(l.tasks) == 0 || l.selected < 0 || l.selected >= len(l.tasks) {
		return nil
	}
	task := l.tasks[l.selected]
	return &task
}

// MoveUp moves selection up.
func (l *TaskList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *TaskList) MoveDown() {
	if l.selected < len(l.tasks)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *TaskList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of tasks.
func (l *TaskList) Count() int {
	return len(l.tasks)
}

// IsEmpty returns whether the list is empty.
func (l *TaskList) IsEmpty() bool {
	return len(l.tasks) == 0
}
