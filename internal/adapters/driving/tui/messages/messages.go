// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/todo-agent/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewTasks is the task list.
	ViewTasks
	// ViewForm adds or edits a task.
	ViewForm
	// ViewAgent is the natural-language command line.
	ViewAgent
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewTasks:
		return "tasks"
	case ViewForm:
		return "form"
	case ViewAgent:
		return "agent"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// TasksLoaded carries the task list from the service.
type TasksLoaded struct {
	Tasks []domain.Task
	Err   error
}

// EditRequested opens the form. A nil Task means a new task.
type EditRequested struct {
	Task *domain.Task
}

// TaskSaved signals that the form was submitted.
type TaskSaved struct {
	ID int64

	// Created is true for a new task, false for an update.
	Created bool

	// Message is the confirmation shown in the status bar.
	Message string
	Err     error
}

// TaskDeleted signals a task was removed.
type TaskDeleted struct {
	ID      int64
	Deleted bool
	Err     error
}

// TaskToggled signals a task's completion flag was flipped.
type TaskToggled struct {
	ID        int64
	Completed bool
	Err       error
}

// AgentRequested asks the agent to run a natural-language command.
type AgentRequested struct {
	Input string
}

// AgentReplied carries the agent's answer.
type AgentReplied struct {
	Input  string
	Output string
	Err    error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
