// Package tui provides an interactive terminal user interface for the todo list.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/todo-agent/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Tasks provides task CRUD. Required.
	Tasks driving.TaskService

	// Agent runs natural-language commands. Optional; the assistant
	// view reports itself unavailable without it.
	Agent driving.AgentService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(tasks driving.TaskService, agent driving.AgentService) *Ports {
	return &Ports{
		Tasks: tasks,
		Agent: agent,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Tasks == nil {
		return ErrMissingTaskService
	}
	return nil
}
