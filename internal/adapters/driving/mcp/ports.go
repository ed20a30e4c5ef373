package mcp

import (
	"github.com/custodia-labs/todo-agent/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Tasks manages the todo list.
	Tasks driving.TaskService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p == nil || p.Tasks == nil {
		return ErrMissingTaskService
	}
	return nil
}
