// Package mcp provides an MCP (Model Context Protocol) server adapter for the todo app.
// It lets AI assistants manage the task list through typed tools and resources.
package mcp

import "errors"

// ErrMissingTaskService is returned when the task service is not provided.
var ErrMissingTaskService = errors.New("mcp: task service is required")
