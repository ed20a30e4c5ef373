package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for todo resources.
	uriScheme = "todo://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the whole list.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tasks",
		Name:        "tasks",
		Description: "All tasks in id order",
		MIMEType:    "application/json",
	}, s.handleTasksResource)

	// Template for a single task.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "tasks/{id}",
		Name:        "task",
		Description: "A single task by id",
		MIMEType:    "application/json",
	}, s.handleTaskResource)
}

// handleTasksResource returns every task as JSON.
func (s *Server) handleTasksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tasks, err := s.ports.Tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	infos := make([]TaskOutput, len(tasks))
	for i := range tasks {
		infos[i] = toTaskOutput(tasks[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling tasks: %w", err)
	}

	return jsonResult(req.Params.URI, data), nil
}

// handleTaskResource returns one task as JSON.
func (s *Server) handleTaskResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, ok := extractTaskID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	task, err := s.ports.Tasks.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task: %w", err)
	}

	data, err := json.MarshalIndent(toTaskOutput(*task), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling task: %w", err)
	}

	return jsonResult(req.Params.URI, data), nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractTaskID extracts the task ID from a URI like todo://tasks/{id}.
func extractTaskID(uri string) (int64, bool) {
	const prefix = uriScheme + "tasks/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(uri, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
