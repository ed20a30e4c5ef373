package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/services"
)

// AddTaskInput is the input schema for the add_task tool.
type AddTaskInput struct {
	Title       string  `json:"title" jsonschema:"the task title"`
	Description *string `json:"description,omitempty" jsonschema:"optional free-text description"`
	DueDate     *string `json:"due_date,omitempty" jsonschema:"optional due date such as 2025-10-20, tomorrow or 7 october"`
}

// UpdateTaskInput is the input schema for the update_task tool.
// Omitted fields are left unchanged.
type UpdateTaskInput struct {
	TaskID      int64   `json:"task_id" jsonschema:"id of the task to update"`
	Title       *string `json:"title,omitempty" jsonschema:"new title"`
	Description *string `json:"description,omitempty" jsonschema:"new description"`
	DueDate     *string `json:"due_date,omitempty" jsonschema:"new due date"`
	Completed   *bool   `json:"completed,omitempty" jsonschema:"mark the task done or not done"`
}

// DeleteTaskInput is the input schema for the delete_task tool.
type DeleteTaskInput struct {
	TaskID int64 `json:"task_id" jsonschema:"id of the task to delete"`
}

// UpsertTaskInput is the input schema for the upsert_task tool.
type UpsertTaskInput struct {
	Title       string  `json:"title" jsonschema:"title used to find an existing task or create a new one"`
	Description *string `json:"description,omitempty" jsonschema:"description to set"`
	DueDate     *string `json:"due_date,omitempty" jsonschema:"due date to set"`
	Completed   *bool   `json:"completed,omitempty" jsonschema:"completion state to set"`
	Exact       bool    `json:"exact,omitempty" jsonschema:"disable fuzzy title matching"`
}

// FindTaskInput is the input schema for the find_task tool.
type FindTaskInput struct {
	Title     string  `json:"title" jsonschema:"title to look up"`
	Fuzzy     bool    `json:"fuzzy,omitempty" jsonschema:"fall back to word-overlap matching"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum similarity for fuzzy matches (default 0.5)"`
}

// ListTasksInput is the input schema for the list_tasks tool.
type ListTasksInput struct{}

// TaskOutput represents a single task.
type TaskOutput struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Completed   bool    `json:"completed"`
}

// ListTasksOutput is the output schema for the list_tasks tool.
type ListTasksOutput struct {
	Tasks []TaskOutput `json:"tasks"`
	Count int          `json:"count"`
}

// ChangeOutput reports the result of a mutating tool.
type ChangeOutput struct {
	ID      int64  `json:"id,omitempty"`
	Changed bool   `json:"changed"`
	Message string `json:"message"`
}

// UpsertTaskOutput is the output schema for the upsert_task tool.
type UpsertTaskOutput struct {
	ID       int64       `json:"id"`
	Matched  bool        `json:"matched"`
	Previous *TaskOutput `json:"previous,omitempty"`
	Message  string      `json:"message"`
}

// FindTaskOutput is the output schema for the find_task tool.
type FindTaskOutput struct {
	Found bool        `json:"found"`
	Task  *TaskOutput `json:"task,omitempty"`
}

func (s *Server) registerTools() {
	addTool(s, "add_task", "Add a task with an optional description and due date", s.handleAddTask)
	addTool(s, "list_tasks", "List every task in id order", s.handleListTasks)
	addTool(s, "update_task", "Update the given fields of a task by id", s.handleUpdateTask)
	addTool(s, "delete_task", "Delete a task by id", s.handleDeleteTask)
	addTool(s, "upsert_task", "Update the task whose title matches, or create it", s.handleUpsertTask)
	addTool(s, "find_task", "Look a task up by title", s.handleFindTask)
}

// addTool registers a typed handler and records the tool for Tools.
func addTool[In, Out any](s *Server, name, description string, h mcp.ToolHandlerFor[In, Out]) {
	tool := &mcp.Tool{Name: name, Description: description}
	mcp.AddTool(s.server, tool, h)
	s.tools = append(s.tools, ToolInfo{Name: name, Description: description})
}

func (s *Server) handleAddTask(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddTaskInput,
) (*mcp.CallToolResult, ChangeOutput, error) {
	due := s.dueDate(input.DueDate)
	id, err := s.ports.Tasks.Add(ctx, input.Title, input.Description, due)
	if err != nil {
		return nil, ChangeOutput{}, err
	}

	return nil, ChangeOutput{ID: id, Changed: true, Message: services.AddedMessage(id, due)}, nil
}

func (s *Server) handleListTasks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListTasksInput,
) (*mcp.CallToolResult, ListTasksOutput, error) {
	tasks, err := s.ports.Tasks.List(ctx)
	if err != nil {
		return nil, ListTasksOutput{}, err
	}

	output := ListTasksOutput{
		Tasks: make([]TaskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i := range tasks {
		output.Tasks[i] = toTaskOutput(tasks[i])
	}
	return nil, output, nil
}

func (s *Server) handleUpdateTask(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateTaskInput,
) (*mcp.CallToolResult, ChangeOutput, error) {
	patch := domain.TaskPatch{
		Title:       domain.FromPtr(input.Title),
		Description: domain.FromPtr(input.Description),
		DueDate:     domain.FromPtr(s.dueDate(input.DueDate)),
		Completed:   domain.FromPtr(input.Completed),
	}

	ok, err := s.ports.Tasks.Update(ctx, input.TaskID, patch)
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	if !ok {
		return nil, ChangeOutput{ID: input.TaskID, Message: services.MsgTaskNotChanged}, nil
	}
	return nil, ChangeOutput{ID: input.TaskID, Changed: true, Message: services.MsgTaskUpdated}, nil
}

func (s *Server) handleDeleteTask(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteTaskInput,
) (*mcp.CallToolResult, ChangeOutput, error) {
	ok, err := s.ports.Tasks.Delete(ctx, input.TaskID)
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	if !ok {
		return nil, ChangeOutput{ID: input.TaskID, Message: services.MsgTaskNotFound}, nil
	}
	return nil, ChangeOutput{ID: input.TaskID, Changed: true, Message: services.MsgTaskDeleted}, nil
}

func (s *Server) handleUpsertTask(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpsertTaskInput,
) (*mcp.CallToolResult, UpsertTaskOutput, error) {
	due := s.dueDate(input.DueDate)
	res, err := s.ports.Tasks.Upsert(ctx, domain.UpsertInput{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     due,
		Completed:   input.Completed,
		UseFuzzy:    !input.Exact,
	})
	if err != nil {
		return nil, UpsertTaskOutput{}, err
	}

	output := UpsertTaskOutput{ID: res.ID, Matched: res.Matched}
	if res.Matched && res.Previous != nil {
		prev := toTaskOutput(*res.Previous)
		output.Previous = &prev
		output.Message = services.UpdatedMessage(res.ID, res.Previous)
	} else {
		output.Message = services.AddedMessage(res.ID, due)
	}
	return nil, output, nil
}

func (s *Server) handleFindTask(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindTaskInput,
) (*mcp.CallToolResult, FindTaskOutput, error) {
	task, err := s.ports.Tasks.Find(ctx, input.Title, input.Fuzzy, input.Threshold)
	if err != nil {
		return nil, FindTaskOutput{}, err
	}
	if task == nil {
		return nil, FindTaskOutput{}, nil
	}

	out := toTaskOutput(*task)
	return nil, FindTaskOutput{Found: true, Task: &out}, nil
}

// dueDate normalises a due date the same way the agent tools do.
func (s *Server) dueDate(raw *string) *string {
	if raw == nil {
		return nil
	}
	return services.NormalizeDueDate(*raw, s.now())
}

func toTaskOutput(t domain.Task) TaskOutput {
	return TaskOutput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
	}
}
