package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driven"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driving"
	"github.com/custodia-labs/todo-agent/internal/logger"
)

// Agent tool names.
const (
	ToolAddTask     = "add_task"
	ToolGetAllTasks = "get_all_tasks"
	ToolUpdateTask  = "update_task"
	ToolDeleteTask  = "delete_task"
	ToolUpsertTask  = "upsert_task"
	ToolFindTask    = "find_task"
	ToolGetWeather  = "get_weather"
)

// Tool output texts.
const (
	MsgTaskUpdated    = "Task updated successfully."
	MsgTaskNotChanged = "Task not found or no changes made."
	MsgTaskDeleted    = "Task deleted successfully."
	MsgTaskNotFound   = "Task not found."
	MsgWeatherFailed  = "Failed to get weather."
)

type toolHandler func(ctx context.Context, args json.RawMessage) (string, error)

type tool struct {
	def     driven.ToolDefinition
	schema  *jsonschema.Schema
	handler toolHandler
}

// Toolbox holds the tools the agent may call.
type Toolbox struct {
	tasks   driving.TaskService
	weather driven.WeatherService
	now     func() time.Time

	tools map[string]*tool
	order []string
}

// ToolboxOption configures a Toolbox.
type ToolboxOption func(*Toolbox)

// WithClock overrides the clock used to resolve relative due dates.
func WithClock(now func() time.Time) ToolboxOption {
	return func(tb *Toolbox) {
		tb.now = now
	}
}

// NewToolbox registers the task tools, plus get_weather when weather is non-nil.
func NewToolbox(tasks driving.TaskService, weather driven.WeatherService, opts ...ToolboxOption) (*Toolbox, error) {
	tb := &Toolbox{
		tasks:   tasks,
		weather: weather,
		now:     time.Now,
		tools:   make(map[string]*tool),
	}
	for _, opt := range opts {
		opt(tb)
	}

	regs := []struct {
		name, desc, schema string
		handler            toolHandler
	}{
		{ToolAddTask, "Add a task with optional description and due date.", addTaskSchema, tb.addTask},
		{ToolGetAllTasks, "Retrieve all tasks from the database.", emptySchema, tb.getAllTasks},
		{ToolUpdateTask, "Update a task identified by task_id with optional fields.", updateTaskSchema, tb.updateTask},
		{ToolDeleteTask, "Delete a task by task_id.", deleteTaskSchema, tb.deleteTask},
		{ToolUpsertTask, "Update the task whose title matches (allowing fuzzy matches), or create it if none does.", upsertTaskSchema, tb.upsertTask},
		{ToolFindTask, "Find a task by title, allowing fuzzy matches.", findTaskSchema, tb.findTask},
	}
	if weather != nil {
		regs = append(regs, struct {
			name, desc, schema string
			handler            toolHandler
		}{ToolGetWeather, "Get the weather forecast for a location on a specific date. Supports 'today' and 'tomorrow'.", weatherSchema, tb.getWeather})
	}

	compiler := jsonschema.NewCompiler()
	for _, r := range regs {
		url := "mem://tools/" + r.name + ".json"
		if err := compiler.AddResource(url, strings.NewReader(r.schema)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", r.name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", r.name, err)
		}
		tb.tools[r.name] = &tool{
			def: driven.ToolDefinition{
				Name:        r.name,
				Description: r.desc,
				Parameters:  json.RawMessage(r.schema),
			},
			schema:  schema,
			handler: r.handler,
		}
		tb.order = append(tb.order, r.name)
	}

	return tb, nil
}

// Definitions returns the tool definitions in registration order.
func (tb *Toolbox) Definitions() []driven.ToolDefinition {
	defs := make([]driven.ToolDefinition, 0, len(tb.order))
	for _, name := range tb.order {
		defs = append(defs, tb.tools[name].def)
	}
	return defs
}

// Call validates args against the tool's schema and runs it.
func (tb *Toolbox) Call(ctx context.Context, name string, args json.RawMessage) (string, error) {
	t, ok := tb.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownTool, name)
	}

	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	var instance any
	if err := json.Unmarshal(args, &instance); err != nil {
		return "", fmt.Errorf("%w: %s arguments are not JSON: %w", domain.ErrInvalidArgument, name, err)
	}
	if err := t.schema.Validate(instance); err != nil {
		return "", fmt.Errorf("%w: %s: %s", domain.ErrInvalidArgument, name, schemaMessage(err))
	}

	logger.Debug("Tool call: %s %s", name, args)
	return t.handler(ctx, args)
}

// schemaMessage reports the first leaf validation failure.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + ve.Message
}

type addTaskArgs struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
}

func (tb *Toolbox) addTask(ctx context.Context, raw json.RawMessage) (string, error) {
	var args addTaskArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", err
	}
	due := tb.dueDate(args.DueDate)
	id, err := tb.tasks.Add(ctx, args.Title, args.Description, due)
	if err != nil {
		return "", err
	}
	return AddedMessage(id, due), nil
}

func (tb *Toolbox) getAllTasks(ctx context.Context, _ json.RawMessage) (string, error) {
	tasks, err := tb.tasks.List(ctx)
	if err != nil {
		return "", err
	}
	return domain.RenderTasks(tasks), nil
}

type updateTaskArgs struct {
	TaskID      int64   `json:"task_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Completed   *bool   `json:"completed"`
}

func (tb *Toolbox) updateTask(ctx context.Context, raw json.RawMessage) (string, error) {
	var args updateTaskArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", err
	}
	patch := domain.TaskPatch{
		Title:       domain.FromPtr(args.Title),
		Description: domain.FromPtr(args.Description),
		DueDate:     domain.FromPtr(tb.dueDate(args.DueDate)),
		Completed:   domain.FromPtr(args.Completed),
	}
	ok, err := tb.tasks.Update(ctx, args.TaskID, patch)
	if err != nil {
		return "", err
	}
	if !ok {
		return MsgTaskNotChanged, nil
	}
	return MsgTaskUpdated, nil
}

type deleteTaskArgs struct {
	TaskID int64 `json:"task_id"`
}

func (tb *Toolbox) deleteTask(ctx context.Context, raw json.RawMessage) (string, error) {
	var args deleteTaskArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", err
	}
	ok, err := tb.tasks.Delete(ctx, args.TaskID)
	if err != nil {
		return "", err
	}
	if !ok {
		return MsgTaskNotFound, nil
	}
	return MsgTaskDeleted, nil
}

type upsertTaskArgs struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Completed   *bool   `json:"completed"`
}

func (tb *Toolbox) upsertTask(ctx context.Context, raw json.RawMessage) (string, error) {
	var args upsertTaskArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", err
	}
	due := tb.dueDate(args.DueDate)
	res, err := tb.tasks.Upsert(ctx, domain.UpsertInput{
		Title:       args.Title,
		Description: args.Description,
		DueDate:     due,
		Completed:   args.Completed,
		UseFuzzy:    true,
	})
	if err != nil {
		return "", err
	}
	if !res.Matched {
		return AddedMessage(res.ID, due), nil
	}
	return UpdatedMessage(res.ID, res.Previous), nil
}

type findTaskArgs struct {
	Title string `json:"title"`
}

func (tb *Toolbox) findTask(ctx context.Context, raw json.RawMessage) (string, error) {
	var args findTaskArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", err
	}
	task, err := tb.tasks.Find(ctx, args.Title, true, domain.DefaultFuzzyThreshold)
	if err != nil {
		return "", err
	}
	if task == nil {
		return MsgTaskNotFound, nil
	}
	return task.String(), nil
}

type weatherArgs struct {
	Location string `json:"location"`
	Date     string `json:"date"`
}

func (tb *Toolbox) getWeather(ctx context.Context, raw json.RawMessage) (string, error) {
	var args weatherArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", err
	}
	if args.Date == "" {
		args.Date = "today"
	}
	forecast, err := tb.weather.Forecast(ctx, args.Location, args.Date)
	if err != nil {
		logger.Warn("Failed to get weather for %s: %v", args.Location, err)
		return MsgWeatherFailed, nil
	}
	return forecast, nil
}

// dueDate normalises a tool-supplied due date against the toolbox clock.
func (tb *Toolbox) dueDate(raw *string) *string {
	if raw == nil {
		return nil
	}
	return NormalizeDueDate(*raw, tb.now())
}

// AddedMessage is the confirmation shown after a task is created.
func AddedMessage(id int64, due *string) string {
	msg := fmt.Sprintf("Task added with ID %d", id)
	if due != nil {
		msg += fmt.Sprintf(" (due %s)", *due)
	}
	return msg
}

// UpdatedMessage is the confirmation shown after an upsert matched an existing task.
func UpdatedMessage(id int64, previous *domain.Task) string {
	return fmt.Sprintf("Updated existing task %d (was: %s).", id, previous)
}

const emptySchema = `{"type": "object", "properties": {}, "additionalProperties": false}`

const addTaskSchema = `{
  "type": "object",
  "properties": {
    "title": {"type": "string", "minLength": 1, "description": "Short task title"},
    "description": {"type": ["string", "null"], "description": "Optional details"},
    "due_date": {"type": ["string", "null"], "description": "Due date, ISO YYYY-MM-DD preferred; 'today', 'tomorrow' and '7 october' also work"}
  },
  "required": ["title"],
  "additionalProperties": false
}`

const updateTaskSchema = `{
  "type": "object",
  "properties": {
    "task_id": {"type": "integer", "minimum": 1},
    "title": {"type": ["string", "null"], "minLength": 1},
    "description": {"type": ["string", "null"]},
    "due_date": {"type": ["string", "null"]},
    "completed": {"type": ["boolean", "null"]}
  },
  "required": ["task_id"],
  "additionalProperties": false
}`

const deleteTaskSchema = `{
  "type": "object",
  "properties": {
    "task_id": {"type": "integer", "minimum": 1}
  },
  "required": ["task_id"],
  "additionalProperties": false
}`

const upsertTaskSchema = `{
  "type": "object",
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "description": {"type": ["string", "null"]},
    "due_date": {"type": ["string", "null"]},
    "completed": {"type": ["boolean", "null"]}
  },
  "required": ["title"],
  "additionalProperties": false
}`

const findTaskSchema = `{
  "type": "object",
  "properties": {
    "title": {"type": "string", "minLength": 1}
  },
  "required": ["title"],
  "additionalProperties": false
}`

const weatherSchema = `{
  "type": "object",
  "properties": {
    "location": {"type": "string", "minLength": 1},
    "date": {"type": "string", "enum": ["today", "tomorrow"], "default": "today"}
  },
  "required": ["location"],
  "additionalProperties": false
}`
