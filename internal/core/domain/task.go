package domain

import (
	"fmt"
	"strings"
)

// Task is a single todo item.
type Task struct {
	// ID is assigned by the store on creation and never reused.
	ID int64 `json:"id" db:"id"`

	// Title is the non-empty task title.
	Title string `json:"title" db:"title"`

	// Description is optional free text.
	Description *string `json:"description,omitempty" db:"description"`

	// DueDate is an optional date string, expected to be ISO 8601 (YYYY-MM-DD)
	// but stored as given.
	DueDate *string `json:"due_date,omitempty" db:"due_date"`

	// Completed is false at creation.
	Completed bool `json:"completed" db:"completed"`
}

// String renders the task for humans:
//
//	[✔] 3. Pay rent (Due: 2025-11-01) — landlord wants cash
func (t Task) String() string {
	status := " "
	if t.Completed {
		status = "✔"
	}

	due := "—"
	if t.DueDate != nil && *t.DueDate != "" {
		due = *t.DueDate
	}

	desc := ""
	if t.Description != nil && *t.Description != "" {
		desc = " — " + *t.Description
	}

	return fmt.Sprintf("[%s] %d. %s (Due: %s)%s", status, t.ID, t.Title, due, desc)
}

// RenderTasks renders one task per line, or "No tasks found." for an empty list.
func RenderTasks(tasks []Task) string {
	if len(tasks) == 0 {
		return "No tasks found."
	}
	lines := make([]string, len(tasks))
	for i := range tasks {
		lines[i] = tasks[i].String()
	}
	return strings.Join(lines, "\n")
}

// ValidateTitle rejects empty or whitespace-only titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: task title must not be empty", ErrInvalidArgument)
	}
	return nil
}

// TaskPatch is a partial update. Only set fields are written.
type TaskPatch struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	DueDate     Optional[string] `json:"due_date"`
	Completed   Optional[bool]   `json:"completed"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.IsSet() && !p.Description.IsSet() && !p.DueDate.IsSet() && !p.Completed.IsSet()
}

// Validate rejects a patch that would blank the title.
func (p TaskPatch) Validate() error {
	if title, ok := p.Title.Get(); ok {
		return ValidateTitle(title)
	}
	return nil
}

// Apply returns a copy of t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	if v, ok := p.Title.Get(); ok {
		t.Title = v
	}
	if v, ok := p.Description.Get(); ok {
		t.Description = &v
	}
	if v, ok := p.DueDate.Get(); ok {
		t.DueDate = &v
	}
	if v, ok := p.Completed.Get(); ok {
		t.Completed = v
	}
	return t
}

// UpsertInput describes an update-if-title-matches-else-create request.
type UpsertInput struct {
	Title       string
	Description *string
	DueDate     *string
	Completed   *bool

	// UseFuzzy enables the fuzzy title fallback after an exact miss.
	UseFuzzy bool
}

// UpsertResult reports what an upsert did.
type UpsertResult struct {
	// ID is the matched task's id, or the new id when nothing matched.
	ID int64

	// Matched is true when an existing task was updated.
	Matched bool

	// Previous is the pre-update snapshot of the matched task, nil on create.
	Previous *Task
}

// MergePatch builds the patch applied to an existing task on an upsert match.
// Description, due date and completion fall back to the existing values when
// not supplied; the title is left as stored.
func (in UpsertInput) MergePatch(existing Task) TaskPatch {
	patch := TaskPatch{
		Completed: Some(existing.Completed),
	}
	if in.Description != nil {
		patch.Description = Some(*in.Description)
	} else if existing.Description != nil {
		patch.Description = Some(*existing.Description)
	}
	if in.DueDate != nil {
		patch.DueDate = Some(*in.DueDate)
	} else if existing.DueDate != nil {
		patch.DueDate = Some(*existing.DueDate)
	}
	if in.Completed != nil {
		patch.Completed = Some(*in.Completed)
	}
	return patch
}
