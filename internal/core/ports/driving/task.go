package driving

import (
	"context"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
)

// TaskService manages the todo list.
type TaskService interface {
	// Add creates a task and returns its id.
	Add(ctx context.Context, title string, description, dueDate *string) (int64, error)

	// List returns all tasks.
	List(ctx context.Context) ([]domain.Task, error)

	// Get returns a task by id, or domain.ErrNotFound.
	Get(ctx context.Context, id int64) (*domain.Task, error)

	// Update applies a partial patch and reports whether a task was changed.
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (bool, error)

	// Delete removes a task and reports whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)

	// Find looks a task up by title, exactly or fuzzily.
	// It returns nil when nothing matches.
	Find(ctx context.Context, title string, fuzzy bool, threshold float64) (*domain.Task, error)

	// Upsert updates the task matching the title or creates a new one.
	Upsert(ctx context.Context, in domain.UpsertInput) (domain.UpsertResult, error)
}
