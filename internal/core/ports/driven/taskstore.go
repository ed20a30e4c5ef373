package driven

import (
	"context"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
)

// TaskStore persists tasks in a single table.
//
// Writes are serialised by the implementation; reads never wait on the
// write lock. Every failure of the backing store is reported wrapped around
// domain.ErrStorageUnavailable, and nothing is retried internally.
type TaskStore interface {
	// Create inserts a task with completed=false and returns its id.
	// An empty title is rejected with domain.ErrInvalidArgument before any write.
	Create(ctx context.Context, title string, description, dueDate *string) (int64, error)

	// List returns every stored task in storage order.
	List(ctx context.Context) ([]domain.Task, error)

	// Get returns a task by id, or nil when no such task exists.
	Get(ctx context.Context, id int64) (*domain.Task, error)

	// Update applies a partial patch. It reports false when the id does not
	// exist, and false without touching storage when the patch is empty.
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (bool, error)

	// Delete removes a task. It reports false when the id does not exist.
	Delete(ctx context.Context, id int64) (bool, error)

	// FindByTitle returns the first task whose title matches case-insensitively
	// after trimming whitespace, or nil.
	FindByTitle(ctx context.Context, title string) (*domain.Task, error)

	// FindByTitleFuzzy returns the task with the best token Jaccard score when
	// that score is at least threshold, or nil.
	FindByTitleFuzzy(ctx context.Context, title string, threshold float64) (*domain.Task, error)

	// Upsert updates the task matching in.Title (exact, then fuzzy when
	// in.UseFuzzy) or creates a new one.
	Upsert(ctx context.Context, in domain.UpsertInput) (domain.UpsertResult, error)

	// Close releases the underlying connection.
	Close() error
}
