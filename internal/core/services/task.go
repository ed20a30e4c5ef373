package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driven"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driving"
	"github.com/custodia-labs/todo-agent/internal/logger"
)

// Ensure TaskService implements the interface.
var _ driving.TaskService = (*TaskService)(nil)

// TaskService manages tasks through a driven.TaskStore.
type TaskService struct {
	store driven.TaskStore
}

// NewTaskService creates a new task service.
func NewTaskService(store driven.TaskStore) *TaskService {
	return &TaskService{store: store}
}

// Add creates a task.
func (s *TaskService) Add(ctx context.Context, title string, description, dueDate *string) (int64, error) {
	id, err := s.store.Create(ctx, title, description, dueDate)
	if err != nil {
		return 0, err
	}
	logger.Debug("Task %d added: %q", id, title)
	return id, nil
}

// List returns all tasks.
func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	return s.store.List(ctx)
}

// Get returns a task or domain.ErrNotFound.
func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
	}
	return task, nil
}

// Update applies patch to task id.
func (s *TaskService) Update(ctx context.Context, id int64, patch domain.TaskPatch) (bool, error) {
	ok, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return false, err
	}
	if !ok {
		logger.Debug("Task %d not updated (missing or empty patch)", id)
	}
	return ok, nil
}

// Delete removes task id.
func (s *TaskService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.store.Delete(ctx, id)
}

// Find looks a task up by exact title, then by token overlap when fuzzy is set.
// A threshold of zero uses domain.DefaultFuzzyThreshold.
func (s *TaskService) Find(ctx context.Context, title string, fuzzy bool, threshold float64) (*domain.Task, error) {
	if threshold == 0 {
		threshold = domain.DefaultFuzzyThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: threshold %.2f outside [0, 1]", domain.ErrInvalidArgument, threshold)
	}

	task, err := s.store.FindByTitle(ctx, title)
	if err != nil || task != nil || !fuzzy {
		return task, err
	}

	task, err = s.store.FindByTitleFuzzy(ctx, title, threshold)
	if err != nil {
		return nil, err
	}
	if task != nil {
		logger.Debug("Fuzzy match for %q: task %d %q", title, task.ID, task.Title)
	}
	return task, nil
}

// Upsert updates the task matching in.Title or creates a new one.
func (s *TaskService) Upsert(ctx context.Context, in domain.UpsertInput) (domain.UpsertResult, error) {
	res, err := s.store.Upsert(ctx, in)
	if err != nil {
		return domain.UpsertResult{}, err
	}
	if res.Matched {
		logger.Debug("Upsert %q matched task %d %q", in.Title, res.ID, res.Previous.Title)
	} else {
		logger.Debug("Upsert %q created task %d", in.Title, res.ID)
	}
	return res, nil
}
