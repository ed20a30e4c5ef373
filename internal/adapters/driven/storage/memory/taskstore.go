package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driven"
)

// Ensure TaskStore implements the interface.
var _ driven.TaskStore = (*TaskStore)(nil)

// TaskStore is an in-memory implementation of driven.TaskStore.
// It mirrors the SQLite store's semantics and is used by service and
// adapter tests.
type TaskStore struct {
	mu     sync.RWMutex
	tasks  []domain.Task
	nextID int64
	closed bool
}

// NewTaskStore creates an empty in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{nextID: 1}
}

func (s *TaskStore) checkOpen() error {
	if s.closed {
		return fmt.Errorf("%w: store is closed", domain.ErrStorageUnavailable)
	}
	return nil
}

// Create inserts a task.
func (s *TaskStore) Create(_ context.Context, title string, description, dueDate *string) (int64, error) {
	return s.insert(title, description, dueDate, false)
}

func (s *TaskStore) insert(title string, description, dueDate *string, completed bool) (int64, error) {
	if err := domain.ValidateTitle(title); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	id := s.nextID
	s.nextID++
	s.tasks = append(s.tasks, domain.Task{
		ID:          id,
		Title:       title,
		Description: clonePtr(description),
		DueDate:     clonePtr(dueDate),
		Completed:   completed,
	})
	return id, nil
}

// List returns copies of all tasks ordered by id.
func (s *TaskStore) List(_ context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	out := make([]domain.Task, len(s.tasks))
	for i := range s.tasks {
		out[i] = cloneTask(s.tasks[i])
	}
	return out, nil
}

// Get returns a task by id, or nil.
func (s *TaskStore) Get(_ context.Context, id int64) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	if i := s.index(id); i >= 0 {
		t := cloneTask(s.tasks[i])
		return &t, nil
	}
	return nil, nil
}

// Update applies patch to the task with id.
func (s *TaskStore) Update(_ context.Context, id int64, patch domain.TaskPatch) (bool, error) {
	if patch.IsEmpty() {
		return false, nil
	}
	if err := patch.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return false, err
	}

	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	s.tasks[i] = patch.Apply(s.tasks[i])
	return true, nil
}

// Delete removes the task with id.
func (s *TaskStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return false, err
	}

	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return true, nil
}

// FindByTitle returns the first exact (normalised) title match.
func (s *TaskStore) FindByTitle(ctx context.Context, title string) (*domain.Task, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.MatchTitleExact(title, tasks), nil
}

// FindByTitleFuzzy returns the best Jaccard match at or above threshold.
func (s *TaskStore) FindByTitleFuzzy(ctx context.Context, title string, threshold float64) (*domain.Task, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	task, _ := domain.MatchTitleFuzzy(title, tasks, threshold)
	return task, nil
}

// Upsert updates the matching task or creates a new one.
func (s *TaskStore) Upsert(ctx context.Context, in domain.UpsertInput) (domain.UpsertResult, error) {
	existing, err := s.FindByTitle(ctx, in.Title)
	if err != nil {
		return domain.UpsertResult{}, err
	}
	if existing == nil && in.UseFuzzy {
		if existing, err = s.FindByTitleFuzzy(ctx, in.Title, domain.DefaultFuzzyThreshold); err != nil {
			return domain.UpsertResult{}, err
		}
	}

	if existing != nil {
		if _, err := s.Update(ctx, existing.ID, in.MergePatch(*existing)); err != nil {
			return domain.UpsertResult{}, err
		}
		return domain.UpsertResult{ID: existing.ID, Matched: true, Previous: existing}, nil
	}

	id, err := s.insert(in.Title, in.Description, in.DueDate, in.Completed != nil && *in.Completed)
	if err != nil {
		return domain.UpsertResult{}, err
	}
	return domain.UpsertResult{ID: id}, nil
}

// Close marks the store closed. Later calls fail with ErrStorageUnavailable.
func (s *TaskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// index returns the slice position of id, or -1. Callers must hold mu.
func (s *TaskStore) index(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTask(t domain.Task) domain.Task {
	t.Description = clonePtr(t.Description)
	t.DueDate = clonePtr(t.DueDate)
	return t
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
