package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driven"
	"github.com/custodia-labs/todo-agent/internal/logger"
)

var _ driven.TaskStore = (*Store)(nil)

const selectTasks = "SELECT id, title, description, due_date, completed FROM tasks"

// Create inserts a task with completed=false and returns its id.
func (s *Store) Create(ctx context.Context, title string, description, dueDate *string) (int64, error) {
	return s.insert(ctx, title, description, dueDate, false)
}

// insert writes one row, completed state included, in a single statement.
func (s *Store) insert(ctx context.Context, title string, description, dueDate *string, completed bool) (int64, error) {
	if err := domain.ValidateTitle(title); err != nil {
		return 0, err
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks (title, description, due_date, completed) VALUES (?, ?, ?, ?)",
		title, description, dueDate, completed,
	)
	if err != nil {
		return 0, unavailable("creating task", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, unavailable("reading task id", err)
	}
	logger.Debug("sqlite: created task %d %q", id, title)
	return id, nil
}

// List returns every task ordered by id.
func (s *Store) List(ctx context.Context) ([]domain.Task, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	tasks := []domain.Task{}
	if err := s.db.SelectContext(ctx, &tasks, selectTasks+" ORDER BY id"); err != nil {
		return nil, unavailable("listing tasks", err)
	}
	return tasks, nil
}

// Get returns a task by id, or nil when absent.
func (s *Store) Get(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var task domain.Task
	err := s.db.GetContext(ctx, &task, selectTasks+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("getting task", err)
	}
	return &task, nil
}

// Update writes only the fields set in patch.
func (s *Store) Update(ctx context.Context, id int64, patch domain.TaskPatch) (bool, error) {
	if patch.IsEmpty() {
		return false, nil
	}
	if err := patch.Validate(); err != nil {
		return false, err
	}

	var (
		sets []string
		args []any
	)
	if v, ok := patch.Title.Get(); ok {
		sets = append(sets, "title = ?")
		args = append(args, v)
	}
	if v, ok := patch.Description.Get(); ok {
		sets = append(sets, "description = ?")
		args = append(args, v)
	}
	if v, ok := patch.DueDate.Get(); ok {
		sets = append(sets, "due_date = ?")
		args = append(args, v)
	}
	if v, ok := patch.Completed.Get(); ok {
		sets = append(sets, "completed = ?")
		args = append(args, v)
	}
	args = append(args, id)

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return false, unavailable("updating task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("updating task", err)
	}
	if n == 0 {
		logger.Warn("sqlite: update of task %d matched no row", id)
		return false, nil
	}
	logger.Debug("sqlite: updated task %d (%s)", id, strings.Join(sets, ", "))
	return true, nil
}

// Delete removes a task by id.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return false, unavailable("deleting task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("deleting task", err)
	}
	if n == 0 {
		logger.Warn("sqlite: delete of task %d matched no row", id)
		return false, nil
	}
	logger.Debug("sqlite: deleted task %d", id)
	return true, nil
}

// FindByTitle returns the lowest-id task whose trimmed, lowercased title
// equals the query's. Folding happens in Go: SQLite's LOWER is ASCII-only and
// its TRIM strips spaces alone.
func (s *Store) FindByTitle(ctx context.Context, title string) (*domain.Task, error) {
	if domain.NormaliseTitle(title) == "" {
		return nil, nil
	}
	tasks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.MatchTitleExact(title, tasks), nil
}

// FindByTitleFuzzy scans all tasks for the best token overlap.
func (s *Store) FindByTitleFuzzy(ctx context.Context, title string, threshold float64) (*domain.Task, error) {
	if len(domain.TitleTokens(title)) == 0 {
		return nil, nil
	}
	tasks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	task, _ := domain.MatchTitleFuzzy(title, tasks, threshold)
	return task, nil
}

// Upsert updates the task matching in.Title or creates one.
func (s *Store) Upsert(ctx context.Context, in domain.UpsertInput) (domain.UpsertResult, error) {
	existing, err := s.FindByTitle(ctx, in.Title)
	if err != nil {
		return domain.UpsertResult{}, err
	}
	if existing == nil && in.UseFuzzy {
		existing, err = s.FindByTitleFuzzy(ctx, in.Title, domain.DefaultFuzzyThreshold)
		if err != nil {
			return domain.UpsertResult{}, err
		}
	}

	if existing != nil {
		if _, err := s.Update(ctx, existing.ID, in.MergePatch(*existing)); err != nil {
			return domain.UpsertResult{}, err
		}
		return domain.UpsertResult{ID: existing.ID, Matched: true, Previous: existing}, nil
	}

	id, err := s.insert(ctx, in.Title, in.Description, in.DueDate, in.Completed != nil && *in.Completed)
	if err != nil {
		return domain.UpsertResult{}, err
	}
	return domain.UpsertResult{ID: id}, nil
}
