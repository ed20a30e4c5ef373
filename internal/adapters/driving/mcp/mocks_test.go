package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/todo-agent/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/services"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// newTestServer returns a server over an in-memory store with a fixed clock.
func newTestServer(t *testing.T) (*Server, *services.TaskService) {
	t.Helper()
	tasks := services.NewTaskService(memory.NewTaskStore())
	server, err := NewServer(&Ports{Tasks: tasks})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	server.now = func() time.Time { return time.Date(2025, 10, 14, 9, 0, 0, 0, time.UTC) }
	return server, tasks
}

// mockTaskService is a mock implementation of driving.TaskService that fails every call.
type mockTaskService struct {
	err error
}

func (m *mockTaskService) Add(_ context.Context, _ string, _, _ *string) (int64, error) {
	return 0, m.err
}

func (m *mockTaskService) List(_ context.Context) ([]domain.Task, error) {
	return nil, m.err
}

func (m *mockTaskService) Get(_ context.Context, _ int64) (*domain.Task, error) {
	return nil, m.err
}

func (m *mockTaskService) Update(_ context.Context, _ int64, _ domain.TaskPatch) (bool, error) {
	return false, m.err
}

func (m *mockTaskService) Delete(_ context.Context, _ int64) (bool, error) {
	return false, m.err
}

func (m *mockTaskService) Find(_ context.Context, _ string, _ bool, _ float64) (*domain.Task, error) {
	return nil, m.err
}

func (m *mockTaskService) Upsert(_ context.Context, _ domain.UpsertInput) (domain.UpsertResult, error) {
	return domain.UpsertResult{}, m.err
}
