package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/todo-agent/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/todo-agent/internal/core/domain"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func newTestTaskService(t *testing.T) (*TaskService, *memory.TaskStore) {
	t.Helper()
	store := memory.NewTaskStore()
	return NewTaskService(store), store
}

func TestTaskService_AddListGet(t *testing.T) {
	svc, _ := newTestTaskService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, "Buy milk", nil, strPtr("2025-10-15"))
	require.NoError(t, err)

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2025-10-15", *task.DueDate)
}

func TestTaskService_Get_NotFound(t *testing.T) {
	svc, _ := newTestTaskService(t)

	_, err := svc.Get(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskService_Add_InvalidTitle(t *testing.T) {
	svc, _ := newTestTaskService(t)

	_, err := svc.Add(context.Background(), "", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTaskService_UpdateDelete(t *testing.T) {
	svc, _ := newTestTaskService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, "Clean kitchen", nil, nil)
	require.NoError(t, err)

	ok, err := svc.Update(ctx, id, domain.TaskPatch{Completed: domain.Some(true)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Update(ctx, id, domain.TaskPatch{})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTaskService_Find(t *testing.T) {
	svc, _ := newTestTaskService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "Watch a movie", nil, nil)
	require.NoError(t, err)

	task, err := svc.Find(ctx, "watch a MOVIE ", false, 0)
	require.NoError(t, err)
	require.NotNil(t, task)

	task, err = svc.Find(ctx, "watch movie", false, 0)
	require.NoError(t, err)
	assert.Nil(t, task, "exact lookup only")

	task, err = svc.Find(ctx, "watch movie", true, 0)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "Watch a movie", task.Title)

	task, err = svc.Find(ctx, "watch movie tonight", true, 0.9)
	require.NoError(t, err)
	assert.Nil(t, task, "below threshold")
}

func TestTaskService_Find_BadThreshold(t *testing.T) {
	svc, _ := newTestTaskService(t)

	_, err := svc.Find(context.Background(), "x", true, 1.5)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Find(context.Background(), "x", true, -0.1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTaskService_Upsert(t *testing.T) {
	svc, _ := newTestTaskService(t)
	ctx := context.Background()

	res, err := svc.Upsert(ctx, domain.UpsertInput{Title: "Pay rent", DueDate: strPtr("2025-11-01"), UseFuzzy: true})
	require.NoError(t, err)
	assert.False(t, res.Matched)

	res, err = svc.Upsert(ctx, domain.UpsertInput{Title: "pay rent", Completed: boolPtr(true), UseFuzzy: true})
	require.NoError(t, err)
	assert.True(t, res.Matched)

	task, err := svc.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, "2025-11-01", *task.DueDate)
}

func TestTaskService_StorageUnavailable(t *testing.T) {
	svc, store := newTestTaskService(t)
	require.NoError(t, store.Close())
	ctx := context.Background()

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	_, err = svc.Get(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	_, err = svc.Find(ctx, "x", true, 0)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	_, err = svc.Upsert(ctx, domain.UpsertInput{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
