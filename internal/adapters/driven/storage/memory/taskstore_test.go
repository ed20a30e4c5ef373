package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestTaskStore_CreateAndList(t *testing.T) {
	store := NewTaskStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "Buy milk", strPtr("2 litres"), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Equal(t, "2 litres", *tasks[0].Description)
	assert.Nil(t, tasks[0].DueDate)
	assert.False(t, tasks[0].Completed)
}

func TestTaskStore_Create_EmptyTitle(t *testing.T) {
	store := NewTaskStore()

	_, err := store.Create(context.Background(), " ", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTaskStore_ListReturnsCopies(t *testing.T) {
	store := NewTaskStore()
	ctx := context.Background()

	desc := "original"
	_, err := store.Create(ctx, "Copy", &desc, nil)
	require.NoError(t, err)
	desc = "mutated input"

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	*tasks[0].Description = "mutated output"

	again, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "original", *again.Description)
}

func TestTaskStore_UpdateAndDelete(t *testing.T) {
	store := NewTaskStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "Laundry", nil, nil)
	require.NoError(t, err)

	ok, err := store.Update(ctx, id, domain.TaskPatch{})
	require.NoError(t, err)
	assert.False(t, ok, "empty patch")

	ok, err = store.Update(ctx, id, domain.TaskPatch{DueDate: domain.Some("2025-10-09"), Completed: domain.Some(true)})
	require.NoError(t, err)
	assert.True(t, ok)

	task, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, "2025-10-09", *task.DueDate)

	ok, err = store.Update(ctx, 77, domain.TaskPatch{Completed: domain.Some(true)})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := store.Create(ctx, "After delete", nil, nil)
	require.NoError(t, err)
	assert.Greater(t, next, id)
}

func TestTaskStore_Find(t *testing.T) {
	store := NewTaskStore()
	ctx := context.Background()

	_, err := store.Create(ctx, "buy milk", nil, nil)
	require.NoError(t, err)
	_, err = store.Create(ctx, "Watch a movie", nil, nil)
	require.NoError(t, err)

	task, err := store.FindByTitle(ctx, "Buy Milk")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, int64(1), task.ID)

	task, err = store.FindByTitle(ctx, "Buy Milk Today")
	require.NoError(t, err)
	assert.Nil(t, task)

	task, err = store.FindByTitleFuzzy(ctx, "watch movie", 0.5)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, int64(2), task.ID)
}

func TestTaskStore_Upsert(t *testing.T) {
	store := NewTaskStore()
	ctx := context.Background()

	res, err := store.Upsert(ctx, domain.UpsertInput{Title: "Pay rent", DueDate: strPtr("2025-11-01"), UseFuzzy: true})
	require.NoError(t, err)
	assert.False(t, res.Matched)

	res, err = store.Upsert(ctx, domain.UpsertInput{Title: "pay rent", Completed: boolPtr(true), UseFuzzy: true})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	require.NotNil(t, res.Previous)
	assert.False(t, res.Previous.Completed)

	task, err := store.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, "2025-11-01", *task.DueDate)
}

func TestTaskStore_Closed(t *testing.T) {
	store := NewTaskStore()
	require.NoError(t, store.Close())
	ctx := context.Background()

	_, err := store.Create(ctx, "x", nil, nil)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	_, err = store.List(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	_, err = store.Upsert(ctx, domain.UpsertInput{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestTaskStore_ConcurrentCreate(t *testing.T) {
	store := NewTaskStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Create(ctx, fmt.Sprintf("task %d", i), nil, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 100)

	seen := make(map[int64]bool)
	for _, task := range tasks {
		seen[task.ID] = true
	}
	assert.Len(t, seen, 100)
}
