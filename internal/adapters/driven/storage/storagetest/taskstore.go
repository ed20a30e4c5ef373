// Package storagetest holds behaviour shared by every driven.TaskStore
// adapter. Each adapter's tests call RunTaskStoreSuite with its constructor.
package storagetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driven"
)

// NewStoreFunc returns an empty store. Cleanup is registered on t.
type NewStoreFunc func(t *testing.T) driven.TaskStore

// RunTaskStoreSuite runs the common task store behaviour against newStore.
func RunTaskStoreSuite(t *testing.T, newStore NewStoreFunc) {
	t.Run("FindByTitle folds case and whitespace", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		ids := map[string]int64{}
		for _, title := range []string{"ÉCOLE", "Купить молоко", "Buy milk\t", "\tCall Mum  "} {
			id, err := store.Create(ctx, title, nil, nil)
			require.NoError(t, err)
			ids[title] = id
		}

		tests := []struct {
			query string
			want  string
		}{
			{"ÉCOLE", "ÉCOLE"},
			{"école", "ÉCOLE"},
			{"Купить молоко", "Купить молоко"},
			{"  КУПИТЬ МОЛОКО", "Купить молоко"},
			{"buy milk", "Buy milk\t"},
			{"call mum", "\tCall Mum  "},
		}
		for _, tt := range tests {
			task, err := store.FindByTitle(ctx, tt.query)
			require.NoError(t, err, tt.query)
			require.NotNil(t, task, "query %q", tt.query)
			assert.Equal(t, ids[tt.want], task.ID, "query %q", tt.query)
		}

		task, err := store.FindByTitle(ctx, "buy milk today")
		require.NoError(t, err)
		assert.Nil(t, task)

		task, err = store.FindByTitle(ctx, "   ")
		require.NoError(t, err)
		assert.Nil(t, task)
	})

	t.Run("FindByTitle returns the lowest id", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		first, err := store.Create(ctx, "buy milk", nil, nil)
		require.NoError(t, err)
		_, err = store.Create(ctx, "BUY MILK", nil, nil)
		require.NoError(t, err)

		task, err := store.FindByTitle(ctx, "Buy Milk")
		require.NoError(t, err)
		require.NotNil(t, task)
		assert.Equal(t, first, task.ID)
	})

	t.Run("FindByTitleFuzzy", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, "Buy milk", nil, nil)
		require.NoError(t, err)
		movie, err := store.Create(ctx, "Watch a movie", nil, nil)
		require.NoError(t, err)

		task, err := store.FindByTitleFuzzy(ctx, "watch movie", domain.DefaultFuzzyThreshold)
		require.NoError(t, err)
		require.NotNil(t, task)
		assert.Equal(t, movie, task.ID)

		task, err = store.FindByTitleFuzzy(ctx, "walk the dog", domain.DefaultFuzzyThreshold)
		require.NoError(t, err)
		assert.Nil(t, task)

		task, err = store.FindByTitleFuzzy(ctx, "the to a", domain.DefaultFuzzyThreshold)
		require.NoError(t, err)
		assert.Nil(t, task)
	})

	t.Run("Upsert matches a repeated non-ASCII title", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		first, err := store.Upsert(ctx, domain.UpsertInput{Title: "Купить молоко", UseFuzzy: true})
		require.NoError(t, err)
		assert.False(t, first.Matched)

		due := "2025-11-01"
		second, err := store.Upsert(ctx, domain.UpsertInput{Title: "купить молоко", DueDate: &due, UseFuzzy: true})
		require.NoError(t, err)
		assert.True(t, second.Matched)
		assert.Equal(t, first.ID, second.ID)

		tasks, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		require.NotNil(t, tasks[0].DueDate)
		assert.Equal(t, due, *tasks[0].DueDate)
	})

	t.Run("Upsert creates completed tasks", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		done := true
		res, err := store.Upsert(ctx, domain.UpsertInput{Title: "Already done", Completed: &done})
		require.NoError(t, err)
		assert.False(t, res.Matched)

		task, err := store.Get(ctx, res.ID)
		require.NoError(t, err)
		require.NotNil(t, task)
		assert.True(t, task.Completed)
	})

	t.Run("Update and Delete report missing ids", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		id, err := store.Create(ctx, "Throw away", nil, nil)
		require.NoError(t, err)

		ok, err := store.Update(ctx, id+100, domain.TaskPatch{Completed: domain.Some(true)})
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.Delete(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Delete(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("concurrent creates get distinct ids", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		const n = 20
		ids := make(chan int64, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := store.Create(ctx, "parallel", nil, nil)
				assert.NoError(t, err)
				ids <- id
			}()
		}
		wg.Wait()
		close(ids)

		seen := map[int64]bool{}
		for id := range ids {
			seen[id] = true
		}
		assert.Len(t, seen, n)

		tasks, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, tasks, n)
	})
}
