package sqlite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/logger"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestNewStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "todo.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNewStore_Memory(t *testing.T) {
	store, err := NewStore(MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	id, err := store.Create(context.Background(), "in memory", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestNewStore_InvalidPath(t *testing.T) {
	// A regular file cannot be used as a parent directory.
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	_, err := NewStore(filepath.Join(file, "todo.db"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.Get(&version, "SELECT MAX(version) FROM schema_migrations"))
	assert.Equal(t, 1, version)

	var count int
	require.NoError(t, store.db.Get(&count,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='tasks'"))
	assert.Equal(t, 1, count)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	_, err = store.Create(context.Background(), "persist me", nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	tasks, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "persist me", tasks[0].Title)
}

func TestMigrate_SkipsAppliedAndBadNames(t *testing.T) {
	store := setupTestStore(t)

	fsys := fstest.MapFS{
		"001_create_tasks.up.sql": {Data: []byte("SELECT broken FROM nowhere")},
		"002_add_note.up.sql":     {Data: []byte("CREATE TABLE notes (id INTEGER)")},
		"readme.up.sql":           {Data: []byte("garbage")},
		"002_add_note.down.sql":   {Data: []byte("DROP TABLE notes")},
	}
	require.NoError(t, store.migrate(fsys))

	var version int
	require.NoError(t, store.db.Get(&version, "SELECT MAX(version) FROM schema_migrations"))
	assert.Equal(t, 2, version)
}

func TestStore_ClosedReturnsUnavailable(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	ctx := context.Background()

	_, err = store.Create(ctx, "x", nil, nil)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	_, err = store.List(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	_, err = store.Delete(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestStore_OpTimeout(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "todo.db"), WithOpTimeout(time.Minute))
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := store.opContext(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)

	store.opTimeout = 0
	ctx, cancel = store.opContext(context.Background())
	defer cancel()
	_, ok = ctx.Deadline()
	assert.False(t, ok)
}

func TestStore_CanceledContext(t *testing.T) {
	store := setupTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.List(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCreate_ThenList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "Buy milk", strPtr("2 litres"), strPtr("2025-10-07"))
	require.NoError(t, err)

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Buy milk", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "2 litres", *got.Description)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2025-10-07", *got.DueDate)
	assert.False(t, got.Completed)
}

func TestCreate_NullableFields(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "Bare", nil, nil)
	require.NoError(t, err)

	task, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Nil(t, task.Description)
	assert.Nil(t, task.DueDate)
}

func TestCreate_EmptyTitle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := store.Create(ctx, title, nil, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, "title %q", title)
	}

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreate_IDsNeverReused(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "one", nil, nil)
	require.NoError(t, err)
	ok, err := store.Delete(ctx, first)
	require.NoError(t, err)
	require.True(t, ok)

	second, err := store.Create(ctx, "two", nil, nil)
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestCreate_Concurrent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := store.Create(ctx, fmt.Sprintf("task %d", i), nil, nil)
			assert.NoError(t, err)
			ids <- id
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, n)
}

func TestGet_NotFound(t *testing.T) {
	store := setupTestStore(t)

	task, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestUpdate_Partial(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "Write report", strPtr("quarterly"), strPtr("2025-10-01"))
	require.NoError(t, err)

	ok, err := store.Update(ctx, id, domain.TaskPatch{Completed: domain.Some(true)})
	require.NoError(t, err)
	assert.True(t, ok)

	task, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, "quarterly", *task.Description)
	assert.Equal(t, "2025-10-01", *task.DueDate)
}

func TestUpdate_SetToEmptyString(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "Call mum", strPtr("about sunday"), nil)
	require.NoError(t, err)

	ok, err := store.Update(ctx, id, domain.TaskPatch{Description: domain.Some("")})
	require.NoError(t, err)
	assert.True(t, ok)

	task, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, task.Description)
	assert.Equal(t, "", *task.Description)
}

func TestUpdate_EmptyPatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "Unchanged", nil, nil)
	require.NoError(t, err)

	ok, err := store.Update(ctx, id, domain.TaskPatch{})
	require.NoError(t, err)
	assert.False(t, ok)

	task, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Unchanged", task.Title)
	assert.False(t, task.Completed)
}

func TestUpdate_MissingID(t *testing.T) {
	store := setupTestStore(t)

	ok, err := store.Update(context.Background(), 99, domain.TaskPatch{Title: domain.Some("x")})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdate_BlankTitle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "Keep", nil, nil)
	require.NoError(t, err)

	_, err = store.Update(ctx, id, domain.TaskPatch{Title: domain.Some(" ")})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDelete_Idempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "Throw away", nil, nil)
	require.NoError(t, err)

	ok, err := store.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindByTitle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "buy milk", nil, nil)
	require.NoError(t, err)
	_, err = store.Create(ctx, "Buy Milk Today", nil, nil)
	require.NoError(t, err)
	_, err = store.Create(ctx, "BUY MILK", nil, nil)
	require.NoError(t, err)

	task, err := store.FindByTitle(ctx, "  Buy Milk ")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, first, task.ID, "first of the duplicates wins")

	task, err = store.FindByTitle(ctx, "Buy Milk Tomorrow")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestFindByTitle_UnicodeAndTabs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ecole, err := store.Create(ctx, "ÉCOLE", nil, nil)
	require.NoError(t, err)
	milk, err := store.Create(ctx, "Buy milk\t", nil, nil)
	require.NoError(t, err)

	task, err := store.FindByTitle(ctx, "école")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, ecole, task.ID)

	task, err = store.FindByTitle(ctx, "buy milk")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, milk, task.ID)
}

func TestStore_LogsWrites(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "Logged task", nil, nil)
	require.NoError(t, err)
	_, err = store.Update(ctx, id, domain.TaskPatch{Completed: domain.Some(true)})
	require.NoError(t, err)
	_, err = store.Delete(ctx, id)
	require.NoError(t, err)
	_, err = store.Delete(ctx, id)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "created task")
	assert.Contains(t, out, "updated task")
	assert.Contains(t, out, "deleted task")
	assert.Contains(t, out, "matched no row")
}

func TestUpsert_RepeatedNonASCIITitle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.Upsert(ctx, domain.UpsertInput{Title: "Купить молоко", UseFuzzy: true})
	require.NoError(t, err)
	second, err := store.Upsert(ctx, domain.UpsertInput{Title: "Купить молоко", UseFuzzy: true})
	require.NoError(t, err)

	assert.True(t, second.Matched)
	assert.Equal(t, first.ID, second.ID)
	tasks, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestFindByTitleFuzzy(t *testing.T) {
	store := setupTestStore(t)
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

	task, err = store.FindByTitleFuzzy(ctx, "the a to", domain.DefaultFuzzyThreshold)
	require.NoError(t, err)
	assert.Nil(t, task, "stop words only")
}

func TestFindByTitleFuzzy_EmptyStore(t *testing.T) {
	store := setupTestStore(t)

	task, err := store.FindByTitleFuzzy(context.Background(), "anything", 0.1)
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestUpsert_CreateThenMatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	res, err := store.Upsert(ctx, domain.UpsertInput{
		Title:    "Pay rent",
		DueDate:  strPtr("2025-11-01"),
		UseFuzzy: true,
	})
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Nil(t, res.Previous)
	created := res.ID

	res, err = store.Upsert(ctx, domain.UpsertInput{
		Title:     "pay rent",
		Completed: boolPtr(true),
		UseFuzzy:  true,
	})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, created, res.ID)
	require.NotNil(t, res.Previous)
	assert.False(t, res.Previous.Completed)

	task, err := store.Get(ctx, created)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2025-11-01", *task.DueDate)
	assert.Equal(t, "Pay rent", task.Title)

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestUpsert_FuzzyFallback(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "Watch a movie", nil, nil)
	require.NoError(t, err)

	res, err := store.Upsert(ctx, domain.UpsertInput{Title: "watch movie", DueDate: strPtr("2025-10-08"), UseFuzzy: true})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, id, res.ID)

	res, err = store.Upsert(ctx, domain.UpsertInput{Title: "watch movie", UseFuzzy: false})
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.NotEqual(t, id, res.ID)
}

func TestUpsert_CreateCompleted(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	res, err := store.Upsert(ctx, domain.UpsertInput{Title: "Already done", Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.False(t, res.Matched)

	task, err := store.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, task.Completed)
}

func TestUpsert_EmptyTitle(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Upsert(context.Background(), domain.UpsertInput{Title: "  ", UseFuzzy: true})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
