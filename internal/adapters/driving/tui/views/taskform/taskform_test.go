package taskform

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/todo-agent/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/services"
)

func strPtr(s string) *string { return &s }

func newTestView(t *testing.T) (*View, *services.TaskService) {
	t.Helper()
	svc := services.NewTaskService(memory.NewTaskStore())
	view := NewView(context.Background(), nil, nil, svc)
	view.now = func() time.Time { return time.Date(2025, 10, 14, 9, 0, 0, 0, time.UTC) }
	view.SetDimensions(80, 24)
	return view, svc
}

func typeText(view *View, s string) {
	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(view *View, k tea.KeyType) tea.Cmd {
	_, cmd := view.Update(tea.KeyMsg{Type: k})
	return cmd
}

func TestNewView(t *testing.T) {
	view := NewView(context.Background(), nil, nil, nil)

	require.NotNil(t, view)
	assert.Len(t, view.fields, fieldCount)
	assert.Nil(t, view.Init())
	assert.Nil(t, view.Editing())
}

func TestView_Open_New(t *testing.T) {
	view, _ := newTestView(t)
	view.fields[fieldTitle].SetValue("stale")

	view.Open(nil)

	assert.Nil(t, view.Editing())
	assert.Equal(t, fieldTitle, view.Focus())
	assert.True(t, view.fields[fieldTitle].Focused())
	assert.Empty(t, view.fields[fieldTitle].Value())
	assert.Contains(t, view.View(), "New task")
}

func TestView_Open_Edit(t *testing.T) {
	view, _ := newTestView(t)
	task := &domain.Task{ID: 7, Title: "Pay rent", DueDate: strPtr("2025-11-01")}

	view.Open(task)

	require.NotNil(t, view.Editing())
	assert.Equal(t, "Pay rent", view.fields[fieldTitle].Value())
	assert.Empty(t, view.fields[fieldDescription].Value())
	assert.Equal(t, "2025-11-01", view.fields[fieldDueDate].Value())
	assert.Contains(t, view.View(), "Edit task 7")

	// The form keeps its own copy
	task.Title = "changed"
	assert.Equal(t, "Pay rent", view.Editing().Title)
}

func TestView_FocusNavigation(t *testing.T) {
	view, _ := newTestView(t)
	view.Open(nil)

	press(view, tea.KeyTab)
	assert.Equal(t, fieldDescription, view.Focus())
	assert.False(t, view.fields[fieldTitle].Focused())

	press(view, tea.KeyTab)
	assert.Equal(t, fieldDueDate, view.Focus())

	// Wraps around
	press(view, tea.KeyTab)
	assert.Equal(t, fieldTitle, view.Focus())

	press(view, tea.KeyShiftTab)
	assert.Equal(t, fieldDueDate, view.Focus())
}

func TestView_EnterAdvancesThenSubmits(t *testing.T) {
	view, svc := newTestView(t)
	view.Open(nil)

	typeText(view, "Buy milk")
	press(view, tea.KeyEnter)
	typeText(view, "two litres")
	press(view, tea.KeyEnter)
	typeText(view, "tomorrow")

	cmd := press(view, tea.KeyEnter)
	require.NotNil(t, cmd)

	saved, ok := cmd().(messages.TaskSaved)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.True(t, saved.Created)
	assert.Equal(t, "Task added with ID 1 (due 2025-10-15)", saved.Message)

	task, err := svc.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "two litres", *task.Description)
	assert.Equal(t, "2025-10-15", *task.DueDate)
}

func TestView_Submit_BlankOptionalFields(t *testing.T) {
	view, svc := newTestView(t)
	view.Open(nil)
	typeText(view, "Buy milk")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	saved := cmd().(messages.TaskSaved)

	task, err := svc.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Nil(t, task.Description)
	assert.Nil(t, task.DueDate)
}

func TestView_Submit_EmptyTitle(t *testing.T) {
	view, _ := newTestView(t)
	view.Open(nil)
	typeText(view, "   ")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	require.Error(t, view.Err())
	assert.ErrorIs(t, view.Err(), domain.ErrInvalidArgument)
	assert.Contains(t, view.View(), "Error:")
}

func TestView_Submit_NoService(t *testing.T) {
	view := NewView(context.Background(), nil, nil, nil)
	view.Open(nil)
	typeText(view, "Buy milk")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	assert.EqualError(t, view.Err(), "task service not configured")
}

func TestView_Edit_OnlyChangedFields(t *testing.T) {
	view, svc := newTestView(t)
	ctx := context.Background()
	id, err := svc.Add(ctx, "Pay rent", strPtr("landlord"), strPtr("2025-11-01"))
	require.NoError(t, err)
	task, err := svc.Get(ctx, id)
	require.NoError(t, err)

	view.Open(task)
	press(view, tea.KeyTab)
	press(view, tea.KeyTab)
	view.fields[fieldDueDate].SetValue("tomorrow")

	cmd := press(view, tea.KeyEnter)
	require.NotNil(t, cmd)
	saved := cmd().(messages.TaskSaved)
	assert.NoError(t, saved.Err)
	assert.False(t, saved.Created)
	assert.Equal(t, services.MsgTaskUpdated, saved.Message)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pay rent", got.Title)
	assert.Equal(t, "landlord", *got.Description)
	assert.Equal(t, "2025-10-15", *got.DueDate)
}

func TestView_Edit_NoChanges(t *testing.T) {
	view, _ := newTestView(t)
	view.Open(&domain.Task{ID: 3, Title: "Pay rent"})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	require.NotNil(t, cmd)
	saved := cmd().(messages.TaskSaved)
	assert.Equal(t, services.MsgTaskNotChanged, saved.Message)
}

func TestView_Edit_Missing(t *testing.T) {
	view, _ := newTestView(t)
	view.Open(&domain.Task{ID: 99, Title: "Gone"})
	view.fields[fieldTitle].SetValue("Still gone")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	require.NotNil(t, cmd)
	saved := cmd().(messages.TaskSaved)
	assert.NoError(t, saved.Err)
	assert.Equal(t, services.MsgTaskNotFound, saved.Message)
}

func TestView_Diff_ClearsDueDate(t *testing.T) {
	view, _ := newTestView(t)
	view.Open(&domain.Task{ID: 1, Title: "Pay rent", DueDate: strPtr("2025-11-01")})

	patch := view.diff("Pay rent", "", "")

	assert.False(t, patch.Title.IsSet())
	assert.False(t, patch.Description.IsSet())
	due, ok := patch.DueDate.Get()
	assert.True(t, ok)
	assert.Empty(t, due)
}

func TestView_Escape(t *testing.T) {
	view, _ := newTestView(t)
	view.Open(nil)

	cmd := press(view, tea.KeyEsc)

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewTasks}, cmd())
}

func TestView_TaskSavedError(t *testing.T) {
	view, _ := newTestView(t)
	view.saving = true

	view.Update(messages.TaskSaved{Err: domain.ErrStorageUnavailable})

	assert.False(t, view.saving)
	assert.ErrorIs(t, view.Err(), domain.ErrStorageUnavailable)
}

func TestView_IgnoresKeysWhileSaving(t *testing.T) {
	view, _ := newTestView(t)
	view.Open(nil)
	view.saving = true

	cmd := press(view, tea.KeyEsc)

	assert.Nil(t, cmd)
	assert.Contains(t, view.View(), "Saving...")
}

func TestView_View_NotReady(t *testing.T) {
	view := NewView(context.Background(), nil, nil, nil)

	assert.Contains(t, view.View(), "Initialising")
}
