package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
)

func TestExtractTaskID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected int64
		ok       bool
	}{
		{name: "valid task URI", uri: "todo://tasks/12", expected: 12, ok: true},
		{name: "invalid prefix", uri: "file://tasks/12"},
		{name: "non-numeric id", uri: "todo://tasks/abc"},
		{name: "zero id", uri: "todo://tasks/0"},
		{name: "missing id", uri: "todo://tasks/"},
		{name: "empty URI", uri: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := extractTaskID(tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, id)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleTasksResource(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store returns empty list", func(t *testing.T) {
		server, _ := newTestServer(t)

		result, err := server.handleTasksResource(ctx, makeReadResourceRequest("todo://tasks"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("returns tasks as JSON", func(t *testing.T) {
		server, tasks := newTestServer(t)
		_, err := tasks.Add(ctx, "Buy milk", nil, strPtr("2025-10-15"))
		require.NoError(t, err)

		result, err := server.handleTasksResource(ctx, makeReadResourceRequest("todo://tasks"))
		require.NoError(t, err)

		var got []TaskOutput
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Buy milk", got[0].Title)
		assert.Equal(t, "2025-10-15", *got[0].DueDate)
	})

	t.Run("list error is wrapped", func(t *testing.T) {
		server, err := NewServer(&Ports{Tasks: &mockTaskService{err: domain.ErrStorageUnavailable}})
		require.NoError(t, err)

		_, err = server.handleTasksResource(ctx, makeReadResourceRequest("todo://tasks"))

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
		assert.Contains(t, err.Error(), "listing tasks")
	})
}

func TestServer_handleTaskResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns single task", func(t *testing.T) {
		server, tasks := newTestServer(t)
		id, err := tasks.Add(ctx, "Call mom", nil, nil)
		require.NoError(t, err)

		result, err := server.handleTaskResource(ctx, makeReadResourceRequest("todo://tasks/1"))
		require.NoError(t, err)

		var got TaskOutput
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "Call mom", got.Title)
		assert.False(t, got.Completed)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		server, _ := newTestServer(t)

		_, err := server.handleTaskResource(ctx, makeReadResourceRequest("todo://tasks/99"))

		assert.Error(t, err)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		server, _ := newTestServer(t)

		_, err := server.handleTaskResource(ctx, makeReadResourceRequest("todo://tasks/abc"))

		assert.Error(t, err)
	})

	t.Run("storage error is wrapped", func(t *testing.T) {
		server, err := NewServer(&Ports{Tasks: &mockTaskService{err: errors.New("boom")}})
		require.NoError(t, err)

		_, err = server.handleTaskResource(ctx, makeReadResourceRequest("todo://tasks/1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting task")
	})
}
