package memory

import (
	"testing"

	"github.com/custodia-labs/todo-agent/internal/adapters/driven/storage/storagetest"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driven"
)

func TestTaskStore_Suite(t *testing.T) {
	storagetest.RunTaskStoreSuite(t, func(*testing.T) driven.TaskStore {
		return NewTaskStore()
	})
}
