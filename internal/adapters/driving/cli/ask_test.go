package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
)

func TestAskCmd(t *testing.T) {
	setupTestServices(t, &scriptedLLM{reply: "You have no tasks."})

	out, err := execute(t, "ask", "what", "is", "due?")

	require.NoError(t, err)
	assert.Equal(t, "You have no tasks.\n", out)
}

func TestAskCmd_NoLLM(t *testing.T) {
	setupTestServices(t, nil)

	_, err := execute(t, "ask", "list my tasks")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "set-key")
}

func TestAskCmd_Blank(t *testing.T) {
	setupTestServices(t, &scriptedLLM{reply: "unused"})

	_, err := execute(t, "ask", "  ")

	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestAskCmd_NotConfigured(t *testing.T) {
	SetServices(nil, nil)
	injected = true
	t.Cleanup(func() { injected = false })

	_, err := execute(t, "ask", "hi")

	assert.EqualError(t, err, "agent service not configured")
}
