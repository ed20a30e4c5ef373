package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driven"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driving"
	"github.com/custodia-labs/todo-agent/internal/logger"
)

// Ensure AgentService implements the interface.
var _ driving.AgentService = (*AgentService)(nil)

// DefaultMaxSteps bounds the chat rounds of a single request.
const DefaultMaxSteps = 8

// fallbackSystemPrompt is used when no PromptStore is configured.
const fallbackSystemPrompt = "You are an AI assistant for a CLI Todo app. Today is %s. " +
	"Turn anything the user wants or needs to do into a todo task using the tools provided, " +
	"and check for an existing task by title before creating a new one."

// AgentService runs natural-language requests through an LLM that calls
// Toolbox tools. It is stateless between requests.
type AgentService struct {
	llm      driven.LLMService
	tools    *Toolbox
	prompts  driven.PromptStore
	maxSteps int
	now      func() time.Time
}

// AgentOption configures an AgentService.
type AgentOption func(*AgentService)

// WithMaxSteps sets the chat round budget. Values below 1 keep the default.
func WithMaxSteps(n int) AgentOption {
	return func(a *AgentService) {
		if n > 0 {
			a.maxSteps = n
		}
	}
}

// WithPromptStore loads the system prompt from prompts.
func WithPromptStore(prompts driven.PromptStore) AgentOption {
	return func(a *AgentService) {
		a.prompts = prompts
	}
}

// WithAgentClock overrides the clock used for today's date in the prompt.
func WithAgentClock(now func() time.Time) AgentOption {
	return func(a *AgentService) {
		a.now = now
	}
}

// NewAgentService creates an agent. llm may be nil, in which case Run
// returns domain.ErrLLMUnavailable.
func NewAgentService(llm driven.LLMService, tools *Toolbox, opts ...AgentOption) *AgentService {
	a := &AgentService{
		llm:      llm,
		tools:    tools,
		maxSteps: DefaultMaxSteps,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Available reports whether an LLM is configured.
func (a *AgentService) Available() bool {
	return a.llm != nil
}

// Run executes one request. Tool failures are reported back to the model
// as text so it can recover; only LLM and context errors end the loop.
func (a *AgentService) Run(ctx context.Context, input string) (string, error) {
	if a.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: empty request", domain.ErrInvalidArgument)
	}

	logger.Section("Agent")
	logger.Debug("Model: %s, input: %q", a.llm.ModelName(), input)

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: a.systemPrompt()},
		{Role: driven.RoleUser, Content: input},
	}
	opts := driven.ChatOptions{Tools: a.tools.Definitions()}

	for step := 1; step <= a.maxSteps; step++ {
		reply, err := a.llm.Chat(ctx, messages, opts)
		if err != nil {
			return "", fmt.Errorf("agent step %d: %w", step, err)
		}
		if len(reply.ToolCalls) == 0 {
			logger.Debug("Agent finished after %d step(s)", step)
			return strings.TrimSpace(reply.Content), nil
		}

		messages = append(messages, driven.ChatMessage{
			Role:      driven.RoleAssistant,
			Content:   reply.Content,
			ToolCalls: reply.ToolCalls,
		})
		for _, call := range reply.ToolCalls {
			out := a.runTool(ctx, call)
			messages = append(messages, driven.ChatMessage{
				Role:       driven.RoleTool,
				Content:    out,
				ToolCallID: call.ID,
			})
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: %d steps", domain.ErrAgentStepLimit, a.maxSteps)
}

func (a *AgentService) runTool(ctx context.Context, call driven.ToolCall) string {
	out, err := a.tools.Call(ctx, call.Name, call.Arguments)
	if err == nil {
		logger.Debug("Tool %s -> %q", call.Name, out)
		return out
	}

	logger.Warn("Tool %s failed: %v", call.Name, err)
	switch {
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "Error: the task database is unavailable. Tell the user to try again later."
	default:
		return "Error: " + err.Error()
	}
}

func (a *AgentService) systemPrompt() string {
	template := fallbackSystemPrompt
	if a.prompts != nil {
		p, err := a.prompts.Load(driven.PromptAgentSystem)
		if err != nil {
			logger.Warn("Loading agent prompt: %v", err)
		} else if strings.Count(p, "%s") == 1 {
			template = p
		} else {
			logger.Warn("Agent prompt must contain exactly one %%s; using built-in prompt")
		}
	}
	return strings.Replace(template, "%s", a.now().Format(isoDate), 1)
}
