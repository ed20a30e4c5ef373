package driven

import (
	"context"
	"encoding/json"
)

// LLMService provides tool-calling chat completions for the agent.
// This is an optional service - when nil, natural-language commands are disabled.
//
// Implementations may include:
//   - OpenAI (gpt-4o-mini)
//   - Any OpenAI-compatible server (Azure OpenAI, Ollama, LM Studio) via base URL
type LLMService interface {
	// Chat conducts one round of a multi-turn conversation. The reply either
	// carries final content or asks for tool calls.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (ChatReply, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", "assistant" or "tool".
	Role string

	// Content is the message text.
	Content string

	// ToolCalls are the calls requested by an assistant message.
	ToolCalls []ToolCall

	// ToolCallID links a tool message to the call it answers.
	ToolCallID string
}

// ToolCall is a single function invocation requested by the model.
type ToolCall struct {
	// ID is the provider-assigned call id.
	ID string

	// Name is the tool name.
	Name string

	// Arguments is the raw JSON argument object.
	Arguments json.RawMessage
}

// ToolDefinition describes a tool the model may call.
type ToolDefinition struct {
	// Name is the tool name.
	Name string

	// Description tells the model when to use the tool.
	Description string

	// Parameters is a JSON Schema object describing the arguments.
	Parameters json.RawMessage
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// Tools are offered to the model for this round.
	Tools []ToolDefinition
}

// ChatReply is the model's answer for one round.
type ChatReply struct {
	// Content is the assistant text, possibly empty when tools are requested.
	Content string

	// ToolCalls are the tools the model wants executed before it continues.
	ToolCalls []ToolCall
}
