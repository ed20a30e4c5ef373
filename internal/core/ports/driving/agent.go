package driving

import "context"

// AgentService turns natural-language requests into task operations.
type AgentService interface {
	// Run executes one request and returns the agent's final answer.
	Run(ctx context.Context, input string) (string, error)

	// Available reports whether an LLM is configured.
	Available() bool
}
