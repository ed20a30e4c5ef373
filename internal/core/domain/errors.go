package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Update and Delete report a missing id as false instead.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed or missing input,
	// such as an empty task title.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageUnavailable indicates the backing store could not be opened
	// or a statement could not execute. It is the only storage condition
	// that propagates as a hard failure.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Natural-language commands are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrAgentStepLimit indicates the agent kept requesting tool calls
	// past its configured step budget.
	ErrAgentStepLimit = errors.New("agent step limit exceeded")

	// ErrUnknownTool indicates the model requested a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")
)
