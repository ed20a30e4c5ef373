// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - TaskService: task CRUD, title lookup and upsert over a driven.TaskStore
//   - AgentService: the LLM tool-calling loop
//   - Toolbox: the tools the agent may call, with JSON Schema validated arguments
//   - NormalizeDueDate: natural-language due dates to ISO 8601
//
// Services are pure Go with no CGO.
package services
