// Package domain defines the core business entities for the todo agent.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Task: A single todo item
//   - TaskPatch: A partial update where every field is tri-state
//   - UpsertInput / UpsertResult: The update-or-create contract
//
// It also owns title matching (tokenisation and Jaccard similarity), which
// every TaskStore implementation shares so that exact and fuzzy lookups
// behave identically regardless of the backing store.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
