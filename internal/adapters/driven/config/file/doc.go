// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.todo.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates, optionally watched for edits
package file
