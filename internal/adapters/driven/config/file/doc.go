// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (~/.kassist/config.toml)
//   - PromptStore: User-editable prompt templates (~/.kassist/prompts/)
package file
