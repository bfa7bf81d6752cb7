// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Chunker: Splits document text into passages
//   - Normaliser: Extracts text from raw documents
//   - NormaliserRegistry: Selects the normaliser for a source kind
//   - DocumentStore: Document and chunk persistence (the chunk store)
//   - QuestionLogStore: Answered question persistence
//   - IndexStore: Vector index and identifier map persistence
//   - EmbeddingService: Generates vector embeddings
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, questions cannot be answered
//     but documents can still be ingested.
//   - PromptStore: Customisable prompt templates. Without it, built-in defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
