// Package domain defines the core business entities for kassist.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document with its extracted text
//   - Chunk: A retrievable passage within a document
//   - RawDocument: Opaque bytes handed over by a document source
//   - QuestionLog: The record of one answered question
//   - Answer: A generated answer with its citations
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
