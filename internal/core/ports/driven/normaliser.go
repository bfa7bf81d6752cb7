package driven

import (
	"context"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

// Normaliser extracts text from raw documents.
// Each normaliser handles specific source kinds (e.g., PDF, Markdown).
type Normaliser interface {
	// SupportedKinds returns the source kinds this normaliser handles.
	SupportedKinds() []domain.SourceKind

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Normalise transforms a raw document into a document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Note: Normalisation only produces a Document with Content.
// Chunking is handled by the Chunker during ingestion.
type NormaliseResult struct {
	// Document is the normalised document with Content field populated.
	Document domain.Document
}
