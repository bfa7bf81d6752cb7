package driven

import "github.com/custodia-labs/kassist/internal/core/domain"

// Chunker splits document text into ordered passages.
// Output must be deterministic for the same input.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunk splits text extracted from a source of the given kind.
	Chunk(text string, kind domain.SourceKind) []domain.Passage
}
