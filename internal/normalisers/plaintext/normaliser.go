package plaintext

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedKinds returns the source kinds this normaliser handles.
func (n *Normaliser) SupportedKinds() []domain.SourceKind {
	return []domain.SourceKind{domain.SourceKindPlaintext}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise converts a raw document to a normalised document.
// The Content field contains the full text content.
// Chunking is handled by the Chunker during ingestion.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	doc := domain.Document{
		URI:     raw.URI,
		Title:   extractTitleFromMetadataOrURI(raw),
		Kind:    domain.SourceKindPlaintext,
		Content: normaliseNewlines(string(raw.Content)),
	}

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// extractTitleFromMetadataOrURI checks metadata for title first, then falls back to URI.
func extractTitleFromMetadataOrURI(raw *domain.RawDocument) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}
	return extractTitle(raw.URI)
}

// extractTitle extracts a human-readable title from a URI.
func extractTitle(uri string) string {
	// Get filename from path
	filename := filepath.Base(uri)

	// Remove common extensions for cleaner title
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	// Replace underscores and dashes with spaces
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}

// normaliseNewlines converts CRLF and lone CR line endings to LF.
func normaliseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
