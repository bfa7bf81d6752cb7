package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Document represents an ingested document.
// It is immutable once created.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// URI is the original location (file path, URL, etc).
	URI string

	// Kind is the source kind the text was extracted from.
	Kind SourceKind

	// Content is the full extracted text.
	// Paginated documents separate pages with a form feed ("\f").
	Content string

	// CreatedAt is when the document was created.
	CreatedAt time.Time
}

// Reference returns the label used in citations.
// The URI's base is preferred; the title is used when there is no URI.
func (d *Document) Reference() string {
	if d.URI != "" {
		return filepath.Base(d.URI)
	}
	return d.Title
}

// Pages returns the document text split into physical pages.
// Flat documents have a single page.
func (d *Document) Pages() []string {
	if !d.Kind.IsPaginated() {
		return []string{d.Content}
	}
	return strings.Split(d.Content, "\f")
}

// Chunk represents a retrievable passage within a document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the cleaned passage text. Never empty.
	Content string

	// PageNumber is the physical page for paginated sources,
	// or the sequential passage number for flat sources.
	PageNumber int

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation of Content.
	Embedding []float32

	// EmbeddingModel names the model that produced Embedding.
	// Empty for chunks stored before the model was recorded.
	EmbeddingModel string

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time
}

// Passage is a cleaned piece of text produced by the chunker,
// before it has an identity or an embedding.
type Passage struct {
	// Text is the cleaned passage text.
	Text string

	// PageNumber is the page (or sequence number) the passage came from.
	PageNumber int
}
