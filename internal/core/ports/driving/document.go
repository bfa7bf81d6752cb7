package driving

import (
	"context"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

// DocumentService creates and inspects documents.
type DocumentService interface {
	// Submit normalises a raw document, stores it and ingests it.
	// The document is returned even when ingestion indexed no chunks.
	Submit(ctx context.Context, raw *domain.RawDocument) (*domain.Document, *domain.IngestReport, error)

	// List returns all documents, oldest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Chunks returns the stored chunks of a document in position order.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}

// IngestService runs the ingestion pipeline for one document.
type IngestService interface {
	// Ingest chunks, embeds and indexes a newly created document.
	// It must be called exactly once per document.
	Ingest(ctx context.Context, doc *domain.Document) (*domain.IngestReport, error)
}
