package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
	"github.com/custodia-labs/kassist/internal/core/ports/driving"
	"github.com/custodia-labs/kassist/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService creates documents and hands them to ingestion.
type DocumentService struct {
	docStore    driven.DocumentStore
	normalisers driven.NormaliserRegistry
	ingest      driving.IngestService
	now         func() time.Time
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docStore driven.DocumentStore,
	normalisers driven.NormaliserRegistry,
	ingest driving.IngestService,
) *DocumentService {
	return &DocumentService{
		docStore:    docStore,
		normalisers: normalisers,
		ingest:      ingest,
		now:         time.Now,
	}
}

// Submit normalises a raw document, stores it and ingests it.
// Ingestion is called explicitly once the document record exists.
func (s *DocumentService) Submit(
	ctx context.Context,
	raw *domain.RawDocument,
) (*domain.Document, *domain.IngestReport, error) {
	if raw == nil {
		return nil, nil, fmt.Errorf("%w: document is required", domain.ErrInvalidInput)
	}
	if !raw.Kind.IsValid() {
		return nil, nil, fmt.Errorf("%w: source kind %q", domain.ErrUnsupportedType, raw.Kind)
	}

	result, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("normalise %s: %w", raw.URI, err)
	}

	doc := result.Document
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if raw.Title != "" {
		doc.Title = raw.Title
	}
	if doc.URI == "" {
		doc.URI = raw.URI
	}
	doc.Kind = raw.Kind
	doc.CreatedAt = s.now().UTC()

	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		return nil, nil, fmt.Errorf("save document: %w", err)
	}
	logger.Debug("Created document %s (%s)", doc.ID, doc.Reference())

	report, err := s.ingest.Ingest(ctx, &doc)
	if err != nil {
		return &doc, report, fmt.Errorf("ingest %s: %w", doc.ID, err)
	}
	return &doc, report, nil
}

// List returns all documents, oldest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// Chunks returns the stored chunks of a document in position order.
func (s *DocumentService) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.docStore.GetChunks(ctx, documentID)
}
