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

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService chunks, embeds and indexes documents.
//
// Embedding and chunk writes run without the index lock. Only loading,
// appending to and saving the index and identifier map happen inside it.
type IngestService struct {
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	docStore   driven.DocumentStore
	indexStore driven.IndexStore
	now        func() time.Time
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
	indexStore driven.IndexStore,
) *IngestService {
	return &IngestService{
		chunker:    chunker,
		embedder:   embedder,
		docStore:   docStore,
		indexStore: indexStore,
		now:        time.Now,
	}
}

// pendingVector is a stored chunk waiting to be appended to the index.
type pendingVector struct {
	chunkID string
	vector  []float32
}

// Ingest runs the ingestion pipeline for one newly created document.
func (s *IngestService) Ingest(ctx context.Context, doc *domain.Document) (*domain.IngestReport, error) {
	if doc == nil || doc.ID == "" {
		return nil, fmt.Errorf("%w: document is required", domain.ErrInvalidInput)
	}
	if !doc.Kind.IsValid() {
		return nil, fmt.Errorf("%w: source kind %q", domain.ErrUnsupportedType, doc.Kind)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Ingest")
	logger.Debug("Document: %s (%s, kind=%s)", doc.ID, doc.Title, doc.Kind)

	passages := s.chunker.Chunk(doc.Content, doc.Kind)
	report := &domain.IngestReport{DocumentID: doc.ID, Passages: len(passages)}
	logger.Debug("Chunker produced %d passages", len(passages))

	if len(passages) == 0 {
		return report, nil
	}

	// Refuse to mix models or dimensions before any chunk is written.
	dim, err := s.expectedDimension(ctx)
	if err != nil {
		return report, err
	}

	pending := make([]pendingVector, 0, len(passages))
	for i, p := range passages {
		vec, err := s.embedder.Embed(ctx, p.Text)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			logger.Warn("passage %d of %s: %v: %v; skipped", i, doc.ID, domain.ErrEmbeddingFailed, err)
			report.Skipped++
			continue
		}
		if dim == 0 {
			dim = len(vec)
		}
		if len(vec) == 0 || len(vec) != dim {
			logger.Warn("passage %d of %s: %v (got %d, want %d); skipped",
				i, doc.ID, domain.ErrDimensionMismatch, len(vec), dim)
			report.Skipped++
			continue
		}

		chunk := &domain.Chunk{
			ID:             uuid.New().String(),
			DocumentID:     doc.ID,
			Content:        p.Text,
			PageNumber:     p.PageNumber,
			Position:       i,
			Embedding:      vec,
			EmbeddingModel: s.embedder.ModelName(),
			CreatedAt:      s.now().UTC(),
		}
		if err := s.docStore.CreateChunk(ctx, chunk); err != nil {
			logger.Warn("passage %d of %s: store chunk: %v; skipped", i, doc.ID, err)
			report.Skipped++
			continue
		}
		pending = append(pending, pendingVector{chunkID: chunk.ID, vector: vec})
	}

	if len(pending) == 0 {
		logger.Warn("document %s: no passages could be indexed", doc.ID)
		return report, nil
	}

	indexLen, err := s.commit(ctx, dim, pending)
	if err != nil {
		report.Orphaned = len(pending)
		logger.Error("document %s: %d chunks stored but not indexed; run `kassist index rebuild`: %v",
			doc.ID, len(pending), err)
		return report, err
	}

	report.Indexed = len(pending)
	report.IndexLen = indexLen
	logger.Info("Indexed %d of %d passages from %s (index size %d)",
		report.Indexed, report.Passages, doc.ID, report.IndexLen)
	return report, nil
}

// expectedDimension checks the persisted index against the embedder and
// returns the dimension new vectors must have. Zero means not yet known.
func (s *IngestService) expectedDimension(ctx context.Context) (int, error) {
	info, err := s.indexStore.Stat(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrIndexInconsistency, err)
	}
	if info == nil {
		return s.embedder.Dimensions(), nil
	}
	if err := checkIdentity(info, s.embedder); err != nil {
		return 0, err
	}
	return info.Dimension, nil
}

// commit appends pending vectors to the index and identifier map under the lock.
func (s *IngestService) commit(ctx context.Context, dim int, pending []pendingVector) (int, error) {
	if err := s.indexStore.Lock(ctx); err != nil {
		return 0, err
	}
	defer s.indexStore.Unlock()

	model := s.embedder.ModelName()

	info, err := s.indexStore.Stat(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrIndexInconsistency, err)
	}
	if info != nil {
		if info.Dimension != dim {
			return 0, fmt.Errorf("%w: index has %d, vectors have %d",
				domain.ErrDimensionMismatch, info.Dimension, dim)
		}
		if info.Model != model {
			return 0, fmt.Errorf("%w: index built with %q, embedder is %q",
				domain.ErrModelMismatch, info.Model, model)
		}
	}

	idMap, err := s.indexStore.LoadIDMap(ctx)
	if err != nil {
		return 0, err
	}
	index := s.indexStore.Load(ctx, dim, model)

	if index.Len() != idMap.Len() {
		return 0, fmt.Errorf("%w: index has %d vectors, identifier map has %d entries",
			domain.ErrIndexInconsistency, index.Len(), idMap.Len())
	}
	if info != nil && index.Len() != info.Count {
		return 0, fmt.Errorf("%w: index file unreadable", domain.ErrIndexInconsistency)
	}

	for _, p := range pending {
		if _, err := index.Add(p.vector); err != nil {
			return 0, err
		}
		idMap.IDs = append(idMap.IDs, p.chunkID)
	}

	gen := max(index.Generation(), idMap.Generation) + 1
	index.SetGeneration(gen)
	idMap.Generation = gen

	if err := s.indexStore.Save(ctx, index); err != nil {
		return 0, err
	}
	if err := s.indexStore.SaveIDMap(ctx, idMap); err != nil {
		return 0, err
	}

	if index.Len() != idMap.Len() {
		return 0, fmt.Errorf("%w: after save index has %d, map has %d",
			domain.ErrIndexInconsistency, index.Len(), idMap.Len())
	}
	return index.Len(), nil
}

// checkIdentity compares a persisted index header with an embedder.
func checkIdentity(info *domain.IndexInfo, embedder driven.EmbeddingService) error {
	if model := embedder.ModelName(); info.Model != "" && model != info.Model {
		return fmt.Errorf("%w: index built with %q, embedder is %q",
			domain.ErrModelMismatch, info.Model, model)
	}
	if dims := embedder.Dimensions(); dims > 0 && info.Dimension > 0 && dims != info.Dimension {
		return fmt.Errorf("%w: index has %d, embedder produces %d",
			domain.ErrDimensionMismatch, info.Dimension, dims)
	}
	return nil
}
