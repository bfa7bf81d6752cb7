package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
	"github.com/custodia-labs/kassist/internal/core/ports/driving"
	"github.com/custodia-labs/kassist/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService checks and repairs the vector index against the chunk store.
type IndexService struct {
	embedder   driven.EmbeddingService
	docStore   driven.DocumentStore
	indexStore driven.IndexStore
}

// NewIndexService creates a new index maintenance service.
// The embedder is optional; it only supplies the model name and dimension
// for a rebuild when no index has been persisted.
func NewIndexService(
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
	indexStore driven.IndexStore,
) *IndexService {
	return &IndexService{
		embedder:   embedder,
		docStore:   docStore,
		indexStore: indexStore,
	}
}

// Verify checks that the index, identifier map and chunk store agree.
func (s *IndexService) Verify(ctx context.Context) (*domain.IndexReport, error) {
	if err := s.indexStore.Lock(ctx); err != nil {
		return nil, err
	}
	defer s.indexStore.Unlock()

	logger.Section("Index Verify")

	info, err := s.indexStore.Stat(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexInconsistency, err)
	}
	idMap, err := s.indexStore.LoadIDMap(ctx)
	if err != nil {
		return nil, err
	}
	chunks, err := s.docStore.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	report := &domain.IndexReport{
		MapLen:        idMap.Len(),
		MapGeneration: idMap.Generation,
		Chunks:        len(chunks),
	}
	if info != nil {
		index := s.indexStore.Load(ctx, info.Dimension, info.Model)
		report.Exists = true
		report.Dimension = info.Dimension
		report.Model = info.Model
		report.IndexLen = index.Len()
		report.IndexGeneration = index.Generation()
	}

	known := make(map[string]struct{}, len(chunks))
	for i := range chunks {
		known[chunks[i].ID] = struct{}{}
	}
	mapped := make(map[string]struct{}, len(idMap.IDs))
	for _, id := range idMap.IDs {
		mapped[id] = struct{}{}
		if _, ok := known[id]; !ok {
			report.Unresolved++
		}
	}
	for id := range known {
		if _, ok := mapped[id]; !ok {
			report.Orphans++
		}
	}

	logger.Debug("index=%d map=%d chunks=%d unresolved=%d orphans=%d",
		report.IndexLen, report.MapLen, report.Chunks, report.Unresolved, report.Orphans)
	return report, nil
}

// Rebuild recreates the index and identifier map from stored chunk
// embeddings in creation order. Chunks are never re-embedded.
func (s *IndexService) Rebuild(ctx context.Context) (*domain.IndexReport, error) {
	if err := s.indexStore.Lock(ctx); err != nil {
		return nil, err
	}
	defer s.indexStore.Unlock()

	logger.Section("Index Rebuild")

	info, err := s.indexStore.Stat(ctx)
	if err != nil {
		logger.Warn("existing index unreadable, replacing: %v", err)
		info = nil
	}
	chunks, err := s.docStore.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	dim, model, err := s.identity(info, chunks)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		return nil, fmt.Errorf("%w: no stored embeddings to rebuild from", domain.ErrInvalidInput)
	}

	var prevGen uint64
	if info != nil {
		prevGen = info.Generation
	}
	if m, err := s.indexStore.LoadIDMap(ctx); err == nil && m.Generation > prevGen {
		prevGen = m.Generation
	}

	index := s.indexStore.NewIndex(dim, model)
	idMap := &domain.IDMap{}
	skipped := 0
	for i := range chunks {
		c := &chunks[i]
		if c.EmbeddingModel != "" && model != "" && c.EmbeddingModel != model {
			logger.Warn("chunk %s: %v (embedded with %q, index uses %q); skipped",
				c.ID, domain.ErrModelMismatch, c.EmbeddingModel, model)
			skipped++
			continue
		}
		if len(c.Embedding) != dim {
			logger.Warn("chunk %s: %v (got %d, want %d); skipped",
				c.ID, domain.ErrDimensionMismatch, len(c.Embedding), dim)
			skipped++
			continue
		}
		if _, err := index.Add(c.Embedding); err != nil {
			return nil, err
		}
		idMap.IDs = append(idMap.IDs, c.ID)
	}

	gen := prevGen + 1
	index.SetGeneration(gen)
	idMap.Generation = gen

	if err := s.indexStore.Save(ctx, index); err != nil {
		return nil, err
	}
	if err := s.indexStore.SaveIDMap(ctx, idMap); err != nil {
		return nil, err
	}

	logger.Info("Rebuilt index with %d vectors (%d skipped)", index.Len(), skipped)
	return &domain.IndexReport{
		Exists:          true,
		Dimension:       dim,
		Model:           model,
		IndexLen:        index.Len(),
		MapLen:          idMap.Len(),
		IndexGeneration: gen,
		MapGeneration:   gen,
		Orphans:         skipped,
		Chunks:          len(chunks),
	}, nil
}

// identity picks the dimension and model for a rebuilt index.
//
// A persisted header is authoritative: stored vectors are never relabelled
// with another model, so a different embedder refuses the rebuild. Without a
// header the embedder decides, then the chunks themselves.
func (s *IndexService) identity(info *domain.IndexInfo, chunks []domain.Chunk) (int, string, error) {
	var embedDim int
	var embedModel string
	if s.embedder != nil {
		embedDim = s.embedder.Dimensions()
		embedModel = s.embedder.ModelName()
	}

	if info != nil && info.Model != "" {
		if embedModel != "" && embedModel != info.Model {
			return 0, "", fmt.Errorf("%w: index built with %q, embedder is %q; re-ingest documents to switch models",
				domain.ErrModelMismatch, info.Model, embedModel)
		}
		return info.Dimension, info.Model, nil
	}

	dim, model := embedDim, embedModel
	if model == "" {
		for i := range chunks {
			if chunks[i].EmbeddingModel != "" {
				model = chunks[i].EmbeddingModel
				break
			}
		}
	}
	if dim == 0 && info != nil {
		dim = info.Dimension
	}
	if dim == 0 {
		for i := range chunks {
			c := &chunks[i]
			if len(c.Embedding) > 0 && (c.EmbeddingModel == "" || c.EmbeddingModel == model) {
				dim = len(c.Embedding)
				break
			}
		}
	}
	return dim, model, nil
}
