// Package memory provides in-memory store implementations for tests and
// throwaway sessions.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Chunks are kept in insertion order to mirror the SQLite store.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	docOrder  []string
	chunks    []domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
	}
}

// SaveDocument stores a new document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[doc.ID]; exists {
		return fmt.Errorf("saving document: %s already exists", doc.ID)
	}
	s.documents[doc.ID] = *doc
	s.docOrder = append(s.docOrder, doc.ID)
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents in creation order.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		docs = append(docs, s.documents[id])
	}
	return docs, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	order := s.docOrder[:0]
	for _, docID := range s.docOrder {
		if docID != id {
			order = append(order, docID)
		}
	}
	s.docOrder = order
	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.DocumentID != id {
			kept = append(kept, c)
		}
	}
	s.chunks = kept
	return nil
}

// CreateChunk stores a chunk. The parent document must exist.
func (s *DocumentStore) CreateChunk(_ context.Context, chunk *domain.Chunk) error {
	if chunk.Content == "" {
		return fmt.Errorf("%w: chunk content is empty", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[chunk.DocumentID]; !ok {
		return fmt.Errorf("saving chunk: document %s: %w", chunk.DocumentID, domain.ErrNotFound)
	}
	c := *chunk
	c.Embedding = append([]float32(nil), chunk.Embedding...)
	s.chunks = append(s.chunks, c)
	return nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.chunks {
		if s.chunks[i].ID == id {
			c := s.chunks[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetChunks retrieves all chunks for a document in position order.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Chunk
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// ListChunks returns every chunk in insertion order.
func (s *DocumentStore) ListChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Chunk(nil), s.chunks...), nil
}

// CountChunks returns the number of stored chunks.
func (s *DocumentStore) CountChunks(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}
