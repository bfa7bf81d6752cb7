package driven

import (
	"context"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument stores a new document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, oldest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and, by cascade, its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// CreateChunk stores a single chunk including its embedding.
	CreateChunk(ctx context.Context, chunk *domain.Chunk) error

	// GetChunk retrieves a specific chunk by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document in position order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ListChunks returns every chunk in creation order.
	ListChunks(ctx context.Context) ([]domain.Chunk, error)

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)
}

// QuestionLogStore persists answered questions.
type QuestionLogStore interface {
	// Append records an answered question.
	Append(ctx context.Context, entry *domain.QuestionLog) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.QuestionLog, error)
}
