package driving

import (
	"context"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

// IndexService maintains the vector index and identifier map.
type IndexService interface {
	// Verify checks that the index, identifier map and chunk store agree.
	Verify(ctx context.Context) (*domain.IndexReport, error)

	// Rebuild recreates the index and map from the stored chunk embeddings.
	Rebuild(ctx context.Context) (*domain.IndexReport, error)
}
