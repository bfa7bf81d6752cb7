package driven

import (
	"context"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

// VectorIndex is an in-memory flat index of equal-length vectors.
// Slots are assigned in append order and never reused.
type VectorIndex interface {
	// Dimension returns the length every vector must have.
	Dimension() int

	// Model returns the embedding model the vectors came from.
	Model() string

	// Len returns the number of vectors stored.
	Len() int

	// Generation returns the save counter the index was loaded with.
	Generation() uint64

	// SetGeneration sets the counter written by the next save.
	SetGeneration(gen uint64)

	// Add appends a vector and returns its slot.
	// Returns domain.ErrDimensionMismatch if the length is wrong.
	Add(vector []float32) (int, error)

	// Vector returns a copy of the vector at slot.
	Vector(slot int) ([]float32, bool)

	// Search returns up to k hits ordered by ascending distance.
	// Ties keep slot order. An empty index yields no hits.
	Search(query []float32, k int) []VectorHit
}

// VectorHit represents a nearest-neighbour search result.
type VectorHit struct {
	// Slot is the index position of the matched vector.
	Slot int

	// Distance is the squared Euclidean distance to the query.
	Distance float64
}

// IndexStore persists the vector index and its identifier map.
//
// Saves replace files atomically, so readers only ever observe a complete
// old or new file. Writers must hold the store lock across
// load, append and save. The lock is shared by every process using the
// same data directory.
type IndexStore interface {
	// Lock blocks until the ingestion lock is held or ctx is done.
	Lock(ctx context.Context) error

	// Unlock releases the ingestion lock.
	Unlock()

	// Stat reads the index header. Returns nil when no index is persisted.
	Stat(ctx context.Context) (*domain.IndexInfo, error)

	// Load returns the persisted index when it exists and matches dimension,
	// otherwise an empty index of that dimension. It never fails; unreadable
	// files are reported through the logger and treated as absent.
	Load(ctx context.Context, dimension int, model string) VectorIndex

	// NewIndex returns an empty index.
	NewIndex(dimension int, model string) VectorIndex

	// Save atomically replaces the persisted index.
	Save(ctx context.Context, index VectorIndex) error

	// LoadIDMap returns the persisted identifier map, or an empty map if none exists.
	LoadIDMap(ctx context.Context) (*domain.IDMap, error)

	// SaveIDMap atomically replaces the persisted identifier map.
	SaveIDMap(ctx context.Context, m *domain.IDMap) error
}
