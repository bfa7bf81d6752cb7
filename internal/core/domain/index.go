package domain

// IndexInfo describes a persisted vector index without loading its vectors.
type IndexInfo struct {
	// Dimension is the length of every vector in the index.
	Dimension int

	// Model is the embedding model that produced the vectors.
	Model string

	// Count is the number of vectors stored.
	Count int

	// Generation increments on every save. The identifier map written
	// alongside the index carries the same value.
	Generation uint64
}

// IDMap maps vector index slots to chunk identifiers.
// Entry i is the chunk stored at slot i.
type IDMap struct {
	// Generation matches the index generation it was saved with.
	Generation uint64

	// IDs holds chunk identifiers in slot order.
	IDs []string
}

// Len returns the number of slots mapped.
func (m *IDMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.IDs)
}

// Resolve returns the chunk identifier at slot, or false when out of range.
func (m *IDMap) Resolve(slot int) (string, bool) {
	if m == nil || slot < 0 || slot >= len(m.IDs) {
		return "", false
	}
	return m.IDs[slot], true
}

// IngestReport summarises the ingestion of one document.
type IngestReport struct {
	// DocumentID is the ingested document.
	DocumentID string

	// Passages is the number of passages the chunker produced.
	Passages int

	// Indexed is the number of chunks appended to the index.
	Indexed int

	// Skipped is the number of passages that failed to embed or store.
	Skipped int

	// Orphaned is the number of stored chunks that never reached the index.
	Orphaned int

	// IndexLen is the index length after ingestion.
	IndexLen int
}

// IndexReport describes the health of the vector index and identifier map.
type IndexReport struct {
	// Exists is false when no index has been persisted yet.
	Exists bool

	// Dimension and Model are read from the index header.
	Dimension int
	Model     string

	// IndexLen and MapLen are the lengths of the two files.
	IndexLen int
	MapLen   int

	// IndexGeneration and MapGeneration should be equal.
	IndexGeneration uint64
	MapGeneration   uint64

	// Unresolved counts map entries with no chunk record.
	Unresolved int

	// Orphans counts chunk records that no map entry points to.
	Orphans int

	// Chunks is the number of chunk records in the store.
	Chunks int
}

// Consistent reports whether the index, map and chunk store agree.
func (r IndexReport) Consistent() bool {
	return r.IndexLen == r.MapLen &&
		r.IndexGeneration == r.MapGeneration &&
		r.Unresolved == 0
}
