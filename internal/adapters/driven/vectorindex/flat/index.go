package flat

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/viant/vec/search"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
)

const (
	indexMagic   = "KAVX"
	indexVersion = uint32(1)

	// headerFixedSize covers magic, version, dimension, count,
	// generation and the model name length.
	headerFixedSize = 4 + 4 + 4 + 4 + 8 + 4

	maxModelNameLen = 1024
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an append-only flat vector index.
type Index struct {
	dim  int
	gen  uint64
	mdl  string
	vecs [][]float32
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int, model string) *Index {
	return &Index{dim: dimension, mdl: model}
}

// Dimension returns the vector length.
func (i *Index) Dimension() int { return i.dim }

// Model returns the embedding model name.
func (i *Index) Model() string { return i.mdl }

// Len returns the number of stored vectors.
func (i *Index) Len() int { return len(i.vecs) }

// Generation returns the save counter.
func (i *Index) Generation() uint64 { return i.gen }

// SetGeneration sets the save counter.
func (i *Index) SetGeneration(gen uint64) { i.gen = gen }

// Add appends a copy of vector and returns its slot.
func (i *Index) Add(vector []float32) (int, error) {
	if len(vector) != i.dim {
		return 0, fmt.Errorf("%w: got %d, index has %d", domain.ErrDimensionMismatch, len(vector), i.dim)
	}
	v := make([]float32, len(vector))
	copy(v, vector)
	i.vecs = append(i.vecs, v)
	return len(i.vecs) - 1, nil
}

// Vector returns a copy of the vector at slot.
func (i *Index) Vector(slot int) ([]float32, bool) {
	if slot < 0 || slot >= len(i.vecs) {
		return nil, false
	}
	v := make([]float32, i.dim)
	copy(v, i.vecs[slot])
	return v, true
}

// Search returns the k nearest vectors by squared Euclidean distance.
// A query of the wrong dimension or k <= 0 yields no hits.
func (i *Index) Search(query []float32, k int) []driven.VectorHit {
	if k <= 0 || len(i.vecs) == 0 || len(query) != i.dim {
		return nil
	}

	q := search.Float32s(query)
	hits := make([]driven.VectorHit, len(i.vecs))
	for slot, v := range i.vecs {
		d := float64(q.EuclideanDistance(v))
		hits[slot] = driven.VectorHit{Slot: slot, Distance: d * d}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}

// MarshalBinary encodes the index header followed by the vectors.
func (i *Index) MarshalBinary() ([]byte, error) {
	size := headerFixedSize + len(i.mdl) + 4*i.dim*len(i.vecs)
	out := make([]byte, 0, size)

	out = append(out, indexMagic...)
	out = binary.LittleEndian.AppendUint32(out, indexVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(i.dim))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(i.vecs)))
	out = binary.LittleEndian.AppendUint64(out, i.gen)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(i.mdl)))
	out = append(out, i.mdl...)
	for _, v := range i.vecs {
		for _, f := range v {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out, nil
}

// UnmarshalBinary restores the index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	info, off, err := decodeHeader(data)
	if err != nil {
		return err
	}
	if want := off + 4*info.Dimension*info.Count; len(data) != want {
		return fmt.Errorf("flat: index body is %d bytes, want %d", len(data)-off, want-off)
	}

	vecs := make([][]float32, info.Count)
	for n := range vecs {
		v := make([]float32, info.Dimension)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		vecs[n] = v
	}

	i.dim = info.Dimension
	i.mdl = info.Model
	i.gen = info.Generation
	i.vecs = vecs
	return nil
}

// decodeHeader parses the index header and returns the body offset.
func decodeHeader(data []byte) (*domain.IndexInfo, int, error) {
	const fixed = headerFixedSize
	if len(data) < fixed || string(data[:4]) != indexMagic {
		return nil, 0, errors.New("flat: not an index file")
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != indexVersion {
		return nil, 0, fmt.Errorf("flat: unsupported index version %d", v)
	}

	info := &domain.IndexInfo{
		Dimension:  int(binary.LittleEndian.Uint32(data[8:12])),
		Count:      int(binary.LittleEndian.Uint32(data[12:16])),
		Generation: binary.LittleEndian.Uint64(data[16:24]),
	}
	modelLen := int(binary.LittleEndian.Uint32(data[24:28]))
	if modelLen > maxModelNameLen || fixed+modelLen > len(data) {
		return nil, 0, errors.New("flat: truncated index header")
	}
	info.Model = string(data[fixed : fixed+modelLen])
	return info, fixed + modelLen, nil
}
