package flat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

func TestIndex_AddAndLen(t *testing.T) {
	idx := New(3, "test-model")

	slot, err := idx.Add([]float32{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0, slot)

	slot, err = idx.Add([]float32{4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 1, slot)

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 3, idx.Dimension())
	assert.Equal(t, "test-model", idx.Model())
}

func TestIndex_Add_DimensionMismatch(t *testing.T) {
	idx := New(3, "m")

	_, err := idx.Add([]float32{1, 2})
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 0, idx.Len())
}

func TestIndex_Add_CopiesVector(t *testing.T) {
	idx := New(2, "m")
	v := []float32{1, 1}
	_, err := idx.Add(v)
	require.NoError(t, err)

	v[0] = 99
	got, ok := idx.Vector(0)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 1}, got)
}

func TestIndex_Search_OrderedBySquaredDistance(t *testing.T) {
	idx := New(2, "m")
	for _, v := range [][]float32{{3, 0}, {1, 0}, {0, 2}, {0, 0}} {
		_, err := idx.Add(v)
		require.NoError(t, err)
	}

	hits := idx.Search([]float32{0, 0}, 3)
	require.Len(t, hits, 3)

	assert.Equal(t, 3, hits[0].Slot)
	assert.InDelta(t, 0.0, hits[0].Distance, 1e-6)
	assert.Equal(t, 1, hits[1].Slot)
	assert.InDelta(t, 1.0, hits[1].Distance, 1e-5)
	assert.Equal(t, 2, hits[2].Slot)
	assert.InDelta(t, 4.0, hits[2].Distance, 1e-4)
}

func TestIndex_Search_TiesKeepSlotOrder(t *testing.T) {
	idx := New(1, "m")
	for _, v := range [][]float32{{1}, {-1}, {1}} {
		_, err := idx.Add(v)
		require.NoError(t, err)
	}

	hits := idx.Search([]float32{0}, 3)
	require.Len(t, hits, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{hits[0].Slot, hits[1].Slot, hits[2].Slot})
}

func TestIndex_Search_EdgeCases(t *testing.T) {
	empty := New(2, "m")
	assert.Empty(t, empty.Search([]float32{0, 0}, 3))

	idx := New(2, "m")
	_, err := idx.Add([]float32{1, 1})
	require.NoError(t, err)

	assert.Empty(t, idx.Search([]float32{0, 0}, 0), "k=0")
	assert.Empty(t, idx.Search([]float32{0, 0, 0}, 3), "wrong dimension")
	assert.Len(t, idx.Search([]float32{0, 0}, 10), 1, "k larger than index")
}

func TestIndex_Search_Deterministic(t *testing.T) {
	idx := New(2, "m")
	for _, v := range [][]float32{{0.5, 0.1}, {0.2, 0.9}, {0.5, 0.1}, {0.7, 0.3}} {
		_, err := idx.Add(v)
		require.NoError(t, err)
	}

	first := idx.Search([]float32{0.4, 0.2}, 3)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, idx.Search([]float32{0.4, 0.2}, 3))
	}
}

func TestIndex_MarshalRoundTrip(t *testing.T) {
	idx := New(3, "nomic-embed-text")
	idx.SetGeneration(7)
	for _, v := range [][]float32{{0.1, 0.2, 0.3}, {-1, 0, 1}} {
		_, err := idx.Add(v)
		require.NoError(t, err)
	}

	data, err := idx.MarshalBinary()
	require.NoError(t, err)

	restored := &Index{}
	require.NoError(t, restored.UnmarshalBinary(data))
	assert.Equal(t, 3, restored.Dimension())
	assert.Equal(t, "nomic-embed-text", restored.Model())
	assert.Equal(t, uint64(7), restored.Generation())
	assert.Equal(t, 2, restored.Len())

	again, err := restored.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestIndex_MarshalEmpty(t *testing.T) {
	idx := New(4, "m")
	data, err := idx.MarshalBinary()
	require.NoError(t, err)

	restored := &Index{}
	require.NoError(t, restored.UnmarshalBinary(data))
	assert.Equal(t, 0, restored.Len())
	assert.Equal(t, 4, restored.Dimension())
}

func TestIndex_UnmarshalRejectsGarbage(t *testing.T) {
	idx := New(2, "m")
	_, err := idx.Add([]float32{1, 2})
	require.NoError(t, err)
	data, err := idx.MarshalBinary()
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"wrong magic", append([]byte("XXXX"), data[4:]...)},
		{"truncated body", data[:len(data)-2]},
		{"trailing bytes", append(append([]byte{}, data...), 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, (&Index{}).UnmarshalBinary(tt.data))
		})
	}
}

func TestIDMap_EncodeDecode(t *testing.T) {
	m := &domain.IDMap{Generation: 3, IDs: []string{"a", "chunk-2", ""}}

	data := encodeIDMap(m)
	got, err := decodeIDMap(data)
	require.NoError(t, err)
	assert.Equal(t, m, got)
	assert.Equal(t, data, encodeIDMap(got))

	_, err = decodeIDMap(data[:len(data)-1])
	assert.Error(t, err)
}
