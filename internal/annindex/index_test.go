package annindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchOnEmptyIndexReturnsEmpty(t *testing.T) {
	idx := New(Config{})
	results := idx.Search([]float32{1, 0, 0}, 5, 0)
	assert.Empty(t, results)
}

func TestAddRejectsEmptyVector(t *testing.T) {
	idx := New(Config{})
	err := idx.Add("a", nil)
	assert.ErrorIs(t, err, ErrEmptyVector)
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	idx := New(Config{})
	require.NoError(t, idx.Add("a", []float32{1, 0, 0}))
	err := idx.Add("b", []float32{1, 0})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSearchFindsNearestVector(t *testing.T) {
	idx := New(Config{MaxConnections: 8, EfConstruction: 50, EfSearch: 20})
	require.NoError(t, idx.Add("x-axis", []float32{1, 0, 0}))
	require.NoError(t, idx.Add("y-axis", []float32{0, 1, 0}))
	require.NoError(t, idx.Add("near-x", []float32{0.9, 0.1, 0}))

	results := idx.Search([]float32{1, 0, 0}, 1, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "x-axis", results[0].ID)
}

func TestSearchDimensionMismatchReturnsEmpty(t *testing.T) {
	idx := New(Config{})
	require.NoError(t, idx.Add("a", []float32{1, 0, 0}))
	assert.Empty(t, idx.Search([]float32{1, 0}, 5, 0))
}

func TestAddReplacesExistingVector(t *testing.T) {
	idx := New(Config{})
	require.NoError(t, idx.Add("a", []float32{1, 0, 0}))
	require.NoError(t, idx.Add("a", []float32{0, 1, 0}))

	results := idx.Search([]float32{0, 1, 0}, 1, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
}

func TestRemoveDropsVectorFromResults(t *testing.T) {
	idx := New(Config{})
	require.NoError(t, idx.Add("a", []float32{1, 0, 0}))
	require.NoError(t, idx.Add("b", []float32{0, 1, 0}))

	idx.Remove("a")
	stats := idx.Stats()
	assert.Equal(t, 1, stats.Count)

	results := idx.Search([]float32{1, 0, 0}, 5, 0)
	for _, r := range results {
		assert.NotEqual(t, "a", r.ID)
	}
}

func TestResetClearsIndex(t *testing.T) {
	idx := New(Config{})
	require.NoError(t, idx.Add("a", []float32{1, 0, 0}))
	idx.Reset()
	assert.Equal(t, Stats{Count: 0, Dimension: 0, MaxLevel: 0, MaxConnections: idx.maxConnections}, idx.Stats())
}
