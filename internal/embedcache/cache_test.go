package embedcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetIsVisibleBeforeFlush(t *testing.T) {
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()

	c.Set("hash-1", []float32{1, 2, 3})
	vec, ok := c.Get("hash-1")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, vec)
}

func TestFlushPersistsAndClearsPending(t *testing.T) {
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()

	c.Set("hash-1", []float32{1, 2, 3})
	require.NoError(t, c.Flush())

	vec, ok := c.Get("hash-1")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, vec)
}

func TestClearRemovesEverything(t *testing.T) {
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()

	c.Set("hash-1", []float32{1, 2, 3})
	require.NoError(t, c.Flush())
	require.NoError(t, c.Clear())

	_, ok := c.Get("hash-1")
	assert.False(t, ok)
}

func TestVectorSerializationRoundTrip(t *testing.T) {
	vec := []float32{0.5, -1.25, 3.75}
	blob := serializeVector(vec)
	assert.Equal(t, vec, deserializeVector(blob))
}
