package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocontext/retrieval/internal/graph"
	"github.com/gocontext/retrieval/pkg/types"
)

func sampleGraph() *graph.Graph {
	g := graph.New()
	g.UpsertNode(&types.Node{ID: types.FileID("a.go"), Type: types.NodeFile, Name: "a.go", Path: "a.go"})
	return g
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	m := NewMemory()
	_, ok, err := m.Load("/repo")
	require.NoError(t, err)
	assert.False(t, ok)

	g := sampleGraph()
	require.NoError(t, m.Save("/repo", g))

	loaded, ok, err := m.Load("/repo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, g.GetAllNodes(), loaded.GetAllNodes())
}

func TestMemoryStoreLoadReturnsIndependentClone(t *testing.T) {
	m := NewMemory()
	g := sampleGraph()
	require.NoError(t, m.Save("/repo", g))

	loaded, _, err := m.Load("/repo")
	require.NoError(t, err)
	loaded.RemoveNode(types.FileID("a.go"))

	reloaded, _, err := m.Load("/repo")
	require.NoError(t, err)
	assert.Len(t, reloaded.GetAllNodes(), 1, "mutating a loaded clone must not affect the store")
}

func TestMemoryStoreClear(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Save("/repo", sampleGraph()))
	require.NoError(t, m.Clear("/repo"))

	_, ok, err := m.Load("/repo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	g := sampleGraph()
	require.NoError(t, s.Save("/repo", g))

	loaded, ok, err := s.Load("/repo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, g.GetAllNodes(), loaded.GetAllNodes())
}
