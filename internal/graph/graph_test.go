package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocontext/retrieval/pkg/types"
)

func fileNode(path string) *types.Node {
	return &types.Node{
		ID:   types.FileID(path),
		Type: types.NodeFile,
		Name: path,
		Path: path,
	}
}

func funcNode(path, name string, start, end int) *types.Node {
	return &types.Node{
		ID:        types.NodeID(path, types.NodeFunction, name, start, end, "function"),
		Type:      types.NodeFunction,
		Name:      name,
		Path:      path,
		StartLine: start,
		EndLine:   end,
	}
}

func TestUpsertNodeReplacesPathIndexEntry(t *testing.T) {
	g := New()
	a := funcNode("a.go", "Foo", 1, 5)
	g.UpsertNode(a)

	moved := funcNode("b.go", "Foo", 1, 5)
	moved.ID = a.ID // simulate re-parse producing the same id under a new path
	g.UpsertNode(moved)

	assert.Empty(t, g.GetNodesByPath("a.go"))
	require.Len(t, g.GetNodesByPath("b.go"), 1)
	assert.Equal(t, moved.ID, g.GetNodesByPath("b.go")[0].ID)
}

func TestAddEdgeFailsOnMissingEndpoint(t *testing.T) {
	g := New()
	a := fileNode("a.go")
	g.UpsertNode(a)

	edge := &types.Edge{
		ID:     types.EdgeID(a.ID, "missing", types.EdgeImports),
		FromID: a.ID,
		ToID:   "missing",
		Type:   types.EdgeImports,
	}
	err := g.AddEdge(edge)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrEdgeEndpointMissing)
}

func TestAddEdgeSucceedsWithBothEndpoints(t *testing.T) {
	g := New()
	a := fileNode("a.go")
	b := fileNode("b.go")
	g.UpsertNode(a)
	g.UpsertNode(b)

	edge := &types.Edge{
		ID:     types.EdgeID(a.ID, b.ID, types.EdgeImports),
		FromID: a.ID,
		ToID:   b.ID,
		Type:   types.EdgeImports,
	}
	require.NoError(t, g.AddEdge(edge))

	out := g.GetOutgoingEdges(a.ID)
	require.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].ToID)
}

func TestRemoveNodeDropsIncidentEdges(t *testing.T) {
	g := New()
	a := fileNode("a.go")
	b := fileNode("b.go")
	c := fileNode("c.go")
	g.UpsertNode(a)
	g.UpsertNode(b)
	g.UpsertNode(c)

	require.NoError(t, g.AddEdge(&types.Edge{
		ID: types.EdgeID(a.ID, b.ID, types.EdgeImports), FromID: a.ID, ToID: b.ID, Type: types.EdgeImports,
	}))
	require.NoError(t, g.AddEdge(&types.Edge{
		ID: types.EdgeID(c.ID, b.ID, types.EdgeImports), FromID: c.ID, ToID: b.ID, Type: types.EdgeImports,
	}))

	g.RemoveNode(b.ID)

	assert.Empty(t, g.GetOutgoingEdges(a.ID))
	assert.Empty(t, g.GetOutgoingEdges(c.ID))
	assert.Len(t, g.GetAllEdges(), 0)
	_, ok := g.GetNode(b.ID)
	assert.False(t, ok)
}

func TestRemoveNodesByPath(t *testing.T) {
	g := New()
	g.UpsertNode(funcNode("a.go", "Foo", 1, 3))
	g.UpsertNode(funcNode("a.go", "Bar", 5, 9))
	g.UpsertNode(funcNode("b.go", "Baz", 1, 3))

	g.RemoveNodesByPath("a.go")

	assert.Empty(t, g.GetNodesByPath("a.go"))
	assert.Len(t, g.GetNodesByPath("b.go"), 1)
	assert.Len(t, g.GetAllNodes(), 1)
}

func TestGetNeighborsFiltersByEdgeType(t *testing.T) {
	g := New()
	a := fileNode("a.go")
	b := fileNode("b.go")
	g.UpsertNode(a)
	g.UpsertNode(b)
	require.NoError(t, g.AddEdge(&types.Edge{
		ID: types.EdgeID(a.ID, b.ID, types.EdgeImports), FromID: a.ID, ToID: b.ID, Type: types.EdgeImports,
	}))
	require.NoError(t, g.AddEdge(&types.Edge{
		ID: types.EdgeID(a.ID, b.ID, types.EdgeCalls), FromID: a.ID, ToID: b.ID, Type: types.EdgeCalls,
	}))

	all := g.GetNeighbors(a.ID, nil)
	assert.Len(t, all, 2)

	imports := types.EdgeImports
	only := g.GetNeighbors(a.ID, &imports)
	require.Len(t, only, 1)
	assert.Equal(t, b.ID, only[0].ID)
}

func TestCloneIsIndependent(t *testing.T) {
	g := New()
	a := fileNode("a.go")
	g.UpsertNode(a)

	clone := g.Clone()
	clone.RemoveNode(a.ID)

	assert.Len(t, g.GetAllNodes(), 1, "mutating the clone must not affect the original")
	assert.Len(t, clone.GetAllNodes(), 0)
}

func TestNodeIDDeterministicAcrossRebuilds(t *testing.T) {
	id1 := types.NodeID("a.go", types.NodeFunction, "Foo", 1, 5, "function")
	id2 := types.NodeID("a.go", types.NodeFunction, "Foo", 1, 5, "function")
	assert.Equal(t, id1, id2)

	id3 := types.NodeID("a.go", types.NodeFunction, "Foo", 1, 6, "function")
	assert.NotEqual(t, id1, id3)
}

func TestJSONRoundTrip(t *testing.T) {
	g := New()
	a := fileNode("a.go")
	b := fileNode("b.go")
	g.UpsertNode(a)
	g.UpsertNode(b)
	require.NoError(t, g.AddEdge(&types.Edge{
		ID: types.EdgeID(a.ID, b.ID, types.EdgeImports), FromID: a.ID, ToID: b.ID, Type: types.EdgeImports,
	}))

	data, err := g.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, g.GetAllNodes(), restored.GetAllNodes())
	assert.Equal(t, g.GetAllEdges(), restored.GetAllEdges())

	again, err := restored.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestFromJSONRejectsDanglingEdge(t *testing.T) {
	a := fileNode("a.go")
	snap := snapshot{
		Nodes: []*types.Node{a},
		Edges: []*types.Edge{{ID: "bad", FromID: a.ID, ToID: "missing", Type: types.EdgeImports}},
	}
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	_, err = FromJSON(data)
	require.Error(t, err)
}

func TestExportIndexOnlyIncludesExportedNodes(t *testing.T) {
	g := New()
	exported := funcNode("a.go", "Foo", 1, 5)
	exported.Attributes.Exported = true
	private := funcNode("a.go", "bar", 7, 9)

	g.UpsertNode(exported)
	g.UpsertNode(private)

	index := g.ExportIndex()
	assert.Contains(t, index, "a.go#Foo")
	assert.NotContains(t, index, "a.go#bar")
}
