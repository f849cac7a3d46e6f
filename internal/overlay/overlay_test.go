package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocontext/retrieval/internal/graph"
	"github.com/gocontext/retrieval/pkg/types"
)

func baseGraph() *graph.Graph {
	g := graph.New()
	g.UpsertNode(&types.Node{ID: types.FileID("a.go"), Type: types.NodeFile, Name: "a.go", Path: "a.go"})
	return g
}

func TestApplyIsPureAndDoesNotMutateBase(t *testing.T) {
	base := baseGraph()
	ov := New("snap-1")
	newNode := &types.Node{ID: types.NodeID("b.go", types.NodeFile, "b.go", 0, 0, "file"), Type: types.NodeFile, Name: "b.go", Path: "b.go"}
	ov.AddNode("b.go", newNode)

	result := ov.Apply(base)

	assert.Len(t, base.GetAllNodes(), 1, "apply must not mutate the base graph")
	assert.Len(t, result.GetAllNodes(), 2)
}

func TestEmptyOverlay(t *testing.T) {
	ov := New("snap-1")
	assert.True(t, ov.IsEmpty())
	ov.AddNode("a.go", &types.Node{ID: "x"})
	assert.False(t, ov.IsEmpty())
}

func TestClearPathDropsOnlyThatPathsOps(t *testing.T) {
	ov := New("snap-1")
	ov.AddNode("a.go", &types.Node{ID: "a-node", Path: "a.go"})
	ov.AddNode("b.go", &types.Node{ID: "b-node", Path: "b.go"})

	ov.ClearPath("a.go")

	require.Len(t, ov.Ops, 1)
	assert.Equal(t, "b.go", ov.Ops[0].Path)
}

func TestApplyRemoveDeletesNode(t *testing.T) {
	base := baseGraph()
	id := types.FileID("a.go")
	ov := New("snap-1")
	ov.RemoveNode("a.go", id)

	result := ov.Apply(base)

	assert.Len(t, base.GetAllNodes(), 1)
	assert.Len(t, result.GetAllNodes(), 0)
}

func TestApplyModifyOverwritesAttributes(t *testing.T) {
	base := baseGraph()
	id := types.FileID("a.go")
	modified := &types.Node{ID: id, Type: types.NodeFile, Name: "a.go", Path: "a.go", Content: "changed"}

	ov := New("snap-1")
	ov.ModifyNode("a.go", modified)

	result := ov.Apply(base)
	node, ok := result.GetNode(id)
	require.True(t, ok)
	assert.Equal(t, "changed", node.Content)
}
