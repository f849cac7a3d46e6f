package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocontext/retrieval/pkg/types"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildExtractsFunctionsAndCalls(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greeter.ts", `
export function greet(name) {
	return helper(name);
}

function helper(name) {
	return "hi " + name;
}
`)

	b := New(nil, nil)
	g, err := b.Build(context.Background(), dir)
	require.NoError(t, err)

	var greet, helper *types.Node
	for _, n := range g.GetAllNodes() {
		if n.Name == "greet" {
			greet = n
		}
		if n.Name == "helper" {
			helper = n
		}
	}
	require.NotNil(t, greet)
	require.NotNil(t, helper)
	assert.True(t, greet.Attributes.Exported)
	assert.False(t, helper.Attributes.Exported)

	edges := g.GetOutgoingEdges(greet.ID)
	var callsHelper bool
	for _, e := range edges {
		if e.Type == types.EdgeCalls && e.ToID == helper.ID {
			callsHelper = true
		}
	}
	assert.True(t, callsHelper, "greet should have a calls edge to helper")
}

func TestBuildSkipsIgnoredDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "node_modules/dep.js", `function shouldBeIgnored() {}`)
	writeFile(t, dir, "src/index.js", `function real() {}`)

	b := New(nil, nil)
	g, err := b.Build(context.Background(), dir)
	require.NoError(t, err)

	for _, n := range g.GetAllNodes() {
		assert.NotEqual(t, "shouldBeIgnored", n.Name)
	}
}

func TestBuildIsDeterministicAcrossRebuilds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "def foo():\n    return 1\n")

	b := New(nil, nil)
	g1, err := b.Build(context.Background(), dir)
	require.NoError(t, err)
	g2, err := b.Build(context.Background(), dir)
	require.NoError(t, err)

	ids1 := make([]string, 0)
	for _, n := range g1.GetAllNodes() {
		ids1 = append(ids1, n.ID)
	}
	ids2 := make([]string, 0)
	for _, n := range g2.GetAllNodes() {
		ids2 = append(ids2, n.ID)
	}
	assert.Equal(t, ids1, ids2)
}
