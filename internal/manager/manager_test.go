package manager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocontext/retrieval/internal/builder"
	"github.com/gocontext/retrieval/internal/store"
)

func writeFile(t *testing.T, dir, rel, content string) {
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestInitializeBuildsFromSourceOnStoreMiss(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "def foo():\n    return 1\n")

	m := New(dir, builder.New(nil, nil), store.NewMemory())
	require.NoError(t, m.Initialize(context.Background(), false))

	g := m.GetGraph()
	var found bool
	for _, n := range g.GetAllNodes() {
		if n.Name == "foo" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRecordFileModificationOpensOverlayAndIsVisibleInGetGraph(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "def foo():\n    return 1\n")

	m := New(dir, builder.New(nil, nil), store.NewMemory())
	require.NoError(t, m.Initialize(context.Background(), false))

	writeFile(t, dir, "b.py", "def bar():\n    return 2\n")
	require.NoError(t, m.RecordFileModification(context.Background(), "b.py"))

	g := m.GetGraph()
	var found bool
	for _, n := range g.GetAllNodes() {
		if n.Name == "bar" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDiscardOverlayRevertsToBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "def foo():\n    return 1\n")

	m := New(dir, builder.New(nil, nil), store.NewMemory())
	require.NoError(t, m.Initialize(context.Background(), false))

	writeFile(t, dir, "b.py", "def bar():\n    return 2\n")
	require.NoError(t, m.RecordFileModification(context.Background(), "b.py"))
	m.DiscardOverlay()

	g := m.GetGraph()
	for _, n := range g.GetAllNodes() {
		assert.NotEqual(t, "bar", n.Name)
	}
}

func TestMergeOverlayRebuildsAndResetsState(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "def foo():\n    return 1\n")

	m := New(dir, builder.New(nil, nil), store.NewMemory())
	require.NoError(t, m.Initialize(context.Background(), false))

	writeFile(t, dir, "b.py", "def bar():\n    return 2\n")
	require.NoError(t, m.RecordFileModification(context.Background(), "b.py"))
	require.NoError(t, m.MergeOverlay(context.Background()))

	assert.Nil(t, m.ov)
	g := m.GetGraph()
	var found bool
	for _, n := range g.GetAllNodes() {
		if n.Name == "bar" {
			found = true
		}
	}
	assert.True(t, found)
}
