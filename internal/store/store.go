package store

import "github.com/gocontext/retrieval/internal/graph"

// Store persists and retrieves a single Graph snapshot per root path, so
// the Graph Manager's initialize() can try the store before falling back
// to a full Builder rebuild.
type Store interface {
	Load(root string) (*graph.Graph, bool, error)
	Save(root string, g *graph.Graph) error
	Clear(root string) error
}

// Memory is a Store backed by an in-memory map. Load returns a deep-copy
// clone so callers can mutate the returned graph without corrupting the
// stored snapshot.
type Memory struct {
	snapshots map[string]*graph.Graph
}

// NewMemory constructs an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{snapshots: make(map[string]*graph.Graph)}
}

func (m *Memory) Load(root string) (*graph.Graph, bool, error) {
	g, ok := m.snapshots[root]
	if !ok {
		return nil, false, nil
	}
	return g.Clone(), true, nil
}

func (m *Memory) Save(root string, g *graph.Graph) error {
	m.snapshots[root] = g.Clone()
	return nil
}

func (m *Memory) Clear(root string) error {
	delete(m.snapshots, root)
	return nil
}
