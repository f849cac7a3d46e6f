package graph

import (
	"fmt"
	"sort"

	"github.com/gocontext/retrieval/pkg/types"
)

// Graph is a typed multi-graph over types.Node and types.Edge, with a
// path index and a from/to edge index maintained in sync with every
// mutation. The zero value is not usable; use New.
type Graph struct {
	nodes map[string]*types.Node
	edges map[string]*types.Edge

	pathIndex map[string]map[string]struct{} // path -> node ids
	fromIndex map[string]map[string]struct{} // fromId -> edge ids
	toIndex   map[string]map[string]struct{} // toId -> edge ids (internal optimization; removeNode's
	                                          // documented fallback is a full edge scan)
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]*types.Node),
		edges:     make(map[string]*types.Edge),
		pathIndex: make(map[string]map[string]struct{}),
		fromIndex: make(map[string]map[string]struct{}),
		toIndex:   make(map[string]map[string]struct{}),
	}
}

// AddNode inserts a node. If a node with the same id already exists it is
// treated identically to UpsertNode.
func (g *Graph) AddNode(node *types.Node) {
	g.UpsertNode(node)
}

// UpsertNode inserts or replaces a node by id. If replacing, the old path
// index entry is removed before the new one is installed. Upserting never
// invalidates edges whose endpoints still exist.
func (g *Graph) UpsertNode(node *types.Node) {
	if node == nil {
		return
	}
	if old, ok := g.nodes[node.ID]; ok {
		g.removeFromPathIndex(old.Path, old.ID)
	}
	g.nodes[node.ID] = node
	g.addToPathIndex(node.Path, node.ID)
}

// AddEdge inserts an edge. It fails if either endpoint is absent.
func (g *Graph) AddEdge(edge *types.Edge) error {
	if edge == nil {
		return fmt.Errorf("graph: nil edge")
	}
	if _, ok := g.nodes[edge.FromID]; !ok {
		return fmt.Errorf("graph: %w: from=%s", types.ErrEdgeEndpointMissing, edge.FromID)
	}
	if _, ok := g.nodes[edge.ToID]; !ok {
		return fmt.Errorf("graph: %w: to=%s", types.ErrEdgeEndpointMissing, edge.ToID)
	}
	g.edges[edge.ID] = edge
	g.addToEdgeIndexes(edge)
	return nil
}

// RemoveNode removes a node from the node table, the path index, drops its
// outgoing edges (via the from index), and drops its incoming edges (via
// the to index). Implementations without a to index would instead scan all
// edges for incoming matches; we keep one to avoid that O(E) scan.
func (g *Graph) RemoveNode(id string) {
	node, ok := g.nodes[id]
	if !ok {
		return
	}
	delete(g.nodes, id)
	g.removeFromPathIndex(node.Path, id)

	for edgeID := range g.fromIndex[id] {
		g.removeEdge(edgeID)
	}
	for edgeID := range g.toIndex[id] {
		g.removeEdge(edgeID)
	}
}

// RemoveNodesByPath batch-removes every node recorded under a path.
func (g *Graph) RemoveNodesByPath(path string) {
	ids := make([]string, 0, len(g.pathIndex[path]))
	for id := range g.pathIndex[path] {
		ids = append(ids, id)
	}
	for _, id := range ids {
		g.RemoveNode(id)
	}
}

// RemoveEdge deletes an edge by id and drops it from both edge indexes.
func (g *Graph) RemoveEdge(id string) {
	g.removeEdge(id)
}

// removeEdge deletes an edge by id and drops it from both edge indexes.
func (g *Graph) removeEdge(id string) {
	edge, ok := g.edges[id]
	if !ok {
		return
	}
	delete(g.edges, id)
	if set, ok := g.fromIndex[edge.FromID]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(g.fromIndex, edge.FromID)
		}
	}
	if set, ok := g.toIndex[edge.ToID]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(g.toIndex, edge.ToID)
		}
	}
}

// GetNode returns a node by id.
func (g *Graph) GetNode(id string) (*types.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// GetEdge returns an edge by id.
func (g *Graph) GetEdge(id string) (*types.Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// GetNodesByPath returns all nodes recorded under a path, sorted by id for
// determinism.
func (g *Graph) GetNodesByPath(path string) []*types.Node {
	ids := g.pathIndex[path]
	out := make([]*types.Node, 0, len(ids))
	for id := range ids {
		if n, ok := g.nodes[id]; ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetOutgoingEdges returns all edges whose FromID is id.
func (g *Graph) GetOutgoingEdges(id string) []*types.Edge {
	ids := g.fromIndex[id]
	out := make([]*types.Edge, 0, len(ids))
	for edgeID := range ids {
		if e, ok := g.edges[edgeID]; ok {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetIncomingEdges returns all edges whose ToID is id.
func (g *Graph) GetIncomingEdges(id string) []*types.Edge {
	ids := g.toIndex[id]
	out := make([]*types.Edge, 0, len(ids))
	for edgeID := range ids {
		if e, ok := g.edges[edgeID]; ok {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetNeighbors returns the nodes reachable from id via outgoing edges,
// optionally filtered to a single edge type.
func (g *Graph) GetNeighbors(id string, edgeType *types.EdgeType) []*types.Node {
	var out []*types.Node
	for _, e := range g.GetOutgoingEdges(id) {
		if edgeType != nil && e.Type != *edgeType {
			continue
		}
		if n, ok := g.nodes[e.ToID]; ok {
			out = append(out, n)
		}
	}
	return out
}

// GetAllNodes returns every node, sorted by id for determinism.
func (g *Graph) GetAllNodes() []*types.Node {
	out := make([]*types.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetAllEdges returns every edge, sorted by id for determinism.
func (g *Graph) GetAllEdges() []*types.Edge {
	out := make([]*types.Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clone returns an independent Graph sharing node/edge value contents
// (values are treated as immutable after upsert, so sharing pointers is
// safe as long as callers only ever upsert new values rather than mutating
// in place).
func (g *Graph) Clone() *Graph {
	clone := New()
	for id, n := range g.nodes {
		clone.nodes[id] = n
	}
	for id, e := range g.edges {
		clone.edges[id] = e
	}
	for path, ids := range g.pathIndex {
		cp := make(map[string]struct{}, len(ids))
		for id := range ids {
			cp[id] = struct{}{}
		}
		clone.pathIndex[path] = cp
	}
	for from, ids := range g.fromIndex {
		cp := make(map[string]struct{}, len(ids))
		for id := range ids {
			cp[id] = struct{}{}
		}
		clone.fromIndex[from] = cp
	}
	for to, ids := range g.toIndex {
		cp := make(map[string]struct{}, len(ids))
		for id := range ids {
			cp[id] = struct{}{}
		}
		clone.toIndex[to] = cp
	}
	return clone
}

// ExportIndex builds the "path#name -> nodeId" index used by the Builder
// to resolve cross-file placeholder edges. It is always reconstructable
// from nodes alone.
func (g *Graph) ExportIndex() map[string]string {
	index := make(map[string]string)
	for _, n := range g.nodes {
		if n.Attributes.Exported {
			index[n.Path+"#"+n.Name] = n.ID
		}
	}
	return index
}

func (g *Graph) addToPathIndex(path, id string) {
	set, ok := g.pathIndex[path]
	if !ok {
		set = make(map[string]struct{})
		g.pathIndex[path] = set
	}
	set[id] = struct{}{}
}

func (g *Graph) removeFromPathIndex(path, id string) {
	set, ok := g.pathIndex[path]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(g.pathIndex, path)
	}
}

func (g *Graph) addToEdgeIndexes(edge *types.Edge) {
	from, ok := g.fromIndex[edge.FromID]
	if !ok {
		from = make(map[string]struct{})
		g.fromIndex[edge.FromID] = from
	}
	from[edge.ID] = struct{}{}

	to, ok := g.toIndex[edge.ToID]
	if !ok {
		to = make(map[string]struct{})
		g.toIndex[edge.ToID] = to
	}
	to[edge.ID] = struct{}{}
}
