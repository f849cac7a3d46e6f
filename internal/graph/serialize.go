package graph

import (
	"encoding/json"
	"fmt"

	"github.com/gocontext/retrieval/pkg/types"
)

// snapshot is the canonical on-disk shape of a Graph: nodes and edges in id
// order, with every index reconstructed on load rather than persisted.
type snapshot struct {
	Nodes []*types.Node `json:"nodes"`
	Edges []*types.Edge `json:"edges"`
}

// ToJSON serializes the graph in a stable, canonical order so that
// identical graphs always produce byte-identical output.
func (g *Graph) ToJSON() ([]byte, error) {
	snap := snapshot{
		Nodes: g.GetAllNodes(),
		Edges: g.GetAllEdges(),
	}
	return json.Marshal(snap)
}

// FromJSON rebuilds a Graph from ToJSON output. Edges are re-added through
// AddEdge so a corrupt snapshot referencing a missing node surfaces as an
// error rather than a silently dangling edge.
func FromJSON(data []byte) (*Graph, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("graph: decode snapshot: %w", err)
	}
	g := New()
	for _, n := range snap.Nodes {
		g.UpsertNode(n)
	}
	for _, e := range snap.Edges {
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("graph: decode snapshot: %w", err)
		}
	}
	return g, nil
}
