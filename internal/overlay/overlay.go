package overlay

import (
	"github.com/google/uuid"

	"github.com/gocontext/retrieval/internal/graph"
	"github.com/gocontext/retrieval/pkg/types"
)

// OpKind is the action an Operation performs.
type OpKind string

const (
	OpAdd    OpKind = "add"
	OpRemove OpKind = "remove"
	OpModify OpKind = "modify"
)

// Target is whether an Operation acts on a node or an edge.
type Target string

const (
	TargetNode Target = "node"
	TargetEdge Target = "edge"
)

// Operation is one entry in an Overlay's log. For add/modify, Node or Edge
// carries the replacement value; for remove, ID names what to delete.
type Operation struct {
	OpID   string      `json:"opId"`
	Kind   OpKind      `json:"kind"`
	Target Target      `json:"target"`
	Path   string      `json:"path"` // the file path this op was recorded against
	ID     string      `json:"id,omitempty"`
	Node   *types.Node `json:"node,omitempty"`
	Edge   *types.Edge `json:"edge,omitempty"`
}

// Overlay is an ordered, append-only log of operations opened against a
// specific base-graph snapshot. An overlay is empty iff its operation list
// is empty.
type Overlay struct {
	BaseSnapshotID string      `json:"baseSnapshotId"`
	Ops            []Operation `json:"ops"`
}

// New opens an overlay against a base-graph snapshot id.
func New(baseSnapshotID string) *Overlay {
	return &Overlay{BaseSnapshotID: baseSnapshotID}
}

// IsEmpty reports whether the overlay has no pending operations.
func (o *Overlay) IsEmpty() bool {
	return len(o.Ops) == 0
}

// AddNode appends an add-node operation.
func (o *Overlay) AddNode(path string, node *types.Node) {
	o.Ops = append(o.Ops, Operation{OpID: uuid.NewString(), Kind: OpAdd, Target: TargetNode, Path: path, Node: node})
}

// ModifyNode appends a modify-node operation; Apply treats it identically
// to add (an upsert that overwrites attributes).
func (o *Overlay) ModifyNode(path string, node *types.Node) {
	o.Ops = append(o.Ops, Operation{OpID: uuid.NewString(), Kind: OpModify, Target: TargetNode, Path: path, Node: node})
}

// RemoveNode appends a remove-node operation.
func (o *Overlay) RemoveNode(path, id string) {
	o.Ops = append(o.Ops, Operation{OpID: uuid.NewString(), Kind: OpRemove, Target: TargetNode, Path: path, ID: id})
}

// AddEdge appends an add-edge operation.
func (o *Overlay) AddEdge(path string, edge *types.Edge) {
	o.Ops = append(o.Ops, Operation{OpID: uuid.NewString(), Kind: OpAdd, Target: TargetEdge, Path: path, Edge: edge})
}

// RemoveEdge appends a remove-edge operation.
func (o *Overlay) RemoveEdge(path, id string) {
	o.Ops = append(o.Ops, Operation{OpID: uuid.NewString(), Kind: OpRemove, Target: TargetEdge, Path: path, ID: id})
}

// ClearPath removes any pending ops touching path, so a re-imported file
// replaces its older deltas instead of stacking on top of them.
func (o *Overlay) ClearPath(path string) {
	kept := o.Ops[:0:0]
	for _, op := range o.Ops {
		if op.Path != path {
			kept = append(kept, op)
		}
	}
	o.Ops = kept
}

// Apply replays the overlay's operations on top of base and returns a new
// graph; base is never mutated. add/modify upsert the provided value;
// remove deletes by id.
func (o *Overlay) Apply(base *graph.Graph) *graph.Graph {
	g := base.Clone()
	for _, op := range o.Ops {
		switch op.Target {
		case TargetNode:
			switch op.Kind {
			case OpAdd, OpModify:
				g.UpsertNode(op.Node)
			case OpRemove:
				g.RemoveNode(op.ID)
			}
		case TargetEdge:
			switch op.Kind {
			case OpAdd, OpModify:
				if op.Edge != nil {
					// Endpoints may have arrived via an earlier op in this same
					// batch; ignore unresolved edges rather than failing the
					// whole overlay apply.
					_ = g.AddEdge(op.Edge)
				}
			case OpRemove:
				g.RemoveEdge(op.ID)
			}
		}
	}
	return g
}
