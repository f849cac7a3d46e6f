package types

// NodeCategory tags which disjoint section of a DependencyContext a node
// was placed into. The retriever stamps this onto each node's rendered
// heading during formatting, matching the categorise-and-deduplicate step
// of Build.
type NodeCategory string

const (
	CategoryTarget   NodeCategory = "target"
	CategoryForward  NodeCategory = "forward"
	CategoryBackward NodeCategory = "backward"
	CategoryRelated  NodeCategory = "related"
)

// RetrievalTelemetry records accounting and scoring metadata about one
// DependencyContext build, independent of the formatted text itself.
type RetrievalTelemetry struct {
	PrimaryPath     string
	CandidateCount  int
	SourceScores    map[string][]float64 // per-source score list, for inspection
	AggregateScores map[string]float64   // per-source aggregate (e.g. mean) score
	Budget          int
	Used            int
	Saved           int
	Percent         float64 // used/budget
}

// DependencyContext is the disjoint, categorised, budget-packed bundle of
// nodes assembled by the dependency-aware retriever for one target file.
type DependencyContext struct {
	Target   []*Node
	Forward  []*Node
	Backward []*Node
	Related  []*Node

	Formatted string

	TokensUsed  int
	TokensSaved int

	Telemetry RetrievalTelemetry
}

// AllNodes returns every node across the four categories, in
// target/forward/backward/related order.
func (dc *DependencyContext) AllNodes() []*Node {
	out := make([]*Node, 0, len(dc.Target)+len(dc.Forward)+len(dc.Backward)+len(dc.Related))
	out = append(out, dc.Target...)
	out = append(out, dc.Forward...)
	out = append(out, dc.Backward...)
	out = append(out, dc.Related...)
	return out
}
