package types

// Candidate is a per-file aggregate of scoring signals produced while
// resolving a query to ranked target files. Ordering within a Resolution
// is strictly by Score descending.
type Candidate struct {
	Path string

	Score        float64 // fused/reranked total
	Semantic     float64 // ANN raw similarity
	Lexical      float64 // BM25 raw score
	Structural   float64 // exported + locality blend
	CrossEncoder float64 // best-effort, 0 if unused/failed
	HasCrossEncoder bool

	SourceScores map[string]float64 // per-source raw contributions, for telemetry
	Reasons      []string
	Nodes        []*Node // contributing nodes from this file
}

// AddReason appends a reason if it is not already present.
func (c *Candidate) AddReason(reason string) {
	for _, r := range c.Reasons {
		if r == reason {
			return
		}
	}
	c.Reasons = append(c.Reasons, reason)
}

// Resolution is the ordered output of target resolution.
type Resolution struct {
	Candidates []*Candidate
}

// Primary returns the top-ranked candidate, or nil if the resolution is
// empty.
func (r *Resolution) Primary() *Candidate {
	if r == nil || len(r.Candidates) == 0 {
		return nil
	}
	return r.Candidates[0]
}

// Paths returns the ordered list of candidate file paths.
func (r *Resolution) Paths() []string {
	if r == nil {
		return nil
	}
	paths := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		paths[i] = c.Path
	}
	return paths
}
