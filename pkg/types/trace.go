package types

import "time"

// TraceStatus is the terminal status of one trace entry.
type TraceStatus string

const (
	TraceOK    TraceStatus = "ok"
	TraceError TraceStatus = "error"
)

// TraceEntry records one stage of a pipeline run: its name, when it
// started, how long it took, whether it succeeded, optional metadata
// produced by the stage, and an error message on failure.
type TraceEntry struct {
	Node     string
	Start    time.Time
	Duration time.Duration
	Status   TraceStatus
	Metadata map[string]any
	Error    string
}

// Trace is the ordered, structured record of one pipeline run's stages.
type Trace struct {
	Entries []TraceEntry
}

// Append adds an entry to the trace.
func (t *Trace) Append(entry TraceEntry) {
	t.Entries = append(t.Entries, entry)
}

// HasError reports whether any entry in the trace recorded an error.
func (t *Trace) HasError() bool {
	for _, e := range t.Entries {
		if e.Status == TraceError {
			return true
		}
	}
	return false
}

// NodeNames returns the dispatch-ordered list of stage names.
func (t *Trace) NodeNames() []string {
	names := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		names[i] = e.Node
	}
	return names
}
