// Package overlay implements the append-only operation log that the Graph
// Manager layers atop a base Graph to represent uncommitted edits: a
// sequence of add/remove/modify operations over nodes and edges, plus the
// id of the base-graph snapshot it was opened against.
//
// Applying an Overlay to a base graph is a pure function — Apply never
// mutates its argument, it returns a clone with the log replayed on top.
package overlay
