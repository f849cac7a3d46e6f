// Package manager implements the Graph Manager: it owns the base Graph,
// at most one live Overlay, and the hooks fired as the overlay is created,
// updated, committed, or discarded. Everything outside this package reads
// the graph through GetGraph and never mutates it directly.
package manager
