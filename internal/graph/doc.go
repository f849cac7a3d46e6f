// Package graph implements the typed multi-graph of files, functions,
// classes, and imports that underlies the retrieval engine: a Graph holds
// nodes and edges keyed by id, with a path index (path -> node ids) and a
// from/to edge index kept in sync with every mutation.
//
// A Graph is built fresh by internal/builder, or loaded from a
// internal/store.Store. Once built it is only ever updated by the Graph
// Manager (internal/manager), either via a full rebuild or by applying an
// Overlay (internal/overlay).
package graph
