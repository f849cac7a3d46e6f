// Package annindex implements the HNSW (Hierarchical Navigable Small
// World) approximate nearest-neighbor index: a layered small-world graph
// over L2-normalized vectors, searched by cosine similarity.
package annindex
