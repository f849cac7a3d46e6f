// Package pipeline orchestrates one retrieval run: load the graph, build
// a Resolver and Retriever, resolve candidate files, assemble a
// dependency-aware context, and evaluate it against ground truth. On
// failure it widens the search (walk depth, related breadth, the
// cross-encoder, token budget) under a bounded iteration cap, producing a
// structured Trace of every stage it dispatched.
package pipeline
