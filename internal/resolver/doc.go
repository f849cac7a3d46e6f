// Package resolver turns a natural-language query into a ranked list of
// candidate files: it builds ANN and BM25 indexes once from a graph snapshot,
// fuses and reranks their hits, aggregates node-level scores to the file
// level, and layers dataset-hint and intent-boost heuristics on top. An
// in-process LRU caches recent query embeddings, since Pipeline widening
// can re-issue the same query across iterations.
package resolver
