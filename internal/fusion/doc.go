// Package fusion merges ranked ANN and BM25 result lists with Reciprocal
// Rank Fusion, and reranks fused candidates by blending normalized
// semantic, lexical, structural, and optional cross-encoder signals.
package fusion
