// Package types defines the shared value types that flow between the
// graph, search, and retrieval layers: Node and Edge (the code graph's
// data model), Candidate and Resolution (target-resolution output),
// DependencyContext (packaged retrieval output), and the evaluation and
// trace records produced by the pipeline.
//
// # Core Types
//
// Node represents a unit in the code graph — a file, function, class, or
// import — identified by a deterministic, content-derived id:
//
//	node := &types.Node{
//	    ID:   types.NodeID("src/auth.ts", types.NodeFunction, "authenticateUser", 10, 24, "function"),
//	    Type: types.NodeFunction,
//	    Name: "authenticateUser",
//	    Path: "src/auth.ts",
//	}
//
// Edge represents a typed relationship between two nodes (contains, calls,
// imports, references, extends, implements).
//
// Candidate aggregates per-file scoring signals produced by the resolver's
// fusion and reranking stages; Resolution is the ordered list of Candidates
// returned to a caller.
//
// DependencyContext is the categorised, budget-packed bundle of nodes
// assembled by the dependency-aware retriever, along with its formatted
// rendering and token accounting.
package types
