package types

import "errors"

// Domain errors shared across the graph, resolver, and retriever packages.
var (
	ErrNodeNotFound      = errors.New("node not found")
	ErrEdgeEndpointMissing = errors.New("edge references a missing node")
	ErrNoTargetResolved  = errors.New("no target file could be resolved")
	ErrEmptyGraph        = errors.New("graph has no nodes")
)
