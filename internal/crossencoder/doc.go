// Package crossencoder provides the optional cross-encoder scoring stage
// the Resolver invokes during reranking.
package crossencoder
