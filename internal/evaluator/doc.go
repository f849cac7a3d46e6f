// Package evaluator computes precision/recall/coverage for one
// Resolution/DependencyContext pair against a ground-truth set of
// relevant paths, and proposes a deduplicated set of widening actions
// when a threshold is missed. It never raises: a degenerate input (no
// candidates, no ground truth) yields a defined, not-passing score rather
// than an error.
package evaluator
