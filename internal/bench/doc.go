// Package bench loads benchmark datasets and emits the markdown report
// spec.md §6 defines for a pipeline run against that dataset. The external
// evaluation harness itself is out of scope; this package only implements
// the JSON dataset contract and the markdown report shape the Evaluation
// Agent's ground truth and results are checked against.
package bench
