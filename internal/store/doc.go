// Package store defines the Graph persistence contract the Graph Manager
// uses to avoid rebuilding from source on every process start, plus an
// in-memory implementation used by tests and by callers who opt out of
// persistence entirely.
package store
