// Package tokencount provides the cheap token estimate the Retriever and
// Pipeline use for budget packing and telemetry accounting.
package tokencount
