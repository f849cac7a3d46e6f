// Package embedcache persists embedding vectors keyed by content hash, so
// a rebuild that reparses unchanged files never recomputes their
// embeddings. The default backend is a local SQLite database, built with
// github.com/mattn/go-sqlite3 under CGO or modernc.org/sqlite in pure-Go
// builds (see build_cgo.go / build_purego.go). An optional Redis-backed
// implementation is available for deployments sharing a cache across
// multiple build hosts.
package embedcache
