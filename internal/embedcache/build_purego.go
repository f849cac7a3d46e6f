//go:build purego || !sqlite_vec
// +build purego !sqlite_vec

package embedcache

// Built without CGO, or with the purego tag:
//   CGO_ENABLED=0 go build -tags purego ./...
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	DriverName = "sqlite"
	BuildMode  = "purego"
)
