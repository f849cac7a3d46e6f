//go:build sqlite_vec
// +build sqlite_vec

package embedcache

// Built with CGO and the sqlite_vec tag:
//   CGO_ENABLED=1 go build -tags sqlite_vec ./...
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverName = "sqlite3"
	BuildMode  = "cgo"
)
