//go:build cgo_sqlite
// +build cgo_sqlite

package embcache

// Optional build with the CGO SQLite driver, which is faster for large
// caches at the cost of requiring a C toolchain:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver for the persistent tier.
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)
