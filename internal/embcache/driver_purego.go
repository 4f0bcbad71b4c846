//go:build !cgo_sqlite
// +build !cgo_sqlite

package embcache

// Default build: pure Go SQLite driver, no C compiler required.
//
//	CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver for the persistent tier.
	DriverName = "sqlite"

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
