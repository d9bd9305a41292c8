//go:build !purego

package storage

// Default build: CGO SQLite driver.

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver registered for this build.
	DriverName = "sqlite3"
	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)
