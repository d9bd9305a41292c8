//go:build purego

package storage

// Built with -tags purego for CGO_ENABLED=0 targets.
//
//	CGO_ENABLED=0 go build -tags purego ./...

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver registered for this build.
	DriverName = "sqlite"
	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
