// Package sqliteexternal registers the optional CGO SQLite driver
// (github.com/mattn/go-sqlite3).
//
// core/sqlite imports it when built with:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./...
//
// Without the tag the pure Go modernc.org/sqlite driver is used and this
// package contributes nothing.
package sqliteexternal
