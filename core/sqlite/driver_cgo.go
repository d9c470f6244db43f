//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3, selected by the cgo_sqlite tag.
// The driver import lives in contrib/sqlite-external.
package sqlite

import (
	sqliteexternal "github.com/FocuswithJustin/ttconv/contrib/sqlite-external"
)

const (
	driverName    = sqliteexternal.DriverName
	driverType    = sqliteexternal.DriverType
	driverPackage = sqliteexternal.DriverPackage + " (via contrib/sqlite-external)"
)

var connOptions = []string{
	"_foreign_keys=on",
	"_busy_timeout=5000",
}
