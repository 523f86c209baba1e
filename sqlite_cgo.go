//go:build cgo

package sqlite

import "github.com/sqltyped/sqlite/cgosqlite"

func init() {
	Open = cgosqlite.Open
}
