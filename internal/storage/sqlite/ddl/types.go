// Package ddl contains SQLite-specific helpers for generating DDL.
//
// SQLite types are affinities; declared names are picked so that the driver
// reads values back as the Go types they were written with.
package ddl

import (
	"strings"

	coreddl "nl2sql/internal/ddl"
)

// Renderer renders SQLite identifiers and column types.
type Renderer struct{}

// QuoteIdent wraps name in double quotes, doubling embedded quotes.
func (Renderer) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// MapType maps a logical type into a SQLite column type.
//
//	integer   -> INTEGER
//	float     -> REAL
//	boolean   -> BOOLEAN (INTEGER affinity, 0/1)
//	timestamp -> DATETIME (ISO-8601 text)
//	text      -> TEXT
func (Renderer) MapType(t coreddl.Type) string {
	switch t {
	case coreddl.TypeInteger:
		return "INTEGER"
	case coreddl.TypeFloat:
		return "REAL"
	case coreddl.TypeBoolean:
		return "BOOLEAN"
	case coreddl.TypeTimestamp:
		return "DATETIME"
	default:
		return "TEXT"
	}
}
