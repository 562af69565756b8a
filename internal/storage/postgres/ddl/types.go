// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"strings"

	coreddl "nl2sql/internal/ddl"
)

// Renderer renders Postgres identifiers and column types.
type Renderer struct{}

// QuoteIdent wraps name in double quotes, doubling embedded quotes.
func (Renderer) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// MapType normalizes a logical type into a Postgres SQL type.
//
//	integer   -> BIGINT
//	float     -> DOUBLE PRECISION
//	boolean   -> BOOLEAN
//	timestamp -> TIMESTAMP
//	text      -> TEXT
func (Renderer) MapType(t coreddl.Type) string {
	switch t {
	case coreddl.TypeInteger:
		return "BIGINT"
	case coreddl.TypeFloat:
		return "DOUBLE PRECISION"
	case coreddl.TypeBoolean:
		return "BOOLEAN"
	case coreddl.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
