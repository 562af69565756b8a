// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import (
	"strings"

	coreddl "nl2sql/internal/ddl"
)

// Renderer renders MySQL identifiers and column types.
type Renderer struct{}

// QuoteIdent wraps name in backticks, doubling embedded backticks.
func (Renderer) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// MapType maps a logical type into a MySQL column type. Text columns use
// TEXT since source cells have no declared width.
func (Renderer) MapType(t coreddl.Type) string {
	switch t {
	case coreddl.TypeInteger:
		return "BIGINT"
	case coreddl.TypeFloat:
		return "DOUBLE"
	case coreddl.TypeBoolean:
		return "BOOLEAN"
	case coreddl.TypeTimestamp:
		return "DATETIME(6)"
	default:
		return "TEXT"
	}
}
