// Package ddl contains MSSQL-specific helpers for generating DDL.
package ddl

import (
	"strings"

	coreddl "nl2sql/internal/ddl"
)

// Renderer renders SQL Server identifiers and column types.
type Renderer struct{}

// QuoteIdent wraps name in brackets, doubling embedded closing brackets.
func (Renderer) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// MapType maps a logical type into a SQL Server column type. Unknown types
// fall back to NVARCHAR(MAX).
func (Renderer) MapType(t coreddl.Type) string {
	switch t {
	case coreddl.TypeInteger:
		return "BIGINT"
	case coreddl.TypeFloat:
		return "FLOAT"
	case coreddl.TypeBoolean:
		return "BIT"
	case coreddl.TypeTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}
