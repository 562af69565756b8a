// Package ddl defines a small, backend-agnostic model for SQL DDL, the column
// type inference used to shape replacement tables, and helpers to render
// CREATE TABLE statements from that model.
//
// Dialect specifics (identifier quoting, type names) come from a Renderer
// supplied by each storage backend.
package ddl

import (
	"fmt"
	"strings"
)

// QuoteFQN quotes each dot-separated segment of name with r.
func QuoteFQN(r Renderer, name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = r.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef.
//
// Rules:
//
//   - t.FQN must be non-empty; each dotted segment is quoted by r.
//
//   - Each column must have a non-empty Name and either an SQLType or a Type
//     that r maps to a non-empty SQL type.
//
//   - A column is rendered as:
//
//     <quoted name> <sql type> [NOT NULL]
//
//     where NOT NULL is added when Nullable == false.
//
// The statement never uses IF NOT EXISTS: replacement tables are always
// created fresh.
func BuildCreateTableSQL(t TableDef, r Renderer) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			typ = r.MapType(c.Type)
		}
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(r.QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n)",
		QuoteFQN(r, fqn),
		strings.Join(cols, ",\n  "),
	), nil
}
