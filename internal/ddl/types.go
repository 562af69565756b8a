package ddl

// Type is the logical column type inferred from loaded values. Backends map
// it onto a concrete SQL type.
type Type string

const (
	TypeInteger   Type = "integer"
	TypeFloat     Type = "float"
	TypeBoolean   Type = "boolean"
	TypeTimestamp Type = "timestamp"
	TypeText      Type = "text"
)

// ColumnDef describes a single column in a table definition produced or
// consumed by ddl. It intentionally uses simple, database-agnostic fields.
//
// Fields:
//   - Name: logical column name (unquoted; quoting/escaping happens at render time)
//   - Type: inferred logical type
//   - SQLType: optional explicit SQL type; overrides the dialect mapping of Type
//   - Nullable: whether NULL is allowed
type ColumnDef struct {
	Name     string
	Type     Type
	SQLType  string
	Nullable bool
}

// TableDef holds the table name (FQN) and an ordered list of columns. The FQN
// may be schema-qualified in dotted form; renderers quote each segment.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Names returns the column names in order.
func (t TableDef) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// WithName returns a copy of t bound to another table name; used to create
// staging tables with the target's shape.
func (t TableDef) WithName(fqn string) TableDef {
	cols := append([]ColumnDef(nil), t.Columns...)
	return TableDef{FQN: fqn, Columns: cols}
}

// Renderer supplies the dialect-specific parts of DDL rendering.
type Renderer interface {
	// QuoteIdent quotes one identifier segment.
	QuoteIdent(name string) string
	// MapType maps a logical type onto a SQL column type.
	MapType(t Type) string
}
