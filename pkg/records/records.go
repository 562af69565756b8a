// Package records holds the row-oriented in-memory form shared by the reader,
// normalizer, coercer and storage layers.
package records

// Record is a single row keyed by column name. Values are raw strings as read
// from the source file until a later stage replaces them (e.g. time.Time after
// temporal coercion, nil for blanks or failed lenient coercion).
type Record map[string]any

// Dataset is an ordered header plus the rows read from one source file.
// Columns preserves the file's column order; every Record carries at most
// these keys.
type Dataset struct {
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }

// HasColumn reports whether name is part of the header.
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Matrix returns the rows as positional slices aligned to Columns. Missing
// keys become nil.
func (d Dataset) Matrix() [][]any {
	out := make([][]any, len(d.Rows))
	for i, r := range d.Rows {
		row := make([]any, len(d.Columns))
		for j, c := range d.Columns {
			row[j] = r[c]
		}
		out[i] = row
	}
	return out
}
