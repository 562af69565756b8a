// Package csv reads a delimited flat file into the row-oriented in-memory
// form. The header row is the only schema signal consumed; header names are
// passed through verbatim (apart from a leading BOM) so that the schema
// package can reconcile them.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"nl2sql/pkg/records"
)

// Options configures the CSV parser. The zero value reads comma-separated
// input with strict quoting.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// LazyQuotes tolerates stray quotes inside unquoted fields.
	LazyQuotes bool
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// ErrNoHeader is returned for input without a header row.
var ErrNoHeader = errors.New("csv: missing header row")

// LineError reports a malformed data row.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("csv: line %d: %v", e.Line, e.Err) }
func (e *LineError) Unwrap() error { return e.Err }

// Parse reads the whole input. Empty cells become nil; rows with fewer fields
// than the header are padded with nil, rows with more fields are an error.
func (p *Parser) Parse(r io.Reader) (records.Dataset, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return records.Dataset{}, ErrNoHeader
	}
	if err != nil {
		return records.Dataset{}, fmt.Errorf("read csv header: %w", err)
	}
	header = StripHeaderBOM(append([]string(nil), header...))

	ds := records.Dataset{Columns: header}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records.Dataset{}, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(row) > len(header) {
			return records.Dataset{}, &LineError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, got %d", len(header), len(row)),
			}
		}

		rec := make(records.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = emptyToNil(row[i])
			} else {
				rec[col] = nil
			}
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds, nil
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
