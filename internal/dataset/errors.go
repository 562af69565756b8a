package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBackend is returned when a Conn names a storage kind that no
// backend registered.
var ErrUnknownBackend = errors.New("unknown storage backend")

// ProvisioningError reports a store that could not be reached or created.
// It is fatal to the whole run.
type ProvisioningError struct {
	Store string
	Op    string
	Err   error
}

func (e *ProvisioningError) Error() string {
	if e.Store == "" {
		return fmt.Sprintf("provision: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("provision %s: %s: %v", e.Store, e.Op, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// SourceNotFoundError reports a declared source file that does not exist.
type SourceNotFoundError struct {
	// Path is the resolved path that was checked.
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s", e.Path)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }

// SchemaCollisionError reports two distinct raw columns collapsing onto the
// same canonical name within one dataset.
type SchemaCollisionError struct {
	Source    string
	Canonical string
	Raw       []string
}

func (e *SchemaCollisionError) Error() string {
	return fmt.Sprintf("schema collision in %s: columns %s all map to %q",
		e.Source, quoteAll(e.Raw), e.Canonical)
}

// CoercionError reports a strict-mode temporal parse failure.
type CoercionError struct {
	Column string
	// Row is the 0-based data row index (header excluded).
	Row    int
	Value  string
	Layout string
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("coerce %s: row %d: value %q does not match layout %q",
		e.Column, e.Row, e.Value, e.Layout)
}

func (e *CoercionError) Unwrap() error { return e.Err }

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(q, ", ")
}
