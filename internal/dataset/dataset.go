// Package dataset defines the descriptors consumed by the load pipeline and
// the per-table LoadResult it produces.
//
// Descriptors are built once from configuration at startup, handed to the
// provisioner and loader by value, and never mutated afterwards.
package dataset

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Conn carries the externally supplied connection parameters for a store.
// Kind selects the storage backend ("mysql", "postgres", "sqlite", "mssql").
type Conn struct {
	Kind     string
	Host     string
	Port     int
	User     string
	Password string
	// Params holds backend-specific extras (e.g. sslmode, sqlite dir).
	Params map[string]string
}

// Param returns Params[key] or def when unset.
func (c Conn) Param(key, def string) string {
	if v, ok := c.Params[key]; ok && v != "" {
		return v
	}
	return def
}

// String renders the connection without its password.
func (c Conn) String() string {
	return fmt.Sprintf("%s://%s@%s:%d", c.Kind, c.User, c.Host, c.Port)
}

// StoreDescriptor identifies one target store: a logical domain name and the
// database that backs it.
type StoreDescriptor struct {
	// Name is the logical domain name (crimes, happiness, ...).
	Name string
	// Database is the physical database created by the provisioner.
	Database string
	Conn     Conn
}

// Mode selects how malformed temporal values are handled.
type Mode string

const (
	// Strict fails the load on the first value that does not match Layout.
	Strict Mode = "strict"
	// Lenient turns unparseable values into nil and counts them.
	Lenient Mode = "lenient"
)

// Policy is the temporal coercion policy of one source.
type Policy struct {
	Mode Mode
	// Layout is the Go time layout required in strict mode. In lenient mode
	// it is tried first, ahead of the built-in layouts.
	Layout string
}

// SourceDescriptor describes one ingestion unit: one file into one table.
type SourceDescriptor struct {
	// Domain is the owning domain (matches StoreDescriptor.Name).
	Domain string
	// Path is the file path relative to the configured data directory.
	Path string
	// Table is the resolved target table name.
	Table string
	// Label is the year/label taken from the file name when the table name
	// is parameterised by it; empty otherwise.
	Label string
	// Synonyms maps raw column names to canonical names (many-to-one).
	Synonyms map[string]string
	// DateColumns lists canonical columns that require temporal coercion,
	// in declaration order.
	DateColumns []string
	Policy      Policy
}

// String identifies the descriptor in logs and reports.
func (s SourceDescriptor) String() string {
	return s.Domain + "/" + s.Table
}

// LoadResult is the outcome of loading one SourceDescriptor.
type LoadResult struct {
	Domain string
	Table  string
	Source string
	Rows   int64
	// CoercionFailures counts lenient coercion failures per column. Columns
	// without failures are absent.
	CoercionFailures map[string]int
	// Checksum fingerprints the loaded columns and values (xxh3).
	Checksum uint64
	Elapsed  time.Duration
	Status   Status
	Err      error
}

// Status is the final state of one load.
type Status string

const (
	StatusLoaded  Status = "loaded"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// FailedColumns returns the columns with lenient coercion failures, sorted.
func (r LoadResult) FailedColumns() []string {
	cols := make([]string, 0, len(r.CoercionFailures))
	for c := range r.CoercionFailures {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// FailureSummary renders CoercionFailures as "col=n, col=n".
func (r LoadResult) FailureSummary() string {
	cols := r.FailedColumns()
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s=%d", c, r.CoercionFailures[c])
	}
	return strings.Join(parts, ", ")
}
