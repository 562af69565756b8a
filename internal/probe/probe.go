// Package probe previews how a source file would load without touching any
// store. It samples the head of the file, resolves every raw header through
// the source's synonym table, coerces the sampled date columns and infers the
// column types the loader would create.
//
// Probing is how a new yearly file with yet another header spelling is
// caught: unmapped columns show up with Mapped=false, and collisions are
// reported before any load is attempted.
package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"nl2sql/internal/dataset"
	"nl2sql/internal/datasource"
	"nl2sql/internal/datasource/file"
	"nl2sql/internal/ddl"
	"nl2sql/internal/parser/csv"
	"nl2sql/internal/schema"
	"nl2sql/internal/transformer/builtin"
	"nl2sql/pkg/records"
)

// DefaultMaxBytes bounds the sample when Options.MaxBytes is zero.
const DefaultMaxBytes = 1 << 20

// Options control the sampling.
type Options struct {
	// MaxBytes is the number of bytes read from the head of the file.
	MaxBytes int
	// Comma is the field delimiter; ',' when zero.
	Comma rune
}

// Column is one header of the sampled file.
type Column struct {
	Raw       string
	Canonical string
	// Mapped is true when Raw matched a declared synonym. Unmapped columns
	// load under their folded name.
	Mapped bool
	Type   ddl.Type
	// Temporal marks designated date columns present in the file.
	Temporal bool
}

// Result is the preview of one source.
type Result struct {
	Source  string
	Table   string
	Columns []Column
	Rows    int
	// Truncated reports that the sample ended before the file did.
	Truncated bool
	// Failures counts lenient coercion failures per column in the sample.
	Failures map[string]int
	// CoercionErr is the strict-mode failure the sample would raise. Types
	// are then inferred as if the policy were lenient.
	CoercionErr error
}

// readSampleFn is the overridable seam used to read the head of a file.
var readSampleFn = readSample

// Probe samples src under dataDir. A missing file yields
// *dataset.SourceNotFoundError and a header collision yields
// *dataset.SchemaCollisionError.
func Probe(ctx context.Context, dataDir string, src dataset.SourceDescriptor, opt Options) (Result, error) {
	if opt.MaxBytes <= 0 {
		opt.MaxBytes = DefaultMaxBytes
	}
	local := file.Resolve(dataDir, src.Path)
	res := Result{Source: local.Path(), Table: src.Table}

	if err := local.Check(); err != nil {
		return res, err
	}
	data, truncated, err := readSampleFn(ctx, local, opt.MaxBytes)
	if err != nil {
		return res, err
	}
	res.Truncated = truncated

	raw, err := csv.NewParser(csv.Options{Comma: opt.Comma, LazyQuotes: true}).Parse(bytes.NewReader(data))
	if err != nil {
		return res, fmt.Errorf("parse sample of %s: %w", local.Path(), err)
	}
	res.Rows = raw.Len()

	table, err := schema.NewSynonymTable(src.Synonyms)
	if err != nil {
		return res, fmt.Errorf("synonyms for %s: %w", src, err)
	}
	names, err := schema.Plan(src.String(), raw.Columns, table)
	if err != nil {
		return res, err
	}

	ds, failures, err := coerce(src, raw, table, src.Policy)
	if err != nil {
		res.CoercionErr = err
		ds, failures, err = coerce(src, raw, table, dataset.Policy{Mode: dataset.Lenient, Layout: src.Policy.Layout})
		if err != nil {
			return res, err
		}
	}
	if len(failures) > 0 {
		res.Failures = failures
	}

	temporal := make(map[string]bool, len(src.DateColumns))
	for _, c := range src.DateColumns {
		temporal[c] = true
	}
	def := ddl.Infer(src.Table, ds)
	res.Columns = make([]Column, len(raw.Columns))
	for i, h := range raw.Columns {
		c := names[h]
		res.Columns[i] = Column{
			Raw:       h,
			Canonical: c,
			Mapped:    table.Declared(h),
			Type:      def.Columns[i].Type,
			Temporal:  temporal[c],
		}
	}
	return res, nil
}

// coerce normalizes a fresh copy of raw and applies the date policy to it.
func coerce(src dataset.SourceDescriptor, raw records.Dataset, t *schema.SynonymTable, p dataset.Policy) (records.Dataset, map[string]int, error) {
	ds, err := schema.Normalize(src.String(), raw, t)
	if err != nil {
		return records.Dataset{}, nil, err
	}
	c := builtin.Coerce{Source: src.String(), Columns: src.DateColumns, Policy: p}
	failures, err := c.Apply(ds)
	return ds, failures, err
}

// readSample reads at most n bytes from the head of src and cuts the result
// at the last newline so no partial record reaches the parser.
func readSample(ctx context.Context, src datasource.Source, n int) ([]byte, bool, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, false, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, int64(n)+1))
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", src.Path(), err)
	}
	if len(data) <= n {
		return data, false, nil
	}
	data = data[:n]
	if i := bytes.LastIndexByte(data, '\n'); i > 0 {
		data = data[:i+1]
	}
	return data, true, nil
}
