// Package loader turns one source file into one replaced table: existence
// check, parse, normalize, coerce, then a stage-and-swap replace.
package loader

import (
	"context"
	"fmt"
	"time"

	"nl2sql/internal/dataset"
	"nl2sql/internal/datasource/file"
	"nl2sql/internal/ddl"
	"nl2sql/internal/metrics"
	"nl2sql/internal/parser/csv"
	"nl2sql/internal/schema"
	"nl2sql/internal/storage"
	"nl2sql/internal/transformer/builtin"
	"nl2sql/pkg/records"
)

// Loader loads SourceDescriptors whose paths are relative to DataDir.
type Loader struct {
	DataDir  string
	Parser   *csv.Parser
	Observer Observer
}

// New returns a Loader reading comma-separated files under dataDir. A nil
// observer discards notifications.
func New(dataDir string, obs Observer) *Loader {
	if obs == nil {
		obs = ObserverFunc(func(dataset.LoadResult) {})
	}
	return &Loader{
		DataDir:  dataDir,
		Parser:   csv.NewParser(csv.Options{Comma: ','}),
		Observer: obs,
	}
}

// Load runs every step for src against repo and returns its LoadResult.
// Failures are reported in the result (Status failed, Err set) and leave the
// target table as it was.
func (l *Loader) Load(ctx context.Context, repo storage.Repository, src dataset.SourceDescriptor) dataset.LoadResult {
	start := time.Now()
	res := dataset.LoadResult{Domain: src.Domain, Table: src.Table}

	rows, sum, failures, err := l.load(ctx, repo, src, &res)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Status = dataset.StatusFailed
		res.Err = err
		l.Observer.TableLoaded(res)
		return res
	}

	res.Rows = rows
	res.Checksum = sum
	if len(failures) > 0 {
		res.CoercionFailures = failures
	}
	res.Status = dataset.StatusLoaded

	metrics.RecordRow(src.Domain, metrics.KindLoaded, rows)
	for _, n := range failures {
		metrics.RecordRow(src.Domain, metrics.KindCoercionFailures, int64(n))
	}
	l.Observer.TableLoaded(res)
	return res
}

func (l *Loader) load(
	ctx context.Context,
	repo storage.Repository,
	src dataset.SourceDescriptor,
	res *dataset.LoadResult,
) (int64, uint64, map[string]int, error) {
	local := file.Resolve(l.DataDir, src.Path)
	res.Source = local.Path()

	if err := step(src.Domain, "check", func() error { return local.Check() }); err != nil {
		return 0, 0, nil, err
	}

	var ds records.Dataset
	err := step(src.Domain, "parse", func() error {
		rc, err := local.Open(ctx)
		if err != nil {
			return err
		}
		defer rc.Close()
		ds, err = l.Parser.Parse(rc)
		if err != nil {
			return fmt.Errorf("parse %s: %w", local.Path(), err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, nil, err
	}

	err = step(src.Domain, "normalize", func() error {
		t, err := schema.NewSynonymTable(src.Synonyms)
		if err != nil {
			return fmt.Errorf("synonyms for %s: %w", src, err)
		}
		ds, err = schema.Normalize(src.String(), ds, t)
		return err
	})
	if err != nil {
		return 0, 0, nil, err
	}

	var failures map[string]int
	err = step(src.Domain, "coerce", func() error {
		c := builtin.Coerce{Source: src.String(), Columns: src.DateColumns, Policy: src.Policy}
		var err error
		failures, err = c.Apply(ds)
		return err
	})
	if err != nil {
		return 0, 0, nil, err
	}

	def := ddl.Infer(src.Table, ds)
	values, err := ddl.Values(def, ds)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("convert %s: %w", src, err)
	}
	sum := Checksum(def, values)

	var n int64
	err = step(src.Domain, "replace", func() error {
		var err error
		n, err = repo.ReplaceTable(ctx, def, values)
		return err
	})
	if err != nil {
		return n, 0, nil, fmt.Errorf("replace %s: %w", src.Table, err)
	}
	return n, sum, failures, nil
}

// step runs fn and records its duration and outcome.
func step(domain, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(domain, name, err, time.Since(start))
	return err
}
