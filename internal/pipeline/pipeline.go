// Package pipeline sequences a run: provision every store, then load every
// domain's sources, collecting one LoadResult per source.
package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"nl2sql/internal/dataset"
	"nl2sql/internal/storage"
)

// Domain is one store and the sources loaded into it.
type Domain struct {
	Store   dataset.StoreDescriptor
	Sources []dataset.SourceDescriptor
}

// Provisioner ensures stores exist.
type Provisioner interface {
	Ensure(ctx context.Context, stores []dataset.StoreDescriptor) error
}

// Loader loads one source into an open repository.
type Loader interface {
	Load(ctx context.Context, repo storage.Repository, src dataset.SourceDescriptor) dataset.LoadResult
}

// Options bound the run's concurrency.
type Options struct {
	// DomainWorkers is the number of domains loaded at once; <= 0 means all.
	DomainWorkers int
	// TableWorkers is the number of tables of one domain loaded at once. It
	// only applies to backends that allow concurrent DDL; others load one
	// table at a time.
	TableWorkers int
	BatchSize    int
}

// Driver runs the pipeline.
type Driver struct {
	Provisioner Provisioner
	Loader      Loader
	Options     Options

	// open and lookup default to the storage registry.
	open   func(ctx context.Context, cfg storage.Config) (storage.Repository, error)
	lookup func(kind string) (storage.Backend, error)
}

// New returns a Driver using the storage registry.
func New(p Provisioner, l Loader, opt Options) *Driver {
	return &Driver{Provisioner: p, Loader: l, Options: opt, open: storage.New, lookup: storage.Lookup}
}

// Run provisions all stores and then loads each domain. Provisioning is a
// barrier: no load starts before every store exists, and a provisioning
// failure ends the run with no loads. A failed load aborts only the remaining
// loads of its own domain.
func (d *Driver) Run(ctx context.Context, domains []Domain) *Report {
	start := time.Now()
	rep := &Report{Domains: make([]DomainReport, len(domains))}
	for i, dom := range domains {
		rep.Domains[i].Domain = dom.Store.Name
	}

	stores := make([]dataset.StoreDescriptor, len(domains))
	for i, dom := range domains {
		stores[i] = dom.Store
	}
	if err := d.Provisioner.Ensure(ctx, stores); err != nil {
		rep.Provisioning = err
		rep.Elapsed = time.Since(start)
		return rep
	}

	g := new(errgroup.Group)
	if n := d.Options.DomainWorkers; n > 0 {
		g.SetLimit(n)
	}
	for i := range domains {
		g.Go(func() error {
			rep.Domains[i].Results = d.runDomain(ctx, domains[i])
			return nil
		})
	}
	_ = g.Wait()

	rep.Elapsed = time.Since(start)
	return rep
}

// runDomain loads the sources of one domain into its store. Results keep the
// declaration order of the sources.
func (d *Driver) runDomain(ctx context.Context, dom Domain) []dataset.LoadResult {
	results := make([]dataset.LoadResult, len(dom.Sources))
	for i, src := range dom.Sources {
		results[i] = dataset.LoadResult{Domain: src.Domain, Table: src.Table, Status: dataset.StatusSkipped}
	}
	if len(dom.Sources) == 0 {
		return results
	}

	repo, err := d.open(ctx, storage.Config{
		Conn:      dom.Store.Conn,
		Database:  dom.Store.Database,
		BatchSize: d.Options.BatchSize,
	})
	if err != nil {
		results[0].Status = dataset.StatusFailed
		results[0].Err = fmt.Errorf("open store %s: %w", dom.Store.Database, err)
		return results
	}
	defer repo.Close()

	workers := 1
	if b, err := d.lookup(dom.Store.Conn.Kind); err == nil && b.ConcurrentDDL && d.Options.TableWorkers > 1 {
		workers = d.Options.TableWorkers
	}

	var failed atomic.Bool
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, src := range dom.Sources {
		if failed.Load() {
			break
		}
		g.Go(func() error {
			if failed.Load() || ctx.Err() != nil {
				return nil
			}
			res := d.Loader.Load(ctx, repo, src)
			results[i] = res
			if res.Status == dataset.StatusFailed {
				failed.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].Status == dataset.StatusSkipped && results[i].Err == nil {
				results[i].Err = err
			}
		}
	}
	return results
}
