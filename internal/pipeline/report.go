package pipeline

import (
	"fmt"
	"time"

	"nl2sql/internal/dataset"
)

// DomainReport holds the results of one domain in source order.
type DomainReport struct {
	Domain  string
	Results []dataset.LoadResult
}

// Failed returns the first failed result of the domain, if any.
func (d DomainReport) Failed() (dataset.LoadResult, bool) {
	for _, r := range d.Results {
		if r.Status == dataset.StatusFailed {
			return r, true
		}
	}
	return dataset.LoadResult{}, false
}

// Rows sums the loaded rows of the domain.
func (d DomainReport) Rows() int64 {
	var n int64
	for _, r := range d.Results {
		n += r.Rows
	}
	return n
}

// Report is the outcome of a run.
type Report struct {
	// Provisioning is set when stores could not be provisioned; no loads ran.
	Provisioning error
	Domains      []DomainReport
	Elapsed      time.Duration
}

// Err returns nil when every source of every domain loaded. Otherwise it
// names the first fatal failure in domain declaration order.
func (r *Report) Err() error {
	if r.Provisioning != nil {
		return r.Provisioning
	}
	for _, d := range r.Domains {
		if res, ok := d.Failed(); ok {
			return fmt.Errorf("domain %s: table %s: %w", d.Domain, res.Table, res.Err)
		}
		for _, res := range d.Results {
			if res.Status != dataset.StatusLoaded {
				return fmt.Errorf("domain %s: table %s: not loaded: %v", d.Domain, res.Table, res.Err)
			}
		}
	}
	return nil
}

// Results flattens all load results in domain then source order.
func (r *Report) Results() []dataset.LoadResult {
	var out []dataset.LoadResult
	for _, d := range r.Domains {
		out = append(out, d.Results...)
	}
	return out
}
