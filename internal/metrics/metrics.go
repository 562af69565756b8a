// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the load pipeline.
//
// It exposes a narrow interface (Backend) focused on counters and timing
// data, plus a global, pluggable backend that defaults to a no-op
// implementation so the recording helpers are always safe to call. Concrete
// metric systems live in subpackages (prompush, datadog).
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by the helpers and the backends.
const (
	StepTotal           = "nl2sql_step_total"
	StepDurationSeconds = "nl2sql_step_duration_seconds"
	RowsTotal           = "nl2sql_rows_total"
)

// Row kinds recorded with RecordRow.
const (
	KindLoaded           = "loaded"
	KindCoercionFailures = "coercion_failures"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep measures latency and success/failure of one pipeline step
// (provision, parse, normalize, coerce, replace, ...) for a domain.
func RecordStep(domain, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"domain": domain,
		"step":   step,
		"status": status,
	}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow adds delta rows of the given kind (KindLoaded,
// KindCoercionFailures) for a domain. Non-positive deltas are ignored.
func RecordRow(domain, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"domain": domain,
		"kind":   kind,
	})
}
