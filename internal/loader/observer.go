package loader

import (
	"log"
	"time"

	"nl2sql/internal/dataset"
)

// Observer receives one notification per processed table.
type Observer interface {
	TableLoaded(res dataset.LoadResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(res dataset.LoadResult)

func (f ObserverFunc) TableLoaded(res dataset.LoadResult) { f(res) }

// LogObserver logs one line per table through logf (log.Printf when nil).
func LogObserver(logf func(format string, args ...any)) Observer {
	if logf == nil {
		logf = log.Printf
	}
	return ObserverFunc(func(r dataset.LoadResult) {
		elapsed := r.Elapsed.Truncate(time.Millisecond)
		switch {
		case r.Err != nil:
			logf("loader: table=%s domain=%s status=%s elapsed=%s err=%v", r.Table, r.Domain, r.Status, elapsed, r.Err)
		case len(r.CoercionFailures) > 0:
			logf("loader: table=%s domain=%s rows=%d coercion_failures=[%s] elapsed=%s",
				r.Table, r.Domain, r.Rows, r.FailureSummary(), elapsed)
		default:
			logf("loader: table=%s domain=%s rows=%d elapsed=%s", r.Table, r.Domain, r.Rows, elapsed)
		}
	})
}
