// Package builtin holds the row transforms applied between reading a source
// file and writing it to a store.
package builtin

import (
	"strings"
	"time"

	"nl2sql/internal/dataset"
	"nl2sql/pkg/records"
)

// lenientLayouts are tried, in order, after the policy layout when parsing in
// lenient mode. Single-digit month/day forms also accept zero-padded input.
var lenientLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/1/2 15:04:05",
	"2006/1/2",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1-2-2006",
	"2-Jan-06",
	"2-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, 2 Jan 2006",
	"Mon, 02 Jan 06",
}

// Coerce parses the designated temporal columns of a dataset into time.Time.
//
// Only columns present in both Columns and the dataset header are touched;
// designating an absent column is not an error. Blank values become nil in
// both modes and are not counted as failures.
type Coerce struct {
	Source  string
	Columns []string
	Policy  dataset.Policy
}

// Apply coerces ds in place. In strict mode the first value that does not
// match Policy.Layout aborts with a *dataset.CoercionError. In lenient mode
// unparseable values become nil and are counted per column; the returned
// map only holds columns with at least one failure.
func (c Coerce) Apply(ds records.Dataset) (map[string]int, error) {
	failures := map[string]int{}

	for _, col := range c.Columns {
		if !ds.HasColumn(col) {
			continue
		}
		for i, r := range ds.Rows {
			v, ok := r[col]
			if !ok || v == nil {
				continue
			}
			if _, isTime := v.(time.Time); isTime {
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				r[col] = nil
				continue
			}

			switch c.Policy.Mode {
			case dataset.Strict:
				t, err := time.Parse(c.Policy.Layout, s)
				if err != nil {
					return nil, &dataset.CoercionError{
						Column: col,
						Row:    i,
						Value:  s,
						Layout: c.Policy.Layout,
						Err:    err,
					}
				}
				r[col] = t
			default:
				if t, ok := parseLenient(s, c.Policy.Layout); ok {
					r[col] = t
				} else {
					r[col] = nil
					failures[col]++
				}
			}
		}
	}
	return failures, nil
}

// parseLenient tries the preferred layout first and then lenientLayouts.
func parseLenient(s, preferred string) (time.Time, bool) {
	if preferred != "" {
		if t, err := time.Parse(preferred, s); err == nil {
			return t, true
		}
	}
	for _, l := range lenientLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
