package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"nl2sql/internal/dataset"
	"nl2sql/internal/pipeline"
)

// renderReport prints one row per source and, on failure, the error that
// stopped each domain.
func renderReport(w io.Writer, rep *pipeline.Report) {
	if rep.Provisioning != nil {
		fmt.Fprintf(w, "provisioning failed: %v\n", rep.Provisioning)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Domain", "Table", "Rows", "Coercion failures", "Status", "Elapsed"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	var total int64
	for _, d := range rep.Domains {
		for _, r := range d.Results {
			failures := r.FailureSummary()
			if failures == "" {
				failures = "-"
			}
			t.AppendRow(table.Row{d.Domain, r.Table, r.Rows, failures, string(r.Status), r.Elapsed.Truncate(time.Millisecond)})
		}
		total += d.Rows()
	}
	t.AppendFooter(table.Row{"", "", total, "", "", rep.Elapsed.Truncate(time.Millisecond)})
	t.Render()

	for _, d := range rep.Domains {
		if r, ok := d.Failed(); ok {
			fmt.Fprintf(w, "domain %s: table %s: %v\n", d.Domain, r.Table, r.Err)
		}
	}
}

// renderPlan prints the resolved sources of every domain.
func renderPlan(w io.Writer, doms []pipeline.Domain) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Domain", "Store", "Backend", "File", "Table", "Dates"})
	for _, d := range doms {
		for _, s := range d.Sources {
			t.AppendRow(table.Row{d.Store.Name, d.Store.Database, d.Store.Conn.Kind, s.Path, s.Table, describeDates(s)})
		}
	}
	t.Render()
}

func describeDates(s dataset.SourceDescriptor) string {
	if len(s.DateColumns) == 0 {
		return "-"
	}
	out := string(s.Policy.Mode) + " " + strings.Join(s.DateColumns, ",")
	if s.Policy.Layout != "" {
		out += " (" + s.Policy.Layout + ")"
	}
	return out
}
