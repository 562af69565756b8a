package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"nl2sql/internal/pipeline"
	"nl2sql/internal/probe"
)

func newProbeCmd(f *rootFlags) *cobra.Command {
	var maxBytes int

	cmd := &cobra.Command{
		Use:   "probe [domain...]",
		Short: "Preview how each source file's header maps onto canonical columns",
		Long: `probe samples the head of every configured source file (or only those of
the named domains), resolves each raw header through the synonym table and
prints the canonical name and inferred type. Nothing is written to any store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAndValidate(cmd, *f)
			if err != nil {
				return err
			}
			doms, err := cfg.Descriptors()
			if err != nil {
				return err
			}
			doms, err = selectDomains(doms, args)
			if err != nil {
				return err
			}

			var first error
			for _, d := range doms {
				for _, src := range d.Sources {
					res, err := probe.Probe(cmd.Context(), cfg.DataDir, src, probe.Options{MaxBytes: maxBytes})
					if err != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n\n", src, err)
						if first == nil {
							first = fmt.Errorf("domain %s: table %s: %w", src.Domain, src.Table, err)
						}
						continue
					}
					renderProbe(cmd.OutOrStdout(), src.String(), res)
				}
			}
			return first
		},
	}
	cmd.Flags().IntVar(&maxBytes, "sample-bytes", probe.DefaultMaxBytes, "bytes sampled from the head of each file")
	return cmd
}

func selectDomains(doms []pipeline.Domain, names []string) ([]pipeline.Domain, error) {
	if len(names) == 0 {
		return doms, nil
	}
	byName := make(map[string]pipeline.Domain, len(doms))
	for _, d := range doms {
		byName[d.Store.Name] = d
	}
	out := make([]pipeline.Domain, 0, len(names))
	for _, n := range names {
		d, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown domain %q", n)
		}
		out = append(out, d)
	}
	return out, nil
}

func renderProbe(w io.Writer, title string, res probe.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s (%s, %d sampled rows)", title, res.Source, res.Rows))
	t.AppendHeader(table.Row{"Raw", "Canonical", "Mapped", "Type", "Date"})
	for _, c := range res.Columns {
		mapped, date := "", ""
		if c.Mapped {
			mapped = "yes"
		}
		if c.Temporal {
			date = "yes"
			if n := res.Failures[c.Canonical]; n > 0 {
				date = fmt.Sprintf("%d unparseable", n)
			}
		}
		t.AppendRow(table.Row{c.Raw, c.Canonical, mapped, string(c.Type), date})
	}
	t.Render()

	var notes []string
	if res.Truncated {
		notes = append(notes, "sample truncated")
	}
	if res.CoercionErr != nil {
		notes = append(notes, "strict load would fail: "+res.CoercionErr.Error())
	}
	if len(notes) > 0 {
		fmt.Fprintln(w, strings.Join(notes, "; "))
	}
	fmt.Fprintln(w)
}
