package config

import (
	"fmt"
	"sort"
	"strings"

	"nl2sql/internal/schema"
	"nl2sql/internal/storage"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "connection.kind",
// "domains[1].sources[0].columns[2]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of c. It does not mutate c and does not
// touch the filesystem or the network. Storage kinds are checked against the
// registered backends, so callers must import the backends first.
func Validate(c *Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.DataDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "data_dir",
			Message:  "data_dir must not be empty",
		})
	}
	issues = append(issues, validateConnection("connection", c.Connection)...)
	issues = append(issues, validateRuntime(c.Runtime)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	issues = append(issues, validateDomains(c)...)

	return issues
}

func validateConnection(path string, conn Connection) []Issue {
	var issues []Issue

	kind := strings.ToLower(strings.TrimSpace(conn.Kind))
	if kind == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".kind",
			Message:  "connection kind must not be empty",
		})
	}
	if _, err := storage.Lookup(kind); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".kind",
			Message:  fmt.Sprintf("unknown storage kind %q; registered: %s", conn.Kind, strings.Join(storage.ListKinds(), ", ")),
		})
	}
	if conn.Port < 0 || conn.Port > 65535 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".port",
			Message:  fmt.Sprintf("port %d out of range", conn.Port),
		})
	}
	if kind != "sqlite" && strings.TrimSpace(conn.Host) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     path + ".host",
			Message:  "host is empty; the driver default will be used",
		})
	}
	return issues
}

func validateRuntime(r Runtime) []Issue {
	var issues []Issue

	if r.DomainWorkers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.domain_workers",
			Message:  "domain_workers must not be negative",
		})
	}
	if r.TableWorkers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.table_workers",
			Message:  "table_workers must not be negative",
		})
	}
	if r.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; the default of %d will be used", r.BatchSize, storage.DefaultBatchSize),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires pushgateway_url",
			}}
		}
	case "datadog":
		if strings.TrimSpace(m.StatsdAddr) == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.statsd_addr",
				Message:  "datadog backend requires statsd_addr",
			}}
		}
	default:
		return []Issue{{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q (want none, pushgateway or datadog)", m.Backend),
		}}
	}
	return nil
}

func validateDomains(c *Config) []Issue {
	var issues []Issue

	if len(c.Domains) == 0 {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "domains",
			Message:  "no domains configured",
		})
	}

	names := map[string]int{}
	stores := map[string]string{}
	for i, d := range c.Domains {
		p := fmt.Sprintf("domains[%d]", i)
		if strings.TrimSpace(d.Name) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: p + ".name", Message: "domain name must not be empty"})
			continue
		}
		if prev, ok := names[d.Name]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     p + ".name",
				Message:  fmt.Sprintf("domain %q already declared at domains[%d]", d.Name, prev),
			})
		}
		names[d.Name] = i

		conn := c.Connection.merge(d.Connection)
		if d.Connection != nil {
			issues = append(issues, validateConnection(p+".connection", conn)...)
		}
		storeKey := conn.Conn().String() + "/" + d.StoreName()
		if other, ok := stores[storeKey]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     p + ".store",
				Message:  fmt.Sprintf("store %q is also used by domain %q; each domain owns its store", d.StoreName(), other),
			})
		}
		stores[storeKey] = d.Name

		if len(d.Sources) == 0 {
			issues = append(issues, Issue{Severity: SeverityWarning, Path: p + ".sources", Message: "domain has no sources"})
		}
		issues = append(issues, validateSources(p, d)...)
	}
	return issues
}

func validateSources(p string, d Domain) []Issue {
	var issues []Issue

	tables := map[string]string{}
	for si, s := range d.Sources {
		sp := fmt.Sprintf("%s.sources[%d]", p, si)
		paths := s.Paths()
		if len(paths) == 0 {
			issues = append(issues, Issue{Severity: SeverityError, Path: sp, Message: "source needs file or files"})
		}
		if strings.TrimSpace(s.Table) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: sp + ".table", Message: "table must not be empty"})
		}
		for _, f := range paths {
			table := s.Table
			if strings.Contains(table, yearPlaceholder) {
				label := Label(f)
				if label == "" {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Path:     sp + ".files",
						Message:  fmt.Sprintf("file %q has no four-digit year for table %s", f, s.Table),
					})
					continue
				}
				table = strings.ReplaceAll(table, yearPlaceholder, label)
			}
			if prev, ok := tables[table]; ok {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     sp + ".table",
					Message:  fmt.Sprintf("table %s is loaded from both %s and %s", table, prev, f),
				})
			}
			tables[table] = f
		}
		if _, err := s.Dates.Policy(); err != nil {
			issues = append(issues, Issue{Severity: SeverityError, Path: sp + ".dates", Message: err.Error()})
		}
		issues = append(issues, validateColumns(sp, s)...)
	}
	return issues
}

// validateColumns reports synonym declarations that would make
// normalisation ambiguous: the same raw spelling (after folding) declared for
// two canonical columns, or a canonical name not in folded form.
func validateColumns(sp string, s Source) []Issue {
	var issues []Issue

	owner := map[string]string{}
	for ci, c := range s.Columns {
		cp := fmt.Sprintf("%s.columns[%d]", sp, ci)
		if c.Canonical == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: cp + ".canonical", Message: "canonical name must not be empty"})
			continue
		}
		if f := schema.FormatName(c.Canonical); f != c.Canonical {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     cp + ".canonical",
				Message:  fmt.Sprintf("canonical name %q is not in folded form (want %q)", c.Canonical, f),
			})
		}
		for _, syn := range c.Synonyms {
			key := schema.FormatName(syn)
			if prev, ok := owner[key]; ok && prev != c.Canonical {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     cp + ".synonyms",
					Message:  fmt.Sprintf("synonym %q maps to both %q and %q", syn, prev, c.Canonical),
				})
				continue
			}
			owner[key] = c.Canonical
		}
	}
	if len(issues) > 0 {
		return issues
	}
	// Anything the table constructor still rejects (a canonical name used as
	// another column's synonym).
	if _, err := schema.NewSynonymTable(s.SynonymMap()); err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Path: sp + ".columns", Message: err.Error()})
	}
	return issues
}

// SortIssues orders issues errors first, then by path.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity == SeverityError
		}
		return issues[i].Path < issues[j].Path
	})
}
