package config

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ncruces/go-strftime"

	"nl2sql/internal/dataset"
	"nl2sql/internal/pipeline"
)

// yearPlaceholder is replaced in table names by the file's year label.
const yearPlaceholder = "{year}"

var yearRe = regexp.MustCompile(`\d{4}`)

// Layout converts a date format to a Go time layout. Formats containing '%'
// are strftime formats; anything else is returned as a Go layout.
func Layout(format string) (string, error) {
	if !strings.Contains(format, "%") {
		return format, nil
	}
	l, err := strftime.Layout(format)
	if err != nil {
		return "", fmt.Errorf("date format %q: %w", format, err)
	}
	return l, nil
}

// Label returns the first four-digit run in the base name of file, or "".
func Label(file string) string {
	base := path.Base(filepath.ToSlash(file))
	return yearRe.FindString(base)
}

// Policy converts d to a coercion policy.
func (d Dates) Policy() (dataset.Policy, error) {
	mode := dataset.Mode(strings.ToLower(strings.TrimSpace(d.Mode)))
	switch mode {
	case "":
		mode = dataset.Lenient
	case dataset.Strict, dataset.Lenient:
	default:
		return dataset.Policy{}, fmt.Errorf("unknown date mode %q", d.Mode)
	}
	var layout string
	if d.Format != "" {
		l, err := Layout(d.Format)
		if err != nil {
			return dataset.Policy{}, err
		}
		layout = l
	}
	if mode == dataset.Strict && layout == "" {
		return dataset.Policy{}, fmt.Errorf("strict date mode requires a format")
	}
	return dataset.Policy{Mode: mode, Layout: layout}, nil
}

// SynonymMap flattens the column declarations of s into raw -> canonical
// pairs.
func (s Source) SynonymMap() map[string]string {
	if len(s.Columns) == 0 {
		return nil
	}
	m := make(map[string]string)
	for _, c := range s.Columns {
		for _, syn := range c.Synonyms {
			m[syn] = c.Canonical
		}
	}
	return m
}

// Descriptors expands the configuration into one pipeline.Domain per
// configured domain, with one SourceDescriptor per source file. It assumes
// Validate reported no errors.
func (c *Config) Descriptors() ([]pipeline.Domain, error) {
	out := make([]pipeline.Domain, 0, len(c.Domains))
	for _, d := range c.Domains {
		dom := pipeline.Domain{
			Store: dataset.StoreDescriptor{
				Name:     d.Name,
				Database: d.StoreName(),
				Conn:     c.Connection.merge(d.Connection).Conn(),
			},
		}
		for si, s := range d.Sources {
			pol, err := s.Dates.Policy()
			if err != nil {
				return nil, fmt.Errorf("domain %s: source %d: %w", d.Name, si, err)
			}
			for _, f := range s.Paths() {
				label := Label(f)
				table := s.Table
				if strings.Contains(table, yearPlaceholder) {
					if label == "" {
						return nil, fmt.Errorf("domain %s: file %s: table %s needs a year in the file name", d.Name, f, s.Table)
					}
					table = strings.ReplaceAll(table, yearPlaceholder, label)
				} else {
					label = ""
				}
				p := f
				if !filepath.IsAbs(p) {
					p = filepath.Join(d.DirName(), f)
				}
				dom.Sources = append(dom.Sources, dataset.SourceDescriptor{
					Domain:      d.Name,
					Path:        p,
					Table:       table,
					Label:       label,
					Synonyms:    s.SynonymMap(),
					DateColumns: append([]string(nil), s.Dates.Columns...),
					Policy:      pol,
				})
			}
		}
		out = append(out, dom)
	}
	return out, nil
}
