// Package schema reconciles the column headers of source files that spell the
// same column differently across years and publishers.
//
// A SynonymTable is declared statically per source (raw name -> canonical
// name, many-to-one). Raw names are matched on their folded form, so case,
// surrounding whitespace and space/hyphen/underscore runs do not matter.
// Columns not in the table keep their name in folded form.
package schema

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FormatName returns the folded form of a column name: NFKC-normalised,
// case-folded, trimmed, with every run of whitespace, '-' or '_' replaced by
// a single '_'. FormatName is idempotent.
func FormatName(raw string) string {
	s := norm.NFKC.String(raw)
	s = cases.Fold().String(s)
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	sep := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}
	if sep && b.Len() > 0 {
		b.WriteByte('_')
	}
	return b.String()
}

// SynonymTable maps folded raw column names to canonical names.
// The zero value and nil are valid empty tables.
type SynonymTable struct {
	byKey map[string]string
	// raw keeps the declared spelling for error messages.
	raw map[string]string
}

// NewSynonymTable builds a table from raw -> canonical pairs. It rejects
// declarations that would make normalisation ambiguous or unstable:
//   - a canonical name that is not already in folded form,
//   - two raw spellings that fold to the same key but name different
//     canonical columns,
//   - a canonical name whose own folded form is declared as a synonym of a
//     different canonical column.
//
// Canonical names are registered as synonyms of themselves.
func NewSynonymTable(pairs map[string]string) (*SynonymTable, error) {
	t := &SynonymTable{
		byKey: make(map[string]string, len(pairs)*2),
		raw:   make(map[string]string, len(pairs)*2),
	}

	raws := make([]string, 0, len(pairs))
	for r := range pairs {
		raws = append(raws, r)
	}
	sort.Strings(raws)

	for _, r := range raws {
		canon := pairs[r]
		if canon == "" {
			return nil, fmt.Errorf("synonym %q: empty canonical name", r)
		}
		if FormatName(canon) != canon {
			return nil, fmt.Errorf("canonical name %q is not in folded form (want %q)", canon, FormatName(canon))
		}
		key := FormatName(r)
		if key == "" {
			return nil, fmt.Errorf("synonym for %q: empty raw name", canon)
		}
		if prev, ok := t.byKey[key]; ok && prev != canon {
			return nil, fmt.Errorf("synonym %q maps to both %q and %q", r, prev, canon)
		}
		t.byKey[key] = canon
		t.raw[key] = r
	}

	for _, r := range raws {
		canon := pairs[r]
		if prev, ok := t.byKey[canon]; ok && prev != canon {
			return nil, fmt.Errorf("canonical name %q is declared as synonym %q of %q", canon, t.raw[canon], prev)
		}
		t.byKey[canon] = canon
	}
	return t, nil
}

// MustSynonymTable is NewSynonymTable for static tables known to be valid.
func MustSynonymTable(pairs map[string]string) *SynonymTable {
	t, err := NewSynonymTable(pairs)
	if err != nil {
		panic(err)
	}
	return t
}

// Canonical returns the canonical name for raw, or its folded form when raw
// is not a declared synonym.
func (t *SynonymTable) Canonical(raw string) string {
	key := FormatName(raw)
	if t != nil {
		if c, ok := t.byKey[key]; ok {
			return c
		}
	}
	return key
}

// Len returns the number of distinct folded keys, canonical names included.
func (t *SynonymTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byKey)
}

// Declared reports whether raw matches a declared synonym or canonical name.
func (t *SynonymTable) Declared(raw string) bool {
	if t == nil {
		return false
	}
	_, ok := t.byKey[FormatName(raw)]
	return ok
}
