package schema

import (
	"sort"

	"nl2sql/internal/dataset"
	"nl2sql/pkg/records"
)

// Normalize renames every column of ds to its canonical form under t. It is
// pure: ds is not modified and the result depends only on the header and t.
//
// If two distinct raw columns of ds resolve to the same canonical name,
// Normalize returns a *dataset.SchemaCollisionError naming all of them and no
// dataset. Header order is preserved.
func Normalize(source string, ds records.Dataset, t *SynonymTable) (records.Dataset, error) {
	names, err := Plan(source, ds.Columns, t)
	if err != nil {
		return records.Dataset{}, err
	}

	out := records.Dataset{
		Columns: make([]string, len(ds.Columns)),
		Rows:    make([]records.Record, len(ds.Rows)),
	}
	for i, c := range ds.Columns {
		out.Columns[i] = names[c]
	}
	for i, r := range ds.Rows {
		nr := make(records.Record, len(r))
		for k, v := range r {
			if c, ok := names[k]; ok {
				nr[c] = v
			}
		}
		out.Rows[i] = nr
	}
	return out, nil
}

// Plan resolves a header into raw -> canonical names without touching any
// rows. It reports collisions exactly like Normalize.
func Plan(source string, header []string, t *SynonymTable) (map[string]string, error) {
	names := make(map[string]string, len(header))
	owners := make(map[string][]string, len(header))
	for _, raw := range header {
		c := t.Canonical(raw)
		names[raw] = c
		owners[c] = append(owners[c], raw)
	}

	// Report the first collision in header order so the error is stable.
	for _, raw := range header {
		c := names[raw]
		if len(owners[c]) > 1 {
			rs := append([]string(nil), owners[c]...)
			sort.Strings(rs)
			return nil, &dataset.SchemaCollisionError{Source: source, Canonical: c, Raw: rs}
		}
	}
	return names, nil
}
