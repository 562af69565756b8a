package ddl

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"nl2sql/pkg/records"
)

// Infer derives a TableDef for ds. Each column gets the narrowest logical
// type that every non-nil value satisfies, checked in the order integer,
// float, boolean; columns holding only time.Time values are timestamps and
// everything else (including all-nil columns) is text. A column is nullable
// when at least one value is nil. Inference depends only on the values, so the
// same data always yields the same definition.
func Infer(table string, ds records.Dataset) TableDef {
	def := TableDef{FQN: table, Columns: make([]ColumnDef, len(ds.Columns))}
	for i, name := range ds.Columns {
		def.Columns[i] = inferColumn(name, ds.Rows)
	}
	return def
}

func inferColumn(name string, rows []records.Record) ColumnDef {
	var (
		seen                           int
		nullable                       bool
		isInt, isFloat, isBool, isTime = true, true, true, true
	)
	for _, r := range rows {
		v := r[name]
		if v == nil {
			nullable = true
			continue
		}
		seen++
		switch t := v.(type) {
		case time.Time:
			isInt, isFloat, isBool = false, false, false
		case string:
			isTime = false
			if isInt && !looksInt(t) {
				isInt = false
			}
			if isFloat && !looksFloat(t) {
				isFloat = false
			}
			if isBool && !looksBool(t) {
				isBool = false
			}
		default:
			isInt, isFloat, isBool, isTime = false, false, false, false
		}
	}

	col := ColumnDef{Name: name, Type: TypeText, Nullable: nullable}
	switch {
	case seen == 0:
		col.Nullable = true
	case isTime:
		col.Type = TypeTimestamp
	case isInt:
		col.Type = TypeInteger
	case isFloat:
		col.Type = TypeFloat
	case isBool:
		col.Type = TypeBoolean
	}
	return col
}

func looksInt(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

func looksFloat(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func looksBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "false":
		return true
	}
	return false
}

// Convert turns a loaded value into the Go value bound for a column of type t.
// nil stays nil. Convert fails only when v does not satisfy t, which cannot
// happen for a definition produced by Infer over the same rows.
func Convert(t Type, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case TypeTimestamp:
		if tm, ok := v.(time.Time); ok {
			return tm, nil
		}
	case TypeInteger:
		if s, ok := v.(string); ok {
			return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		}
	case TypeFloat:
		if s, ok := v.(string); ok {
			return strconv.ParseFloat(strings.TrimSpace(s), 64)
		}
	case TypeBoolean:
		if s, ok := v.(string); ok {
			return strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
		}
	case TypeText:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
	return nil, fmt.Errorf("ddl: value %#v is not a %s", v, t)
}

// Values returns the rows of ds as positional slices aligned to def's
// columns, converted with Convert.
func Values(def TableDef, ds records.Dataset) ([][]any, error) {
	out := make([][]any, len(ds.Rows))
	for i, r := range ds.Rows {
		row := make([]any, len(def.Columns))
		for j, c := range def.Columns {
			v, err := Convert(c.Type, r[c.Name])
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, c.Name, err)
			}
			row[j] = v
		}
		out[i] = row
	}
	return out, nil
}
