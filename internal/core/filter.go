package core

// filter.go evaluates a column filter against a single cell.
//
// Filters fail open: a filter that is missing, incomplete or malformed keeps
// the row. Malformed filter state must never hide data from the user, so no
// path in this file returns an error or excludes a row because the filter
// itself could not be read.

import (
	"math"
	"strings"
	"time"
)

// ApplyFilter reports whether value satisfies f for a column of type t.
// A nil filter, a filter without an operator and a filter with an empty
// value always pass. Numeric zero is not empty.
func ApplyFilter(value any, f *FilterSpec, t ColumnType) bool {
	if f == nil || f.Operator == "" || isEmptyOperand(f.Value) {
		return true
	}

	switch t {
	case ColumnString:
		return applyStringFilter(ToString(value), f)
	case ColumnNumber:
		return applyNumberFilter(ToNumber(value), f)
	case ColumnDate:
		cell, ok := ToTime(value)
		return applyDateFilter(cell, ok, f)
	default:
		return true
	}
}

func applyStringFilter(value string, f *FilterSpec) bool {
	needle := ToString(f.Value)
	if needle == "" {
		return true
	}
	if !f.CaseSensitive {
		value = strings.ToLower(value)
		needle = strings.ToLower(needle)
	}

	switch f.Operator {
	case OpContains:
		return strings.Contains(value, needle)
	case OpEquals:
		return value == needle
	case OpStartsWith:
		return strings.HasPrefix(value, needle)
	case OpEndsWith:
		return strings.HasSuffix(value, needle)
	default:
		return true
	}
}

func applyNumberFilter(value float64, f *FilterSpec) bool {
	from := ToNumber(f.Value)
	if math.IsNaN(from) {
		return true
	}

	switch f.Operator {
	case OpEquals:
		return value == from
	case OpGreater:
		return value > from
	case OpGreaterEq:
		return value >= from
	case OpLess:
		return value < from
	case OpLessEq:
		return value <= from
	case OpBetween:
		if isEmptyOperand(f.ValueTo) {
			return true
		}
		to := ToNumber(f.ValueTo)
		if math.IsNaN(to) {
			return true
		}
		return value >= from && value <= to
	default:
		return true
	}
}

func applyDateFilter(value time.Time, valid bool, f *FilterSpec) bool {
	from, ok := ToTime(f.Value)
	if !ok {
		return true
	}

	var to time.Time
	hasTo := false
	if !isEmptyOperand(f.ValueTo) {
		to, hasTo = ToTime(f.ValueTo)
	}

	// An unreadable cell compares false against every bound.
	if !valid {
		if f.Operator == OpBetween && !hasTo {
			return true
		}
		switch f.Operator {
		case OpEquals, OpBefore, OpAfter, OpBetween:
			return false
		default:
			return true
		}
	}

	switch f.Operator {
	case OpEquals:
		return value.Equal(from)
	case OpBefore:
		return value.Before(from)
	case OpAfter:
		return value.After(from)
	case OpBetween:
		if !hasTo {
			return true
		}
		return !value.Before(from) && !value.After(to)
	default:
		return true
	}
}

// MatchesAll reports whether row passes every filter (AND semantics).
func MatchesAll(row Row, filters []ColumnFilter) bool {
	for i := range filters {
		f := &filters[i]
		if !ApplyFilter(row[f.Column], &f.Spec, f.Type) {
			return false
		}
	}
	return true
}
