package core

import (
	"math"
	"time"
)

// Trend is the direction of change between a cell and its neighbour.
type Trend string

const (
	TrendNone Trend = ""
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// ComparisonMode selects which neighbour a cell is compared with.
type ComparisonMode string

const (
	ComparisonNone ComparisonMode = "none"
	ComparisonDown ComparisonMode = "down" // compare with the previous row
	ComparisonUp   ComparisonMode = "up"   // compare with the next row
)

// Valid reports whether m is a known comparison mode.
func (m ComparisonMode) Valid() bool {
	switch m {
	case ComparisonNone, ComparisonDown, ComparisonUp:
		return true
	}
	return false
}

// Comparison describes how a cell differs from its neighbour.
type Comparison struct {
	Trend    Trend         `json:"trend,omitempty"`
	Percent  float64       `json:"percent,omitempty"`  // number columns, absolute value
	Distance time.Duration `json:"distance,omitempty"` // date columns, absolute value
}

// CompareCells compares value with next for a column of type t.
// String columns, a missing neighbour and unreadable values give no comparison.
func CompareCells(value, next any, t ColumnType) Comparison {
	if isEmptyOperand(next) {
		return Comparison{}
	}

	switch t {
	case ColumnNumber:
		v, n := ToNumber(value), ToNumber(next)
		if math.IsNaN(v) || math.IsNaN(n) || n == 0 {
			return Comparison{}
		}
		diff := (v - n) / n * 100
		switch {
		case diff == 0:
			return Comparison{Trend: TrendFlat}
		case diff > 0:
			return Comparison{Trend: TrendUp, Percent: math.Abs(diff)}
		default:
			return Comparison{Trend: TrendDown, Percent: math.Abs(diff)}
		}

	case ColumnDate:
		v, ok := ToTime(value)
		n, nok := ToTime(next)
		if !ok || !nok {
			return Comparison{}
		}
		d := v.Sub(n)
		if v.After(n) {
			return Comparison{Trend: TrendUp, Distance: d}
		}
		return Comparison{Trend: TrendDown, Distance: -d}

	default:
		return Comparison{}
	}
}

// CompareRows fills one comparison per number or date column for each row,
// against the neighbour chosen by mode. Rows at the edge have no neighbour.
func CompareRows(rows []DisplayRow, columns []Column, mode ComparisonMode) []map[string]Comparison {
	if mode != ComparisonUp && mode != ComparisonDown {
		return nil
	}

	out := make([]map[string]Comparison, len(rows))
	for i, row := range rows {
		j := i + 1
		if mode == ComparisonDown {
			j = i - 1
		}
		if j < 0 || j >= len(rows) {
			continue
		}
		for _, col := range columns {
			if col.Type == ColumnString {
				continue
			}
			c := CompareCells(row.Values[col.ID], rows[j].Values[col.ID], col.Type)
			if c.Trend == TrendNone {
				continue
			}
			if out[i] == nil {
				out[i] = make(map[string]Comparison)
			}
			out[i][col.ID] = c
		}
	}
	return out
}
