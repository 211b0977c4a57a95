package core

import "math"

// Aggregate calculates Sum, Avg, Min and Max for every number column over
// rows. Cells that are not numbers are skipped.
func Aggregate(rows []Row, columns []Column) Aggregations {
	result := make(Aggregations)
	for _, col := range columns {
		if col.Type != ColumnNumber {
			continue
		}

		agg := &ColumnAggregation{Column: col.ID}
		var sum, lo, hi float64
		for _, row := range rows {
			v := ToNumber(row[col.ID])
			if math.IsNaN(v) || math.IsInf(v, 0) || row[col.ID] == nil {
				continue
			}
			if agg.Count == 0 {
				lo, hi = v, v
			}
			sum += v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			agg.Count++
		}

		if agg.Count > 0 {
			avg := sum / float64(agg.Count)
			agg.Sum = &sum
			agg.Avg = &avg
			agg.Min = &lo
			agg.Max = &hi
		}
		result[col.ID] = agg
	}
	return result
}

// Stats summarises a numeric series for number cards.
type Stats struct {
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
	Average float64 `json:"average"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
}

// NumberStats returns the highest, lowest, average and total of values.
// An empty series yields zero stats.
func NumberStats(values []float64) Stats {
	var s Stats
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if s.Count == 0 {
			s.Highest, s.Lowest = v, v
		}
		s.Highest = math.Max(s.Highest, v)
		s.Lowest = math.Min(s.Lowest, v)
		s.Total += v
		s.Count++
	}
	if s.Count > 0 {
		s.Average = s.Total / float64(s.Count)
	}
	return s
}

// ColumnValues extracts the numeric values of one column, skipping cells
// that are not numbers.
func ColumnValues(rows []Row, column string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if row[column] == nil {
			continue
		}
		v := ToNumber(row[column])
		if math.IsNaN(v) {
			continue
		}
		values = append(values, v)
	}
	return values
}
