package core

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// normalizeSorts keeps sorts that name a sortable column, fixes their
// direction and caps them at MaxSortLevels.
func normalizeSorts(def GridDefinition, sorts []SortSpec) []SortSpec {
	var valid []SortSpec
	for _, s := range sorts {
		if s.Column == "" {
			continue
		}
		col, ok := def.Column(s.Column)
		if !ok || !col.Sortable {
			continue
		}
		dir := strings.ToLower(s.Dir)
		if dir != "asc" && dir != "desc" {
			dir = "asc"
		}
		valid = append(valid, SortSpec{Column: col.ID, Dir: dir})
		if len(valid) >= MaxSortLevels {
			break
		}
	}
	return valid
}

// SortRows stable-sorts rows in place by the given sorts.
// Sorts must already be normalized against def. Values that cannot be read
// for the column's type sort last regardless of direction.
func SortRows(def GridDefinition, rows []Row, sorts []SortSpec) {
	if len(sorts) == 0 {
		return
	}

	types := make([]ColumnType, len(sorts))
	for i, s := range sorts {
		col, _ := def.Column(s.Column)
		types[i] = col.Type
	}

	slices.SortStableFunc(rows, func(a, b Row) int {
		for i, s := range sorts {
			c, missing := compareCells(a[s.Column], b[s.Column], types[i])
			if c == 0 {
				continue
			}
			if s.Dir == "desc" && !missing {
				c = -c
			}
			return c
		}
		return 0
	})
}

// compareCells compares two cells of the given type. The second result is
// true when the order was decided by one side being unreadable.
func compareCells(a, b any, t ColumnType) (int, bool) {
	switch t {
	case ColumnNumber:
		x, y := ToNumber(a), ToNumber(b)
		xNaN, yNaN := math.IsNaN(x), math.IsNaN(y)
		switch {
		case xNaN && yNaN:
			return 0, true
		case xNaN:
			return 1, true
		case yNaN:
			return -1, true
		}
		return cmp.Compare(x, y), false

	case ColumnDate:
		x, xok := ToTime(a)
		y, yok := ToTime(b)
		switch {
		case !xok && !yok:
			return 0, true
		case !xok:
			return 1, true
		case !yok:
			return -1, true
		}
		return x.Compare(y), false

	default:
		if a == nil && b == nil {
			return 0, true
		}
		if a == nil {
			return 1, true
		}
		if b == nil {
			return -1, true
		}
		x, y := ToString(a), ToString(b)
		if c := strings.Compare(strings.ToLower(x), strings.ToLower(y)); c != 0 {
			return c, false
		}
		return strings.Compare(x, y), false
	}
}
