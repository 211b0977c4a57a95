// Package export writes grid rows to spreadsheet and CSV downloads.
package export

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// DateLayout is how date cells are written.
const DateLayout = "Jan 2, 2006"

// Columns picks the columns to export. When fields is non-empty it keeps the
// listed columns, otherwise the columns not in hidden. Grid order is kept and
// the actions column is always dropped.
func Columns(cols []core.Column, fields []string, hidden map[string]bool) []core.Column {
	selected := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			selected[f] = true
		}
	}

	out := make([]core.Column, 0, len(cols))
	for _, c := range cols {
		if c.ID == core.ActionsColumn {
			continue
		}
		if len(selected) > 0 {
			if !selected[c.ID] {
				continue
			}
		} else if hidden[c.ID] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// CellValue converts a raw cell into the value written to a spreadsheet.
// Numbers stay numeric, dates become text in DateLayout, lists are joined
// with ", " and nil is empty.
func CellValue(v any, t core.ColumnType) any {
	switch val := v.(type) {
	case nil:
		return ""
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		f := core.ToNumber(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ""
		}
		return f
	case json.Number, pgtype.Numeric, pgtype.Int2, pgtype.Int4, pgtype.Int8, pgtype.Float4, pgtype.Float8:
		f := core.ToNumber(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return core.ToString(val)
		}
		return f
	case bool:
		return yesNo(val)
	case pgtype.Bool:
		if !val.Valid {
			return ""
		}
		return yesNo(val.Bool)
	case time.Time, *time.Time, pgtype.Date, pgtype.Timestamp, pgtype.Timestamptz:
		if ts, ok := core.ToTime(val); ok {
			return ts.Format(DateLayout)
		}
		return ""
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = CellText(p, core.ColumnString)
		}
		return strings.Join(parts, ", ")
	case string:
		if t == core.ColumnDate {
			if ts, ok := core.ToTime(val); ok {
				return ts.Format(DateLayout)
			}
		}
		return val
	default:
		return core.ToString(val)
	}
}

// CellText is CellValue rendered as text.
func CellText(v any, t core.ColumnType) string {
	switch val := CellValue(v, t).(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	default:
		return core.ToString(val)
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
