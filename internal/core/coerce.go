package core

// coerce.go turns raw cell values into the string, number and date forms the
// filter engine and the sorter compare.
//
// Cells arrive from several places:
//   - pgx rows (pgtype.Numeric, pgtype.Date, pgtype.Text, time.Time, int64, ...)
//   - database/sql rows ([]byte, int64, float64, time.Time)
//   - JSON documents (float64, json.Number, string, bool, nil)
//
// None of these functions fail. Unusable input yields NaN for numbers and
// ok=false for dates, which callers treat according to their own policy.

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are moved
// to the previous century.
var TwoDigitYearPivot = 20

var (
	isoLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// ToString renders a cell value as text. nil becomes the empty string.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case json.Number:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339)
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.Format(time.RFC3339)
	case pgtype.Text:
		if !val.Valid {
			return ""
		}
		return val.String
	case pgtype.Numeric:
		f := ToNumber(val)
		if math.IsNaN(f) {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case pgtype.Date:
		if !val.Valid {
			return ""
		}
		return val.Time.Format("2006-01-02")
	case pgtype.Timestamptz:
		if !val.Valid {
			return ""
		}
		return val.Time.Format(time.RFC3339)
	case pgtype.Timestamp:
		if !val.Valid {
			return ""
		}
		return val.Time.Format(time.RFC3339)
	case pgtype.Bool:
		if !val.Valid {
			return ""
		}
		return strconv.FormatBool(val.Bool)
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = ToString(p)
		}
		return strings.Join(parts, ",")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(v)
	}
}

// ToNumber converts a cell value to float64.
// Blank strings are 0, booleans are 1 or 0, and anything that cannot be read
// as a number (including nil) is NaN.
func ToNumber(v any) float64 {
	switch val := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		return parseNumber(val)
	case []byte:
		return parseNumber(string(val))
	case json.Number:
		return parseNumber(val.String())
	case pgtype.Numeric:
		if !val.Valid {
			return math.NaN()
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return math.NaN()
		}
		return f.Float64
	case pgtype.Int8:
		if !val.Valid {
			return math.NaN()
		}
		return float64(val.Int64)
	case pgtype.Int4:
		if !val.Valid {
			return math.NaN()
		}
		return float64(val.Int32)
	case pgtype.Int2:
		if !val.Valid {
			return math.NaN()
		}
		return float64(val.Int16)
	case pgtype.Float8:
		if !val.Valid {
			return math.NaN()
		}
		return val.Float64
	case pgtype.Float4:
		if !val.Valid {
			return math.NaN()
		}
		return float64(val.Float32)
	case pgtype.Text:
		if !val.Valid {
			return math.NaN()
		}
		return parseNumber(val.String)
	case time.Time:
		if val.IsZero() {
			return math.NaN()
		}
		return float64(val.UnixMilli())
	default:
		return math.NaN()
	}
}

// parseNumber reads a decimal number. Blank input is 0.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToTime converts a cell value to an instant.
// Strings without a zone are read as UTC. Integers are epoch milliseconds.
// Returns false when the value is not a usable date.
func ToTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return val, !val.IsZero()
	case *time.Time:
		if val == nil || val.IsZero() {
			return time.Time{}, false
		}
		return *val, true
	case string:
		return parseDate(val)
	case []byte:
		return parseDate(string(val))
	case pgtype.Date:
		if !val.Valid || val.InfinityModifier != pgtype.Finite {
			return time.Time{}, false
		}
		return val.Time, true
	case pgtype.Timestamptz:
		if !val.Valid || val.InfinityModifier != pgtype.Finite {
			return time.Time{}, false
		}
		return val.Time, true
	case pgtype.Timestamp:
		if !val.Valid || val.InfinityModifier != pgtype.Finite {
			return time.Time{}, false
		}
		return val.Time, true
	case pgtype.Text:
		if !val.Valid {
			return time.Time{}, false
		}
		return parseDate(val.String)
	case int, int32, int64, float64, float32, json.Number:
		ms := ToNumber(val)
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)).UTC(), true
	default:
		return time.Time{}, false
	}
}

// parseDate tries ISO-8601 first, then the loose layouts people type into
// spreadsheets, then 2-digit years with the pivot adjustment.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// isEmptyOperand reports whether a filter operand counts as "not set".
// Numeric zero is a real operand; nil, blank strings, false and NaN are not.
func isEmptyOperand(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return math.IsNaN(val)
	case float32:
		return math.IsNaN(float64(val))
	case json.Number:
		return val == ""
	case *time.Time:
		return val == nil
	default:
		return false
	}
}
