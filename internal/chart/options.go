// Package chart builds ECharts option documents from grid rows. Rendering is
// left to the browser.
package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// Type is a chart kind.
type Type string

const (
	Line    Type = "line"
	Bar     Type = "bar"
	Pie     Type = "pie"
	Scatter Type = "scatter"
	Gauge   Type = "gauge"
)

// ParseType validates a chart type name.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case Line, Bar, Pie, Scatter, Gauge:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported chart type %q", s)
	}
}

// DateLabel is the layout used for date values on a category axis.
const DateLabel = "Jan 2, 2006"

// DefaultSymbolSize is the scatter point size without a size field.
const DefaultSymbolSize = 20

// Config selects the row fields a chart plots.
type Config struct {
	Title      string   `json:"title"`
	ShowLegend bool     `json:"showLegend"`
	XAxis      string   `json:"xAxis"`
	YAxis      string   `json:"yAxis"`
	Stack      bool     `json:"stack"`
	LabelField string   `json:"labelField"`
	ValueField string   `json:"valueField"`
	SizeField  string   `json:"sizeField"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
}

// Option is an ECharts option document.
type Option struct {
	Title   Title    `json:"title"`
	Tooltip Tooltip  `json:"tooltip"`
	Legend  Legend   `json:"legend"`
	XAxis   *Axis    `json:"xAxis,omitempty"`
	YAxis   *Axis    `json:"yAxis,omitempty"`
	Series  []Series `json:"series,omitempty"`
}

// Title is the chart heading.
type Title struct {
	Text string `json:"text"`
	Left string `json:"left"`
}

// Tooltip configures the hover tooltip.
type Tooltip struct {
	Trigger     string      `json:"trigger"`
	AxisPointer AxisPointer `json:"axisPointer"`
}

// AxisPointer is the tooltip's axis indicator.
type AxisPointer struct {
	Type string `json:"type"`
}

// Legend configures the series legend.
type Legend struct {
	Show   bool   `json:"show"`
	Bottom string `json:"bottom"`
}

// Axis is an x or y axis. Category axes carry their labels in Data.
type Axis struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Data []any  `json:"data,omitempty"`
}

// Series is one data series. Data holds numbers, NamedValues or Points
// depending on the chart type.
type Series struct {
	Name       string    `json:"name,omitempty"`
	Type       Type      `json:"type"`
	Stack      string    `json:"stack,omitempty"`
	Radius     string    `json:"radius,omitempty"`
	SymbolSize any       `json:"symbolSize,omitempty"`
	Min        *float64  `json:"min,omitempty"`
	Max        *float64  `json:"max,omitempty"`
	Data       any       `json:"data"`
	Emphasis   *Emphasis `json:"emphasis,omitempty"`
}

// Emphasis styles a hovered series item.
type Emphasis struct {
	Focus     string     `json:"focus,omitempty"`
	ItemStyle *ItemStyle `json:"itemStyle,omitempty"`
}

// ItemStyle is the shadow drawn on an emphasized item.
type ItemStyle struct {
	ShadowBlur    int    `json:"shadowBlur"`
	ShadowOffsetX int    `json:"shadowOffsetX"`
	ShadowColor   string `json:"shadowColor"`
}

// NamedValue is a pie or gauge data item.
type NamedValue struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

// Point is a scatter data item with its own symbol size.
type Point struct {
	Value      [2]*float64 `json:"value"`
	SymbolSize float64     `json:"symbolSize"`
}

// Options builds the option document for a chart of type t over rows.
// An unknown type yields the shared title, tooltip and legend only.
func Options(t Type, rows []core.Row, cfg Config) *Option {
	opt := &Option{
		Title:   Title{Text: cfg.Title, Left: "center"},
		Tooltip: Tooltip{Trigger: "axis", AxisPointer: AxisPointer{Type: "shadow"}},
		Legend:  Legend{Show: cfg.ShowLegend, Bottom: "5%"},
	}

	switch t {
	case Line, Bar:
		categories := make([]any, len(rows))
		values := make([]*float64, len(rows))
		for i, row := range rows {
			categories[i] = categoryLabel(row[cfg.XAxis])
			values[i] = number(row[cfg.YAxis])
		}
		s := Series{
			Name:     cfg.YAxis,
			Type:     t,
			Data:     values,
			Emphasis: &Emphasis{Focus: "series"},
		}
		if cfg.Stack {
			s.Stack = "total"
		}
		opt.XAxis = &Axis{Type: "category", Data: categories}
		opt.YAxis = &Axis{Type: "value"}
		opt.Series = []Series{s}

	case Pie:
		items := make([]NamedValue, len(rows))
		for i, row := range rows {
			items[i] = NamedValue{Name: core.ToString(row[cfg.LabelField]), Value: number(row[cfg.ValueField])}
		}
		opt.Series = []Series{{
			Name:   cfg.ValueField,
			Type:   Pie,
			Radius: "50%",
			Data:   items,
			Emphasis: &Emphasis{ItemStyle: &ItemStyle{
				ShadowBlur:  10,
				ShadowColor: "rgba(0, 0, 0, 0.5)",
			}},
		}}

	case Scatter:
		points := make([]Point, len(rows))
		for i, row := range rows {
			size := float64(DefaultSymbolSize)
			if cfg.SizeField != "" {
				size = 0
				if v := number(row[cfg.SizeField]); v != nil {
					size = *v * DefaultSymbolSize
				}
			}
			points[i] = Point{
				Value:      [2]*float64{number(row[cfg.XAxis]), number(row[cfg.YAxis])},
				SymbolSize: size,
			}
		}
		opt.XAxis = &Axis{Type: "value", Name: cfg.XAxis}
		opt.YAxis = &Axis{Type: "value", Name: cfg.YAxis}
		opt.Series = []Series{{
			Type:     Scatter,
			Data:     points,
			Emphasis: &Emphasis{Focus: "series"},
		}}

	case Gauge:
		stats := core.NumberStats(core.ColumnValues(rows, cfg.ValueField))
		avg := stats.Average
		opt.Series = []Series{{
			Type: Gauge,
			Min:  cfg.Min,
			Max:  cfg.Max,
			Data: []NamedValue{{Name: cfg.ValueField, Value: &avg}},
		}}
	}

	return opt
}

// categoryLabel formats date values for a category axis and passes other
// values through unchanged.
func categoryLabel(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.Format(DateLabel)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.Format(DateLabel)
	case pgtype.Date, pgtype.Timestamptz, pgtype.Timestamp:
		if t, ok := core.ToTime(val); ok {
			return t.Format(DateLabel)
		}
		return nil
	case pgtype.Text, pgtype.Numeric, []byte:
		return core.ToString(val)
	default:
		return v
	}
}

// number returns a pointer to the numeric value of v, or nil when v is not
// a number. Nil encodes as a gap in the series.
func number(v any) *float64 {
	if v == nil {
		return nil
	}
	f := core.ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
