// Package core provides the grid logic: typed column filters, sorting, search,
// pagination, row pinning and bulk actions. It has no HTTP or rendering
// dependencies and can sit behind any frontend.
package core

import (
	"context"
	"fmt"
	"strings"
)

// ColumnType is the declared semantic type of a column's values.
// It decides which filter operators apply and how raw cells are coerced.
type ColumnType int

const (
	ColumnString ColumnType = iota
	ColumnNumber
	ColumnDate
)

// String returns the wire name of the column type.
func (t ColumnType) String() string {
	switch t {
	case ColumnString:
		return "string"
	case ColumnNumber:
		return "number"
	case ColumnDate:
		return "date"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ColumnType) UnmarshalText(b []byte) error {
	parsed, err := ParseColumnType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseColumnType converts "string", "number" or "date" into a ColumnType.
// "text" and "numeric" are accepted as aliases. An empty name is treated as
// "string", so catalog columns without a declared type are string columns.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "text":
		return ColumnString, nil
	case "number", "numeric":
		return ColumnNumber, nil
	case "date":
		return ColumnDate, nil
	default:
		return ColumnString, fmt.Errorf("invalid column type %q", s)
	}
}

// Operator is a comparison operator for column filters.
type Operator string

const (
	OpContains   Operator = "contains"
	OpEquals     Operator = "equals"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpGreater    Operator = "gt"
	OpGreaterEq  Operator = "gte"
	OpLess       Operator = "lt"
	OpLessEq     Operator = "lte"
	OpBetween    Operator = "between"
	OpBefore     Operator = "before"
	OpAfter      Operator = "after"
)

var operatorsByType = map[ColumnType][]Operator{
	ColumnString: {OpContains, OpEquals, OpStartsWith, OpEndsWith},
	ColumnNumber: {OpEquals, OpGreater, OpGreaterEq, OpLess, OpLessEq, OpBetween},
	ColumnDate:   {OpEquals, OpBefore, OpAfter, OpBetween},
}

// OperatorsFor returns the operators valid for a column type.
func OperatorsFor(t ColumnType) []Operator {
	ops := operatorsByType[t]
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// ValidOperator reports whether op applies to columns of type t.
func ValidOperator(op Operator, t ColumnType) bool {
	for _, candidate := range operatorsByType[t] {
		if candidate == op {
			return true
		}
	}
	return false
}

// FilterSpec is a single active filter on a column.
type FilterSpec struct {
	Operator      Operator `json:"operator"`
	Value         any      `json:"value"`
	ValueTo       any      `json:"valueTo,omitempty"`       // used by between only
	CaseSensitive bool     `json:"caseSensitive,omitempty"` // string operators only
}

// ColumnFilter binds a FilterSpec to a column.
type ColumnFilter struct {
	Column string
	Type   ColumnType
	Spec   FilterSpec
}

// SortSpec is a single sort column and direction.
type SortSpec struct {
	Column string `json:"column"`
	Dir    string `json:"dir"` // "asc" or "desc"
}

// MaxSortLevels caps the number of sort columns applied at once.
const MaxSortLevels = 2

// ActionsColumn is the id of the per-row actions column. It holds no data
// and is never exported.
const ActionsColumn = "actions"

// Column describes one grid column.
type Column struct {
	ID       string     `json:"id"`
	Header   string     `json:"header"`
	Type     ColumnType `json:"type"`
	DBColumn string     `json:"-"`
	Hideable bool       `json:"hideable"`
	Sortable bool       `json:"sortable"`
}

// Label returns the header text, falling back to the column id.
func (c Column) Label() string {
	if c.Header != "" {
		return c.Header
	}
	return c.ID
}

// Row is a single record keyed by column id.
type Row map[string]any

// DefaultIDField is the row identity key used when a grid does not declare one.
const DefaultIDField = "id"

// ID returns the row identity stored under field, formatted as a string.
func (r Row) ID(field string) string {
	if field == "" {
		field = DefaultIDField
	}
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	return ToString(v)
}

// DisplayRow is a row decorated with its per-request pin state.
// The underlying Row is shared with the source and must not be modified.
type DisplayRow struct {
	ID     string `json:"id"`
	Pinned bool   `json:"isPinned"`
	Values Row    `json:"values"`
}

// GridInfo contains display information about a grid.
type GridInfo struct {
	Key         string `json:"key"`
	Group       string `json:"group"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Source supplies the rows of a grid.
type Source interface {
	Load(ctx context.Context) ([]Row, error)
}

// Deleter is implemented by sources that can remove rows by identity.
type Deleter interface {
	Delete(ctx context.Context, ids []string) (int64, error)
}

// GridDefinition contains everything needed to serve a grid.
type GridDefinition struct {
	Info    GridInfo
	Columns []Column
	IDField string
	Source  Source
}

// Column returns the column with the given id.
func (d GridDefinition) Column(id string) (Column, bool) {
	for _, c := range d.Columns {
		if strings.EqualFold(c.ID, id) {
			return c, true
		}
	}
	return Column{}, false
}

// idField returns the configured identity field or the default.
func (d GridDefinition) idField() string {
	if d.IDField == "" {
		return DefaultIDField
	}
	return d.IDField
}

// ColumnAggregation holds aggregated values for a single number column.
type ColumnAggregation struct {
	Column string   `json:"column"`
	Sum    *float64 `json:"sum"` // nil if no valid values
	Avg    *float64 `json:"avg"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Count  int64    `json:"count"` // count of numeric values
}

// Aggregations maps column ids to their aggregation results.
type Aggregations map[string]*ColumnAggregation
