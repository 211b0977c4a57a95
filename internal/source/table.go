// Package source provides the row sources grids read from: PostgreSQL
// tables, database/sql tables, JSON and CSV files, and in-memory rows.
package source

import (
	"fmt"
	"math"
	"strings"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// Table names a database table and the grid columns read from it.
type Table struct {
	Name    string
	Columns []core.Column
	IDField string // column id holding row identity, defaults to "id"
	MaxRows int    // zero means no limit
}

func (t Table) validate() error {
	if t.Name == "" {
		return fmt.Errorf("table source: missing table name")
	}
	if len(t.dataColumns()) == 0 {
		return fmt.Errorf("table source %s: no columns", t.Name)
	}
	return nil
}

// dataColumns returns the columns backed by a database column.
func (t Table) dataColumns() []core.Column {
	cols := make([]core.Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.ID == core.ActionsColumn {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// idColumn returns the database column holding row identity.
func (t Table) idColumn() string {
	field := t.IDField
	if field == "" {
		field = core.DefaultIDField
	}
	for _, c := range t.Columns {
		if c.ID == field {
			return dbColumn(c)
		}
	}
	return field
}

func dbColumn(c core.Column) string {
	if c.DBColumn != "" {
		return c.DBColumn
	}
	return c.ID
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
// Dotted names are quoted per part so schema-qualified tables work.
func quoteIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// selectList returns the quoted column list for a SELECT.
func (t Table) selectList() string {
	cols := t.dataColumns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdentifier(dbColumn(c))
	}
	return strings.Join(quoted, ", ")
}

// toRow maps scanned values, in dataColumns order, to a row keyed by column id.
func (t Table) toRow(values []any) core.Row {
	cols := t.dataColumns()
	row := make(core.Row, len(cols))
	for i, c := range cols {
		if i >= len(values) {
			break
		}
		v := values[i]
		switch val := v.(type) {
		case []byte:
			v = string(val)
		case float64:
			// NaN and infinities have no JSON form.
			if math.IsNaN(val) || math.IsInf(val, 0) {
				v = nil
			}
		}
		row[c.ID] = v
	}
	return row
}
