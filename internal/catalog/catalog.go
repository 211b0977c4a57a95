// Package catalog loads grid declarations from a YAML file and turns them into
// registered grids with their row sources and forms.
package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/form"
)

// Source kinds.
const (
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
	SourceJSON     = "json"
	SourceCSV      = "csv"
	SourceMemory   = "memory"
)

// Catalog is the parsed catalog file.
type Catalog struct {
	Grids []Grid `koanf:"grids"`

	// dir is the directory of the catalog file. File sources resolve
	// relative paths against it.
	dir string
}

// Grid declares one grid.
type Grid struct {
	Key         string                `koanf:"key"`
	Group       string                `koanf:"group"`
	Label       string                `koanf:"label"`
	Description string                `koanf:"description"`
	IDField     string                `koanf:"id_field"`
	Source      Source                `koanf:"source"`
	Columns     []Column              `koanf:"columns"`
	Form        map[string]form.Field `koanf:"form"`
}

// Source declares where a grid reads its rows.
type Source struct {
	Type    string           `koanf:"type"`
	Table   string           `koanf:"table"`
	Path    string           `koanf:"path"`
	MaxRows int              `koanf:"max_rows"`
	Rows    []map[string]any `koanf:"rows"` // memory only
}

// Column declares one grid column. Hideable and Sortable default to true.
type Column struct {
	ID       string `koanf:"id"`
	Header   string `koanf:"header"`
	Type     string `koanf:"type"`
	DBColumn string `koanf:"db_column"`
	Hideable *bool  `koanf:"hideable"`
	Sortable *bool  `koanf:"sortable"`
}

// Load reads and validates the catalog at path.
func Load(path string) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}

	var cat Catalog
	if err := k.Unmarshal("", &cat); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	cat.dir = filepath.Dir(path)

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &cat, nil
}

// Validate checks every grid and returns all problems at once.
func (c *Catalog) Validate() error {
	var errs []string

	if len(c.Grids) == 0 {
		errs = append(errs, "no grids declared")
	}

	keys := make(map[string]bool, len(c.Grids))
	for i, g := range c.Grids {
		name := g.Key
		if name == "" {
			name = fmt.Sprintf("grids[%d]", i)
			errs = append(errs, name+": missing key")
		} else if keys[g.Key] {
			errs = append(errs, fmt.Sprintf("%s: duplicate key", name))
		}
		keys[g.Key] = true

		for _, msg := range g.problems() {
			errs = append(errs, name+": "+msg)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (g Grid) problems() []string {
	var errs []string

	switch g.Source.Type {
	case SourcePostgres, SourceSQLite:
		if g.Source.Table == "" {
			errs = append(errs, fmt.Sprintf("%s source needs a table", g.Source.Type))
		}
	case SourceJSON, SourceCSV:
		if g.Source.Path == "" {
			errs = append(errs, fmt.Sprintf("%s source needs a path", g.Source.Type))
		}
	case SourceMemory:
	case "":
		errs = append(errs, "missing source type")
	default:
		errs = append(errs, fmt.Sprintf("unknown source type %q", g.Source.Type))
	}
	if g.Source.MaxRows < 0 {
		errs = append(errs, "source max_rows must be non-negative")
	}

	if len(g.Columns) == 0 {
		errs = append(errs, "no columns")
	}
	seen := make(map[string]bool, len(g.Columns))
	hasID := false
	for i, col := range g.Columns {
		if col.ID == "" {
			errs = append(errs, fmt.Sprintf("column %d has no id", i))
			continue
		}
		if seen[col.ID] {
			errs = append(errs, fmt.Sprintf("duplicate column %s", col.ID))
		}
		seen[col.ID] = true
		if col.ID == g.idField() {
			hasID = true
		}
		if _, err := core.ParseColumnType(col.Type); err != nil {
			errs = append(errs, fmt.Sprintf("column %s: %v", col.ID, err))
		}
	}
	if len(g.Columns) > 0 && !hasID {
		errs = append(errs, fmt.Sprintf("id field %s is not a column", g.idField()))
	}

	if len(g.Form) > 0 {
		if _, err := form.Build(g.Form); err != nil {
			errs = append(errs, "form: "+err.Error())
		}
	}
	return errs
}

func (g Grid) idField() string {
	if g.IDField == "" {
		return core.DefaultIDField
	}
	return g.IDField
}

// columns converts the declared columns. Types were checked by Validate.
func (g Grid) columns() []core.Column {
	cols := make([]core.Column, 0, len(g.Columns))
	for _, c := range g.Columns {
		t, _ := core.ParseColumnType(c.Type)
		cols = append(cols, core.Column{
			ID:       c.ID,
			Header:   c.Header,
			Type:     t,
			DBColumn: c.DBColumn,
			Hideable: c.Hideable == nil || *c.Hideable,
			Sortable: c.Sortable == nil || *c.Sortable,
		})
	}
	return cols
}
