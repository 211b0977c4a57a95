package catalog

import (
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/form"
	"github.com/JonMunkholm/gridkit/internal/source"
)

// Deps holds the connections database-backed sources read from. A nil
// connection makes grids of that kind fail to build.
type Deps struct {
	Postgres source.DBTX
	SQL      *sql.DB
}

// Forms maps grid keys to their form schemas.
type Forms map[string]*form.Schema

// Get returns the form of a grid.
func (f Forms) Get(gridKey string) (*form.Schema, bool) {
	s, ok := f[gridKey]
	return s, ok
}

// Definitions builds a grid definition for every declared grid.
func (c *Catalog) Definitions(deps Deps) ([]core.GridDefinition, error) {
	defs := make([]core.GridDefinition, 0, len(c.Grids))
	for _, g := range c.Grids {
		src, err := c.source(g, deps)
		if err != nil {
			return nil, fmt.Errorf("grid %s: %w", g.Key, err)
		}
		defs = append(defs, core.GridDefinition{
			Info: core.GridInfo{
				Key:         g.Key,
				Group:       g.Group,
				Label:       g.Label,
				Description: g.Description,
			},
			Columns: g.columns(),
			IDField: g.IDField,
			Source:  src,
		})
	}
	return defs, nil
}

// Forms builds the form schema of every grid that declares one.
func (c *Catalog) Forms() (Forms, error) {
	forms := make(Forms)
	for _, g := range c.Grids {
		if len(g.Form) == 0 {
			continue
		}
		schema, err := form.Build(g.Form)
		if err != nil {
			return nil, fmt.Errorf("grid %s form: %w", g.Key, err)
		}
		forms[g.Key] = schema
	}
	return forms, nil
}

// Register builds every grid and adds it to reg, then returns the forms.
func (c *Catalog) Register(reg *core.Registry, deps Deps) (Forms, error) {
	defs, err := c.Definitions(deps)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return nil, err
		}
		slog.Debug("grid registered",
			"grid", def.Info.Key,
			"group", def.Info.Group,
			"columns", len(def.Columns),
		)
	}

	forms, err := c.Forms()
	if err != nil {
		return nil, err
	}
	slog.Info("catalog registered", "grids", len(defs), "forms", len(forms))
	return forms, nil
}

func (c *Catalog) source(g Grid, deps Deps) (core.Source, error) {
	table := source.Table{
		Name:    g.Source.Table,
		Columns: g.columns(),
		IDField: g.IDField,
		MaxRows: g.Source.MaxRows,
	}

	switch g.Source.Type {
	case SourcePostgres:
		if deps.Postgres == nil {
			return nil, fmt.Errorf("postgres source needs a database connection")
		}
		return source.NewPostgres(deps.Postgres, table)
	case SourceSQLite:
		if deps.SQL == nil {
			return nil, fmt.Errorf("sqlite source needs a database connection")
		}
		return source.NewSQL(deps.SQL, table)
	case SourceJSON:
		return source.NewJSONFile(c.resolve(g.Source.Path)), nil
	case SourceCSV:
		return source.NewCSVFile(c.resolve(g.Source.Path), g.columns()), nil
	case SourceMemory:
		rows := make([]core.Row, len(g.Source.Rows))
		for i, r := range g.Source.Rows {
			rows[i] = core.Row(r)
		}
		return source.NewMemory(g.IDField, rows), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", g.Source.Type)
	}
}

func (c *Catalog) resolve(path string) string {
	if filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}
