package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Query describes one request for grid rows.
type Query struct {
	Page     int
	PageSize int // zero uses the view's page size
	Sorts    []SortSpec
	Search   string
	Filters  map[string]FilterSpec // column id -> filter
}

// Result contains one page of grid rows.
type Result struct {
	Rows          []DisplayRow            `json:"rows"`
	Comparisons   []map[string]Comparison `json:"comparisons,omitempty"`
	TotalRows     int                     `json:"totalRows"`    // rows after filtering
	SourceRows    int                     `json:"sourceRows"`   // rows before filtering
	Page          int                     `json:"page"`
	PageSize      int                     `json:"pageSize"`
	TotalPages    int                     `json:"totalPages"`
	Sorts         []SortSpec              `json:"sorts"`
	Search        string                  `json:"search,omitempty"`
	ActiveFilters map[string]FilterSpec   `json:"activeFilters"`
	Aggregations  Aggregations            `json:"aggregations"`
	PinnedCount   int                     `json:"pinnedCount"`
	Columns       []Column                `json:"columns"` // visible columns
}

// Selection is the filtered and sorted row set of a view, before paging.
type Selection struct {
	Grid    GridDefinition
	View    View
	Rows    []Row
	Total   int
	Sorts   []SortSpec
	Filters []ColumnFilter
}

// normalizeFilters drops filters on unknown columns and resolves column
// types. Filters whose operator does not fit the column are kept: the filter
// engine passes them, and they stay visible in ActiveFilters.
func normalizeFilters(def GridDefinition, filters map[string]FilterSpec) []ColumnFilter {
	out := make([]ColumnFilter, 0, len(filters))
	for name, spec := range filters {
		col, ok := def.Column(name)
		if !ok || col.ID == ActionsColumn {
			continue
		}
		out = append(out, ColumnFilter{Column: col.ID, Type: col.Type, Spec: spec})
	}
	return out
}

// Select loads a view's rows and applies filters, search and sorting.
func (s *Service) Select(ctx context.Context, viewID string, q Query) (*Selection, error) {
	view, err := s.View(viewID)
	if err != nil {
		return nil, err
	}
	def, err := s.Grid(view.GridKey)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := def.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}

	filters := normalizeFilters(def, q.Filters)
	kept := make([]Row, 0, len(rows))
	for _, row := range rows {
		if !MatchesAll(row, filters) {
			continue
		}
		if !matchesSearch(def, row, q.Search) {
			continue
		}
		kept = append(kept, row)
	}

	sorts := normalizeSorts(def, q.Sorts)
	SortRows(def, kept, sorts)

	slog.Debug("grid rows selected",
		"grid", def.Info.Key,
		"view_id", viewID,
		"source_rows", len(rows),
		"kept", len(kept),
		"filters", len(filters),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Selection{
		Grid:    def,
		View:    view,
		Rows:    kept,
		Total:   len(rows),
		Sorts:   sorts,
		Filters: filters,
	}, nil
}

// Rows returns one page of a view's rows with pinned rows first.
func (s *Service) Rows(ctx context.Context, viewID string, q Query) (*Result, error) {
	sel, err := s.Select(ctx, viewID, q)
	if err != nil {
		return nil, err
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = sel.View.PageSize
	}
	if pageSize > s.opts.MaxPageSize {
		pageSize = s.opts.MaxPageSize
	}
	if pageSize <= 0 {
		pageSize = s.opts.DefaultPageSize
	}

	totalRows := len(sel.Rows)
	totalPages := (totalRows + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * pageSize
	end := offset + pageSize
	if end > totalRows {
		end = totalRows
	}

	visible := sel.View.Pinned.Compose(sel.Rows[offset:end], sel.Grid.idField())

	activeFilters := make(map[string]FilterSpec, len(sel.Filters))
	for _, f := range sel.Filters {
		activeFilters[f.Column] = f.Spec
	}

	columns := sel.View.VisibleColumns(sel.Grid)

	return &Result{
		Rows:          visible,
		Comparisons:   CompareRows(visible, columns, sel.View.Comparison),
		TotalRows:     totalRows,
		SourceRows:    sel.Total,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages,
		Sorts:         sel.Sorts,
		Search:        q.Search,
		ActiveFilters: activeFilters,
		Aggregations:  Aggregate(sel.Rows, sel.Grid.Columns),
		PinnedCount:   sel.View.Pinned.Count(),
		Columns:       columns,
	}, nil
}

// ColumnStats returns number-card statistics for one number column of the
// view's filtered rows.
func (s *Service) ColumnStats(ctx context.Context, viewID, column string, q Query) (Stats, error) {
	sel, err := s.Select(ctx, viewID, q)
	if err != nil {
		return Stats{}, err
	}
	col, ok := sel.Grid.Column(column)
	if !ok {
		return Stats{}, fmt.Errorf("column not found: %s", column)
	}
	if col.Type != ColumnNumber {
		return Stats{}, fmt.Errorf("column %s is not a number column", col.ID)
	}
	return NumberStats(ColumnValues(sel.Rows, col.ID)), nil
}
