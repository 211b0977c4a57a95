package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/export"
)

type exportFlags struct {
	format        string
	outDir        string
	fields        []string
	filters       []string
	filtersTo     []string
	caseSensitive []string
	sorts         []string
	search        string
	maxRows       int
}

func newExportCommand(opts *options) *cobra.Command {
	f := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export <grid>",
		Short: "Export a grid's filtered rows to XLSX or CSV",
		Long: `Export writes the rows of one grid that pass every filter to a file named
<label>_<yyyy-MM-dd_HH-mm>.<format> in the output directory.

Filters use the same operators as the API:
  string  contains, equals, startsWith, endsWith
  number  equals, gt, gte, lt, lte, between
  date    equals, before, after, between`,
		Example: `  # Customers with a balance between 100 and 500, as XLSX
  gridctl export customers --filter balance=between:100 --filter-to balance=500

  # Selected columns as CSV, sorted by name
  gridctl export customers --format csv --fields name,balance --sort name:desc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, f, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.format, "format", "f", "xlsx", "output format (xlsx|csv)")
	flags.StringVarP(&f.outDir, "out", "o", ".", "output directory")
	flags.StringSliceVar(&f.fields, "fields", nil, "columns to export (default: all)")
	flags.StringArrayVar(&f.filters, "filter", nil, "column filter as column=operator:value (repeatable)")
	flags.StringArrayVar(&f.filtersTo, "filter-to", nil, "upper bound of a between filter as column=value")
	flags.StringSliceVar(&f.caseSensitive, "case-sensitive", nil, "columns whose string filters match case")
	flags.StringSliceVar(&f.sorts, "sort", nil, "sort as column[:desc], up to two levels")
	flags.StringVar(&f.search, "search", "", "keep rows where any string column contains this text")
	flags.IntVar(&f.maxRows, "max-rows", 0, "fail when more rows match (0: no limit)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"xlsx", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, opts *options, f *exportFlags, gridKey string) error {
	format := strings.ToLower(f.format)
	if format != "xlsx" && format != "csv" {
		return fmt.Errorf("unsupported format %q", f.format)
	}

	ctx := cmd.Context()
	svc, _, cleanup, err := opts.openService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	def, err := svc.Grid(gridKey)
	if err != nil {
		return err
	}
	filters, err := parseFilterFlags(def, f.filters, f.filtersTo, f.caseSensitive)
	if err != nil {
		return err
	}

	view, err := svc.NewView(gridKey)
	if err != nil {
		return err
	}
	defer func() { _ = svc.CloseView(view.ID) }()

	sel, err := svc.Select(ctx, view.ID, core.Query{
		Sorts:   parseSortFlags(f.sorts),
		Search:  f.search,
		Filters: filters,
	})
	if err != nil {
		return err
	}

	path := filepath.Join(f.outDir, export.TimestampedFilename(def.Info.Label, format, time.Now()))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	exportOpts := export.Options{Fields: f.fields, MaxRows: f.maxRows}
	w := bufio.NewWriter(file)
	if format == "xlsx" {
		err = export.XLSX(w, def.Columns, sel.Rows, exportOpts)
	} else {
		err = export.CSV(w, def.Columns, sel.Rows, exportOpts)
	}
	if err == nil {
		err = w.Flush()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("export %s: %w", gridKey, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d of %d rows to %s\n", len(sel.Rows), sel.Total, path)
	return nil
}

// parseFilterFlags turns column=operator:value flags into filters. Unlike the
// HTTP API, mistakes are reported instead of skipped.
func parseFilterFlags(def core.GridDefinition, filters, filtersTo, caseSensitive []string) (map[string]core.FilterSpec, error) {
	out := make(map[string]core.FilterSpec, len(filters))

	for _, raw := range filters {
		name, expr, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("filter %q: want column=operator:value", raw)
		}
		col, ok := def.Column(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("filter %q: column not found: %s", raw, name)
		}
		op, value, ok := strings.Cut(expr, ":")
		if !ok {
			return nil, fmt.Errorf("filter %q: want column=operator:value", raw)
		}
		operator := core.Operator(op)
		if !core.ValidOperator(operator, col.Type) {
			return nil, fmt.Errorf("filter %q: operator %s does not apply to %s columns (use %v)",
				raw, op, col.Type, core.OperatorsFor(col.Type))
		}
		out[col.ID] = core.FilterSpec{Operator: operator, Value: value}
	}

	for _, raw := range filtersTo {
		name, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("filter-to %q: want column=value", raw)
		}
		col, ok := def.Column(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("filter-to %q: column not found: %s", raw, name)
		}
		spec, ok := out[col.ID]
		if !ok || spec.Operator != core.OpBetween {
			return nil, fmt.Errorf("filter-to %q: column %s has no between filter", raw, col.ID)
		}
		spec.ValueTo = value
		out[col.ID] = spec
	}

	for _, name := range caseSensitive {
		col, ok := def.Column(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("case-sensitive: column not found: %s", name)
		}
		if spec, ok := out[col.ID]; ok {
			spec.CaseSensitive = true
			out[col.ID] = spec
		}
	}

	return out, nil
}

// parseSortFlags reads column[:desc] flags, keeping the first two.
func parseSortFlags(flags []string) []core.SortSpec {
	var sorts []core.SortSpec
	for _, raw := range flags {
		col, dir, _ := strings.Cut(strings.TrimSpace(raw), ":")
		if col == "" {
			continue
		}
		if dir != "desc" {
			dir = "asc"
		}
		sorts = append(sorts, core.SortSpec{Column: col, Dir: dir})
		if len(sorts) == core.MaxSortLevels {
			break
		}
	}
	return sorts
}
