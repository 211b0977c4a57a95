package web

// handlers_common.go holds request parsing shared by the handlers.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// maxBodySize caps JSON request bodies (1MB).
const maxBodySize = 1 << 20

// decodeJSON reads a JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseSorts parses comma-separated sort and dir parameters.
func parseSorts(r *http.Request) []core.SortSpec {
	sortStr := r.URL.Query().Get("sort")
	dirStr := r.URL.Query().Get("dir")

	if sortStr == "" {
		return nil
	}

	cols := strings.Split(sortStr, ",")
	dirs := strings.Split(dirStr, ",")

	var sorts []core.SortSpec
	for i, col := range cols {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		dir := "asc"
		if i < len(dirs) && strings.TrimSpace(dirs[i]) == "desc" {
			dir = "desc"
		}
		sorts = append(sorts, core.SortSpec{Column: col, Dir: dir})
		if len(sorts) >= core.MaxSortLevels {
			break
		}
	}
	return sorts
}

// bracketKey returns the name inside "prefix[name]", or "".
func bracketKey(key, prefix string) string {
	if !strings.HasPrefix(key, prefix+"[") || !strings.HasSuffix(key, "]") {
		return ""
	}
	return key[len(prefix)+1 : len(key)-1]
}

// parseFilters reads column filters from the query string:
//
//	filter[col]=op:value    operator and value
//	filter_to[col]=value    upper bound for between
//	filter_cs[col]=true     case-sensitive string match
//
// Filters on unknown columns, with a blank value or with an operator the
// column type does not offer are skipped.
func parseFilters(r *http.Request, def core.GridDefinition) map[string]core.FilterSpec {
	query := r.URL.Query()
	filters := make(map[string]core.FilterSpec)

	for key, values := range query {
		name := bracketKey(key, "filter")
		if name == "" || len(values) == 0 {
			continue
		}
		col, ok := def.Column(name)
		if !ok || col.ID == core.ActionsColumn {
			continue
		}

		op, value, found := strings.Cut(values[0], ":")
		if !found || value == "" {
			continue
		}
		operator := core.Operator(op)
		if !core.ValidOperator(operator, col.Type) {
			continue
		}

		spec := core.FilterSpec{Operator: operator, Value: value}
		if to := query.Get("filter_to[" + name + "]"); to != "" {
			spec.ValueTo = to
		}
		if cs, err := strconv.ParseBool(query.Get("filter_cs[" + name + "]")); err == nil {
			spec.CaseSensitive = cs
		}
		filters[col.ID] = spec
	}

	return filters
}

// parseQuery builds a core.Query from the request's query string.
func parseQuery(r *http.Request, def core.GridDefinition) core.Query {
	return core.Query{
		Page:     parseIntParam(r, "page", 1),
		PageSize: parseIntParam(r, "pageSize", 0),
		Sorts:    parseSorts(r),
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		Filters:  parseFilters(r, def),
	}
}

// parseFields reads the comma-separated fields parameter.
func parseFields(r *http.Request) []string {
	raw := r.URL.Query().Get("fields")
	if raw == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// viewGrid resolves the view in the URL and the grid it shows.
func (s *Server) viewGrid(r *http.Request) (core.View, core.GridDefinition, error) {
	view, err := s.service.View(chi.URLParam(r, "viewID"))
	if err != nil {
		return core.View{}, core.GridDefinition{}, err
	}
	def, err := s.service.Grid(view.GridKey)
	if err != nil {
		return core.View{}, core.GridDefinition{}, err
	}
	return view, def, nil
}
