package core

import "strings"

// matchesSearch reports whether any string column of row contains query,
// ignoring case. An empty query matches everything.
func matchesSearch(def GridDefinition, row Row, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	needle := strings.ToLower(query)
	for _, col := range def.Columns {
		if col.Type != ColumnString || col.ID == ActionsColumn {
			continue
		}
		if strings.Contains(strings.ToLower(ToString(row[col.ID])), needle) {
			return true
		}
	}
	return false
}
