package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// peopleGrid returns a grid over a fixed set of rows for sort and search
// tests. Its source is never loaded.
func peopleGrid() GridDefinition {
	return GridDefinition{
		Info: GridInfo{Key: "people"},
		Columns: []Column{
			{ID: "id", Type: ColumnString},
			{ID: "name", Type: ColumnString, Sortable: true},
			{ID: "team", Type: ColumnString, Sortable: true},
			{ID: "score", Type: ColumnNumber, Sortable: true},
			{ID: "joined", Type: ColumnDate, Sortable: true},
			{ID: "notes", Type: ColumnString},
			{ID: ActionsColumn, Type: ColumnString},
		},
	}
}

func peopleRows() []Row {
	return []Row{
		{"id": "1", "name": "carol", "team": "red", "score": 30, "joined": "2023-03-01"},
		{"id": "2", "name": "Alice", "team": "blue", "score": nil, "joined": "2021-01-01"},
		{"id": "3", "name": "bob", "team": "red", "score": 10, "joined": "bad date"},
		{"id": "4", "name": "dave", "team": "blue", "score": 20, "joined": "2022-06-15", "notes": "Team Lead"},
	}
}

func rowIDs(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID("id")
	}
	return out
}

func TestSortRows(t *testing.T) {
	tests := []struct {
		name  string
		sorts []SortSpec
		want  []string
	}{
		{"no sorts keeps order", nil, []string{"1", "2", "3", "4"}},
		{"string asc ignores case", []SortSpec{{Column: "name", Dir: "asc"}}, []string{"2", "3", "1", "4"}},
		{"string desc", []SortSpec{{Column: "name", Dir: "desc"}}, []string{"4", "1", "3", "2"}},
		{"number asc missing last", []SortSpec{{Column: "score", Dir: "asc"}}, []string{"3", "4", "1", "2"}},
		{"number desc missing last", []SortSpec{{Column: "score", Dir: "desc"}}, []string{"1", "4", "3", "2"}},
		{"date asc invalid last", []SortSpec{{Column: "joined", Dir: "asc"}}, []string{"2", "4", "1", "3"}},
		{"two levels", []SortSpec{{Column: "team", Dir: "asc"}, {Column: "score", Dir: "desc"}}, []string{"4", "2", "1", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := peopleGrid()
			rows := peopleRows()
			SortRows(def, rows, normalizeSorts(def, tt.sorts))
			if diff := cmp.Diff(tt.want, rowIDs(rows)); diff != "" {
				t.Errorf("SortRows() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeSorts(t *testing.T) {
	def := peopleGrid()
	got := normalizeSorts(def, []SortSpec{
		{Column: "notes", Dir: "asc"}, // not sortable
		{Column: "missing", Dir: "asc"},
		{Column: "NAME", Dir: "sideways"},
		{Column: "score", Dir: "DESC"},
		{Column: "team", Dir: "asc"}, // over the limit
	})

	want := []SortSpec{
		{Column: "name", Dir: "asc"},
		{Column: "score", Dir: "desc"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalizeSorts() mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchesSearch(t *testing.T) {
	def := peopleGrid()
	rows := peopleRows()

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3", "4"}},
		{"  ", []string{"1", "2", "3", "4"}},
		{"ALICE", []string{"2"}},
		{"lead", []string{"4"}},
		{"re", []string{"1", "3"}},
		{"30", nil}, // number columns are not searched
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []string
			for _, row := range rows {
				if matchesSearch(def, row, tt.query) {
					got = append(got, row.ID("id"))
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("matchesSearch(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}
