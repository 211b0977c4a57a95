// Package core provides the grid engine: filtering, sorting, paging, pinning
// and bulk actions over rows loaded from pluggable sources.
//
// The package holds no transport or storage code. The HTTP server, the CLI
// and tests drive it through [Service].
//
// # Architecture
//
//   - Grid Definitions: registered in a [Registry]; each [GridDefinition] names
//     its columns, identity field and [Source].
//   - Service: opens views, answers row queries and runs bulk actions.
//   - Views: per-client state (pinned rows, hidden columns, display settings)
//     that expires after a period of inactivity.
//
// # Registering Grids
//
//	reg := core.NewRegistry()
//	err := reg.Register(core.GridDefinition{
//	    Info:    core.GridInfo{Key: "customers", Group: "Sales"},
//	    Columns: []core.Column{
//	        {ID: "name", Type: core.ColumnString, Sortable: true},
//	        {ID: "balance", Type: core.ColumnNumber, Sortable: true},
//	    },
//	    Source: src,
//	})
//
// # Filtering
//
// Filters fail open: a filter with an empty or unreadable operand, or with an
// operator the column type does not offer, keeps every row. A cell that
// cannot be read as the column type compares false against the filter.
//
// # Pinning
//
// Pinned rows are moved to the top of the page they appear on. Pinning never
// pulls rows in from other pages; see [PinnedSet.Compose].
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Codes
// are grouped by area:
//
//   - GRID001-GRID005: grids, views and bulk actions
//   - REQ001-REQ006: request and settings errors
//   - EXP001-EXP002: exports
//   - CHT001, FRM001-FRM002: charts and forms
//   - AUTH001-AUTH002, RATE001: access
package core
