package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// SQL reads grid rows through database/sql. Queries use "?" placeholders,
// which SQLite and MySQL drivers accept.
type SQL struct {
	db    *sql.DB
	table Table
}

var (
	_ core.Source  = (*SQL)(nil)
	_ core.Deleter = (*SQL)(nil)
)

// NewSQL creates a source over one table.
func NewSQL(db *sql.DB, table Table) (*SQL, error) {
	if db == nil {
		return nil, fmt.Errorf("sql source %s: no database connection", table.Name)
	}
	if err := table.validate(); err != nil {
		return nil, err
	}
	return &SQL{db: db, table: table}, nil
}

func (s *SQL) selectQuery() (string, []any) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		s.table.selectList(),
		quoteIdentifier(s.table.Name),
		quoteIdentifier(s.table.idColumn()),
	)
	if s.table.MaxRows > 0 {
		return query + " LIMIT ?", []any{s.table.MaxRows}
	}
	return query, nil
}

// Load reads every row of the table.
func (s *SQL) Load(ctx context.Context) ([]core.Row, error) {
	start := time.Now()
	query, args := s.selectQuery()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table.Name, err)
	}
	defer func() { _ = rows.Close() }()

	n := len(s.table.dataColumns())
	var result []core.Row
	for rows.Next() {
		values := make([]any, n)
		ptrs := make([]any, n)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, s.table.toRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	slog.Debug("sql rows loaded",
		"table", s.table.Name,
		"rows", len(result),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// Delete removes the rows whose identity is in ids.
func (s *SQL) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
		quoteIdentifier(s.table.Name),
		quoteIdentifier(s.table.idColumn()),
		placeholders,
	)
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
