package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// DBTX is the subset of pgxpool.Pool, pgx.Conn and pgx.Tx used by Postgres.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ DBTX = (*pgxpool.Pool)(nil)

// Postgres reads grid rows from a PostgreSQL table.
type Postgres struct {
	db    DBTX
	table Table
}

var (
	_ core.Source  = (*Postgres)(nil)
	_ core.Deleter = (*Postgres)(nil)
)

// NewPostgres creates a source over one table.
func NewPostgres(db DBTX, table Table) (*Postgres, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres source %s: no database connection", table.Name)
	}
	if err := table.validate(); err != nil {
		return nil, err
	}
	return &Postgres{db: db, table: table}, nil
}

// selectQuery builds the SELECT used by Load.
func (p *Postgres) selectQuery() (string, []any) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		p.table.selectList(),
		quoteIdentifier(p.table.Name),
		quoteIdentifier(p.table.idColumn()),
	)
	if p.table.MaxRows > 0 {
		return query + " LIMIT $1", []any{p.table.MaxRows}
	}
	return query, nil
}

// Load reads every row of the table.
func (p *Postgres) Load(ctx context.Context) ([]core.Row, error) {
	start := time.Now()
	query, args := p.selectQuery()

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", p.table.Name, err)
	}
	defer rows.Close()

	var result []core.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		result = append(result, p.table.toRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	slog.Debug("postgres rows loaded",
		"table", p.table.Name,
		"rows", len(result),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// Delete removes the rows whose identity is in ids.
func (p *Postgres) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s::text = ANY($1)",
		quoteIdentifier(p.table.Name),
		quoteIdentifier(p.table.idColumn()),
	)
	tag, err := p.db.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	return tag.RowsAffected(), nil
}
