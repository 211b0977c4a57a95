package source

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/JonMunkholm/gridkit/internal/core"
)

func ledgerTable() Table {
	return Table{
		Name: "ledger",
		Columns: []core.Column{
			{ID: "id", Type: core.ColumnString},
			{ID: "name", Type: core.ColumnString, DBColumn: "entry_name"},
			{ID: "amount", Type: core.ColumnNumber},
			{ID: core.ActionsColumn},
		},
	}
}

func TestNewSQL_Validation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = NewSQL(nil, ledgerTable())
	assert.Error(t, err)

	_, err = NewSQL(db, Table{Columns: ledgerTable().Columns})
	assert.ErrorContains(t, err, "missing table name")

	_, err = NewSQL(db, Table{Name: "t", Columns: []core.Column{{ID: core.ActionsColumn}}})
	assert.ErrorContains(t, err, "no columns")
}

func TestSQL_Load(t *testing.T) {
	tests := []struct {
		name      string
		table     Table
		setupMock func(mock sqlmock.Sqlmock)
		wantRows  []core.Row
		expectErr string
	}{
		{
			name:  "maps database columns to column ids",
			table: ledgerTable(),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT "id", "entry_name", "amount" FROM "ledger" ORDER BY "id"`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "entry_name", "amount"}).
						AddRow(int64(1), []byte("rent"), 1200.5).
						AddRow(int64(2), "food", nil))
			},
			wantRows: []core.Row{
				{"id": int64(1), "name": "rent", "amount": 1200.5},
				{"id": int64(2), "name": "food", "amount": nil},
			},
		},
		{
			name:  "non-finite numbers become null",
			table: ledgerTable(),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT "id", "entry_name", "amount" FROM "ledger" ORDER BY "id"`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "entry_name", "amount"}).
						AddRow(int64(1), "nan", math.NaN()).
						AddRow(int64(2), "inf", math.Inf(1)))
			},
			wantRows: []core.Row{
				{"id": int64(1), "name": "nan", "amount": nil},
				{"id": int64(2), "name": "inf", "amount": nil},
			},
		},
		{
			name: "row limit",
			table: func() Table {
				tbl := ledgerTable()
				tbl.MaxRows = 5
				return tbl
			}(),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT "id", "entry_name", "amount" FROM "ledger" ORDER BY "id" LIMIT ?`).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows([]string{"id", "entry_name", "amount"}))
			},
			wantRows: nil,
		},
		{
			name:  "query error",
			table: ledgerTable(),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT "id", "entry_name", "amount" FROM "ledger" ORDER BY "id"`).
					WillReturnError(assert.AnError)
			},
			expectErr: "query ledger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			src, err := NewSQL(db, tt.table)
			require.NoError(t, err)

			rows, err := src.Load(context.Background())
			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, rows)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQL_Delete(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`DELETE FROM "ledger" WHERE "id" IN (?, ?)`).
		WithArgs("3", "4").
		WillReturnResult(sqlmock.NewResult(0, 2))

	src, err := NewSQL(db, ledgerTable())
	require.NoError(t, err)

	n, err := src.Delete(context.Background(), []string{"3", "4"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = src.Delete(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "grid.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `CREATE TABLE ledger (id INTEGER PRIMARY KEY, entry_name TEXT, amount REAL)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO ledger (id, entry_name, amount) VALUES (1, 'rent', 1200.5), (2, 'food', 80), (3, 'fuel', NULL)`)
	require.NoError(t, err)

	src, err := NewSQL(db, ledgerTable())
	require.NoError(t, err)

	rows, err := src.Load(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0].ID("id"))
	assert.Equal(t, "rent", rows[0]["name"])
	assert.Equal(t, 1200.5, core.ToNumber(rows[0]["amount"]))
	assert.Nil(t, rows[2]["amount"])

	n, err := src.Delete(ctx, []string{"1", "3"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err = src.Load(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "food", rows[0]["name"])
}
