package source

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/gridkit/internal/core"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestJSONFile_Load(t *testing.T) {
	path := writeFile(t, "rows.json", []byte(`[
		{"id": 1, "name": "Alice", "joined": "2023-06-15"},
		{"id": 9007199254740993, "name": "Bob", "joined": null}
	]`))

	src := NewJSONFile(path)
	rows, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, json.Number("1"), rows[0]["id"])
	assert.Equal(t, "9007199254740993", rows[1].ID("id"))
	assert.Equal(t, "Alice", rows[0]["name"])
	assert.Nil(t, rows[1]["joined"])
}

func TestJSONFile_ReloadsOnChange(t *testing.T) {
	path := writeFile(t, "rows.json", []byte(`[{"id": 1}]`))
	src := NewJSONFile(path)

	rows, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 1}, {"id": 2}]`), 0o600))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	rows, err = src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestJSONFile_Errors(t *testing.T) {
	_, err := NewJSONFile(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	assert.Error(t, err)

	path := writeFile(t, "bad.json", []byte(`{"not": "an array"}`))
	_, err = NewJSONFile(path).Load(context.Background())
	assert.ErrorContains(t, err, "decode rows")
}

func TestCSVFile_Load(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("ID,Customer Name,amount,ignored\n1,Alice,10.5,x\n2, Bob ,,y\n3,Carol\n")...)
	path := writeFile(t, "rows.csv", data)

	columns := []core.Column{
		{ID: "id"},
		{ID: "name", Header: "Customer Name"},
		{ID: "amount", Type: core.ColumnNumber},
		{ID: core.ActionsColumn},
	}

	rows, err := NewCSVFile(path, columns).Load(context.Background())
	require.NoError(t, err)

	want := []core.Row{
		{"id": "1", "name": "Alice", "amount": "10.5"},
		{"id": "2", "name": "Bob"},
		{"id": "3", "name": "Carol"},
	}
	assert.Equal(t, want, rows)
}

func TestCSVFile_Empty(t *testing.T) {
	path := writeFile(t, "empty.csv", nil)
	rows, err := NewCSVFile(path, []core.Column{{ID: "id"}}).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCleanReader(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"with BOM", append([]byte{0xEF, 0xBB, 0xBF}, "a,b"...), "a,b"},
		{"without BOM", []byte("a,b"), "a,b"},
		{"empty", nil, ""},
		{"only BOM", []byte{0xEF, 0xBB, 0xBF}, ""},
		{"invalid byte replaced", []byte{'h', 'e', 0x80, 'l', 'o'}, "he?lo"},
		{"multibyte kept", []byte("café,naïve"), "café,naïve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := cleanReader(bytes.NewReader(tt.input))
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory("", []core.Row{{"id": 1}, {"id": 2}, {"id": 3}})
	ctx := context.Background()

	rows, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	n, err := m.Delete(ctx, []string{"2", "99"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	after, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Row{{"id": 1}, {"id": 3}}, after)
	assert.Len(t, rows, 3, "earlier Load result should not change")
}
