package web

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/gridkit/internal/catalog"
	"github.com/JonMunkholm/gridkit/internal/config"
	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/form"
	"github.com/JonMunkholm/gridkit/internal/source"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{ShutdownTimeout: time.Second},
		Export: config.ExportConfig{
			MaxConcurrent: 2,
			MaxWait:       time.Second,
			MaxRows:       100,
			SheetName:     "Accounts",
		},
	}
}

func accountRows() []core.Row {
	return []core.Row{
		{"id": "1", "name": "Acme", "balance": 120.5, "opened": "2024-01-15"},
		{"id": "2", "name": "Globex", "balance": 80.0, "opened": "2023-06-01"},
		{"id": "3", "name": "Initech", "balance": 300.0, "opened": "2022-03-10"},
		{"id": "4", "name": "Umbrella", "balance": 15.0, "opened": "2024-09-30"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	reg := core.NewRegistry()
	require.NoError(t, reg.Register(core.GridDefinition{
		Info: core.GridInfo{Key: "accounts", Group: "Sales", Label: "Accounts"},
		Columns: []core.Column{
			{ID: "name", Header: "Name", Type: core.ColumnString, Hideable: true, Sortable: true},
			{ID: "balance", Header: "Balance", Type: core.ColumnNumber, Hideable: true, Sortable: true},
			{ID: "opened", Header: "Opened", Type: core.ColumnDate, Hideable: true, Sortable: true},
		},
		Source: source.NewMemory("id", accountRows()),
	}))
	require.NoError(t, reg.Register(core.GridDefinition{
		Info:    core.GridInfo{Key: "regions", Group: "Reference"},
		Columns: []core.Column{{ID: "code", Header: "Code", Type: core.ColumnString}},
		Source:  source.NewMemory("code", []core.Row{{"code": "EU"}}),
	}))

	schema, err := form.Build(map[string]form.Field{
		"name":  {Kind: form.KindText, Label: "Name", Required: true},
		"seats": {Kind: form.KindNumber, Value: 1},
	})
	require.NoError(t, err)

	svc := core.NewService(reg, core.Options{DefaultPageSize: 10})
	s := NewServer(svc, catalog.Forms{"accounts": schema}, cfg)
	s.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC) }
	return s
}

func do(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func openView(t *testing.T, s *Server, grid string) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/views", map[string]string{"grid": grid})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var view core.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := do(t, s, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["grids"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestGrids(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   []string
	}{
		{"list groups", "/api/grids", http.StatusOK, []string{`"Sales"`, `"Reference"`, `"accounts"`}},
		{"detail", "/api/grids/accounts", http.StatusOK, []string{`"hasForm":true`, `"deletable":true`, `"between"`, `"pageSizes":[10,20,50,100]`}},
		{"unknown grid", "/api/grids/nope", http.StatusNotFound, []string{`"GRID001"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestViewLifecycle(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodPost, "/api/views", map[string]string{"grid": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/views", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REQ004", decode[ErrorResponse](t, rec).Code)

	id := openView(t, s, "accounts")

	rec = do(t, s, http.MethodGet, "/api/views/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "accounts", decode[core.View](t, rec).GridKey)

	rec = do(t, s, http.MethodDelete, "/api/views/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/views/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "GRID002", decode[ErrorResponse](t, rec).Code)
}

func TestUpdateSettings(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := openView(t, s, "accounts")

	rec := do(t, s, http.MethodPut, "/api/views/"+id+"/settings", map[string]any{
		"pageSize": 20,
		"hidden":   map[string]bool{"opened": true},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[core.View](t, rec)
	assert.Equal(t, 20, view.PageSize)
	assert.True(t, view.Hidden["opened"])

	rec = do(t, s, http.MethodPut, "/api/views/"+id+"/settings", map[string]any{"pageSize": 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REQ002", decode[ErrorResponse](t, rec).Code)
}

func TestRows(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := openView(t, s, "accounts")

	t.Run("filter and sort", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/views/"+id+"/rows?sort=balance&dir=desc&filter[balance]=gt:50", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		result := decode[core.Result](t, rec)
		require.Len(t, result.Rows, 3)
		assert.Equal(t, "3", result.Rows[0].ID)
		assert.Equal(t, "2", result.Rows[2].ID)
		assert.Equal(t, 4, result.SourceRows)
		assert.Contains(t, result.ActiveFilters, "balance")
	})

	t.Run("between uses filter_to", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/views/"+id+"/rows?filter[balance]=between:50&filter_to[balance]=150", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, decode[core.Result](t, rec).TotalRows)
	})

	t.Run("operator the column does not offer is skipped", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/views/"+id+"/rows?filter[name]=gt:5", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		result := decode[core.Result](t, rec)
		assert.Equal(t, 4, result.TotalRows)
		assert.Empty(t, result.ActiveFilters)
	})

	t.Run("paging", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/views/"+id+"/rows?page=2&pageSize=3", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		result := decode[core.Result](t, rec)
		assert.Equal(t, 2, result.Page)
		assert.Equal(t, 2, result.TotalPages)
		assert.Len(t, result.Rows, 1)
	})
}

func TestPinAndBulk(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := openView(t, s, "accounts")

	rec := do(t, s, http.MethodPost, "/api/views/"+id+"/pin/4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rowId":"4","pinned":true}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/views/"+id+"/rows?pageSize=2", nil)
	result := decode[core.Result](t, rec)
	require.NotEmpty(t, result.Rows)
	assert.Equal(t, "1", result.Rows[0].ID)
	assert.Equal(t, 1, result.PinnedCount)

	rec = do(t, s, http.MethodPost, "/api/views/"+id+"/bulk", map[string]any{
		"action": "pin",
		"ids":    []string{"1", "2", "missing"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	bulk := decode[core.BulkResult](t, rec)
	assert.Equal(t, 2, bulk.Selected)
	assert.Equal(t, 3, bulk.Pinned)

	rec = do(t, s, http.MethodPost, "/api/views/"+id+"/bulk", map[string]any{"action": "explode"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "GRID003", decode[ErrorResponse](t, rec).Code)

	rec = do(t, s, http.MethodPost, "/api/views/"+id+"/bulk", map[string]any{
		"action": "delete",
		"ids":    []string{"3"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/views/"+id+"/rows", nil)
	assert.Equal(t, 3, decode[core.Result](t, rec).TotalRows)
}

func TestColumnStats(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := openView(t, s, "accounts")

	rec := do(t, s, http.MethodGet, "/api/views/"+id+"/stats/balance?filter[balance]=lt:100", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := decode[core.Stats](t, rec)
	assert.Equal(t, 2, stats.Count)
	assert.InDelta(t, 95.0, stats.Total, 1e-9)
	assert.InDelta(t, 80.0, stats.Highest, 1e-9)

	rec = do(t, s, http.MethodGet, "/api/views/"+id+"/stats/name", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REQ003", decode[ErrorResponse](t, rec).Code)
}

func TestChart(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := openView(t, s, "accounts")

	rec := do(t, s, http.MethodPost, "/api/views/"+id+"/chart", map[string]any{
		"type":   "bar",
		"config": map[string]any{"title": "Balances", "xAxis": "name", "yAxis": "balance"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"Balances"`)
	assert.Contains(t, rec.Body.String(), `"Initech"`)

	rec = do(t, s, http.MethodPost, "/api/views/"+id+"/chart", map[string]any{"type": "radar"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CHT001", decode[ErrorResponse](t, rec).Code)
}

func TestExportXLSX(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := openView(t, s, "accounts")

	rec := do(t, s, http.MethodGet, "/api/views/"+id+"/export.xlsx?fields=balance,name&sort=name&dir=desc", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="Accounts_2024-05-06_07-08.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Accounts")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Name", "Balance"}, rows[0])
	assert.Equal(t, "Umbrella", rows[1][0])
}

func TestExportXLSX_RowLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Export.MaxRows = 2
	s := newTestServer(t, cfg)
	id := openView(t, s, "accounts")

	rec := do(t, s, http.MethodGet, "/api/views/"+id+"/export.xlsx", nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "EXP002", decode[ErrorResponse](t, rec).Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))

	rec = do(t, s, http.MethodGet, "/api/views/"+id+"/export.xlsx?filter[name]=startsWith:a", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := openView(t, s, "accounts")

	rec := do(t, s, http.MethodGet, "/api/views/"+id+"/export.csv?filter[name]=contains:e", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Balance", "Opened"}, records[0])
	// Acme, Globex, Initech, Umbrella all contain "e" case-insensitively.
	assert.Len(t, records, 5)
}

func TestForms(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/api/forms/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Contains(t, body, "fields")
	assert.EqualValues(t, 1, body["defaults"].(map[string]any)["seats"])

	rec = do(t, s, http.MethodGet, "/api/forms/regions", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "FRM002", decode[ErrorResponse](t, rec).Code)

	rec = do(t, s, http.MethodPost, "/api/forms/accounts/validate", map[string]any{"name": "Acme", "seats": 3})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/forms/accounts/validate", map[string]any{"seats": 1.5})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "FRM001", resp.Code)
	assert.Contains(t, resp.Fields, "name")

	rec = do(t, s, http.MethodPost, "/api/forms/accounts/validate", map[string]any{"name": "Acme", "seats": 1.5})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, "seats")
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := newTestServer(t, cfg)

	rec := do(t, s, http.MethodGet, "/api/grids", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/grids", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health checks stay open.
	rec = do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	assert.True(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("1.1.1.1"))
	assert.False(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("2.2.2.2"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("1.1.1.1"))

	// Idle visitors are swept after two windows.
	now = now.Add(3 * time.Minute)
	rl.allow("3.3.3.3")
	rl.mu.Lock()
	assert.Len(t, rl.visitors, 1)
	rl.mu.Unlock()
}

func TestRateLimiter_Middleware(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, ExportLimit: 1}
	s := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", nil).Code)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decode[ErrorResponse](t, rec).Code)
}

func TestParseFilters(t *testing.T) {
	def := core.GridDefinition{Columns: []core.Column{
		{ID: "name", Type: core.ColumnString},
		{ID: "amount", Type: core.ColumnNumber},
	}}
	req := httptest.NewRequest(http.MethodGet,
		"/?filter[Name]=equals:Acme&filter_cs[Name]=true&filter[amount]=between:1&filter_to[amount]=9&filter[ghost]=equals:x&filter[amount2]=gt:&filter[name", nil)

	got := parseFilters(req, def)
	assert.Equal(t, map[string]core.FilterSpec{
		"name":   {Operator: core.OpEquals, Value: "Acme", CaseSensitive: true},
		"amount": {Operator: core.OpBetween, Value: "1", ValueTo: "9"},
	}, got)
}

func TestParseSortsAndFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?sort=name,amount,extra&dir=desc&fields=a,,b", nil)
	assert.Equal(t, []core.SortSpec{
		{Column: "name", Dir: "desc"},
		{Column: "amount", Dir: "asc"},
	}, parseSorts(req))
	assert.Equal(t, []string{"a", "b"}, parseFields(req))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]any{"ok": true})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	// NaN has no JSON form; the client gets a complete error document.
	rec = httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]any{"value": math.NaN()})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ERR000", decode[ErrorResponse](t, rec).Code)
}
