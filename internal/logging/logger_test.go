package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureDefault swaps the default logger for a JSON logger into buf.
func captureDefault(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, level, "json"))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "text").Info("hello", "grid", "customers")
	assert.Contains(t, buf.String(), "grid=customers")

	buf.Reset()
	New(&buf, "warn", "json").Info("dropped")
	assert.Empty(t, buf.String())
}

func TestFromContext(t *testing.T) {
	buf := captureDefault(t, "debug")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	ctx = WithView(ctx, "view-7")
	WithFields(ctx, "grid", "orders").Info("rows served", "rows", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "rows served", entry["msg"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "view-7", entry["view_id"])
	assert.Equal(t, "orders", entry["grid"])
	assert.EqualValues(t, 3, entry["rows"])
}

func TestFromContext_Bare(t *testing.T) {
	buf := captureDefault(t, "info")

	FromContext(context.Background()).Info("plain")
	assert.NotContains(t, buf.String(), "request_id")
	assert.NotContains(t, buf.String(), "view_id")
	assert.Equal(t, "", ViewID(context.Background()))
}
