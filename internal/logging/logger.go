// Package logging configures log/slog and builds request-scoped loggers.
//
// Loggers taken from a request context carry chi's request id and, once a
// handler has resolved it, the grid view the request operates on.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs the default slog logger writing to stdout.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type viewKey struct{}

// WithView records the view a request operates on.
func WithView(ctx context.Context, viewID string) context.Context {
	return context.WithValue(ctx, viewKey{}, viewID)
}

// ViewID returns the view recorded by WithView.
func ViewID(ctx context.Context) string {
	id, _ := ctx.Value(viewKey{}).(string)
	return id
}

// FromContext returns the default logger with request_id and view_id added
// when ctx carries them.
//
//	func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("rows served", "grid", gridKey)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if viewID := ViewID(ctx); viewID != "" {
		logger = logger.With("view_id", viewID)
	}

	return logger
}

// WithFields returns the request logger with extra fields, for operations
// that log several steps with the same context.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
