// Package web serves the grid API over HTTP.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/gridkit/internal/catalog"
	"github.com/JonMunkholm/gridkit/internal/config"
	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/export"
	mw "github.com/JonMunkholm/gridkit/internal/web/middleware"
)

// Server is the HTTP server for the grid API.
type Server struct {
	service *core.Service
	forms   catalog.Forms
	exports *export.Limiter
	cfg     *config.Config
	router  *chi.Mux
	now     func() time.Time
}

// NewServer creates a Server. forms may be nil when no grid declares one.
func NewServer(service *core.Service, forms catalog.Forms, cfg *config.Config) *Server {
	if forms == nil {
		forms = catalog.Forms{}
	}
	s := &Server{
		service: service,
		forms:   forms,
		exports: export.NewLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWait),
		cfg:     cfg,
		router:  chi.NewRouter(),
		now:     time.Now,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		r.Get("/grids", s.handleListGrids)
		r.Get("/grids/{gridKey}", s.handleGetGrid)

		r.Get("/forms/{gridKey}", s.handleGetForm)
		r.Post("/forms/{gridKey}/validate", s.handleValidateForm)

		r.Post("/views", s.handleCreateView)
		r.Route("/views/{viewID}", func(r chi.Router) {
			r.Use(withViewLogging)

			r.Get("/", s.handleGetView)
			r.Delete("/", s.handleCloseView)
			r.Put("/settings", s.handleUpdateSettings)
			r.Get("/rows", s.handleRows)
			r.Post("/pin/{rowID}", s.handleTogglePin)
			r.Post("/bulk", s.handleBulkAction)
			r.Get("/stats/{column}", s.handleColumnStats)
			r.Post("/chart", s.handleChart)

			r.Group(func(r chi.Router) {
				if s.cfg.Rate.Enabled {
					r.Use(newRateLimiter(s.cfg.Rate.ExportLimit, time.Minute).middleware)
				}
				r.Get("/export.xlsx", s.handleExportXLSX)
				r.Get("/export.csv", s.handleExportCSV)
			})
		})
	})
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Serve listens on the configured address until ctx is cancelled, then
// waits for running exports and shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Server.Addr(),
		Handler: s.router,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}

	eg.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := s.exports.ActiveCount(); active > 0 {
			slog.Info("waiting for exports to complete", "active", active)
			if err := s.exports.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("exports did not complete in time", "error", err)
			}
		}

		slog.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"grids":   s.service.Registry().Count(),
		"views":   s.service.ViewCount(),
		"exports": s.exports.Status(),
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// JSON only; nothing here should load sub-resources.
				w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// errRateLimited is mapped to RATE001 by core.MapError.
var errRateLimited = errors.New("rate limit exceeded")

// rateLimiter is a fixed-window request counter per client IP.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      int           // requests per window
	window    time.Duration // time window
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		visitors:  make(map[string]*visitor),
		rate:      rate,
		window:    window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// sweep drops visitors idle for two windows. Called with mu held.
func (rl *rateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	for ip, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, ip)
		}
	}
	rl.lastSweep = now
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = now
		return true
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// middleware rate limits by client IP. TrustedRealIP has already replaced
// RemoteAddr when the request came through a trusted proxy.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
			respondErrorJSON(w, core.MapError(errRateLimited), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status. v is encoded before
// the header is written, so a value that cannot be encoded is answered
// with 500 instead of a truncated body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
		respondErrorJSON(w, core.MapError(err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
