// Package config loads server settings from environment variables with
// defaults, and validates them on startup so misconfiguration fails fast.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	SQLite   SQLiteConfig
	Grid     GridConfig
	Export   ExportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds PostgreSQL pool settings. The pool is only opened
// when URL is set.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Both DATABASE_URL and DB_URL are accepted.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of pooled connections (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the number of connections kept open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime closes connections idle this long (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SQLiteConfig holds the optional SQLite database used by sqlite grids.
type SQLiteConfig struct {
	// Path is the database file. Empty disables sqlite grids.
	Path string `env:"SQLITE_PATH"`
}

// GridConfig holds grid catalog and view settings.
type GridConfig struct {
	// Catalog is the YAML file declaring the grids (required)
	Catalog string `env:"GRID_CATALOG" required:"true"`

	// DefaultPageSize is the page size of new views (default: 10)
	DefaultPageSize int `env:"GRID_DEFAULT_PAGE_SIZE" default:"10"`

	// MaxPageSize caps the page size a request may ask for (default: 100)
	MaxPageSize int `env:"GRID_MAX_PAGE_SIZE" default:"100"`

	// ViewTTL removes views idle this long (default: 30m)
	ViewTTL time.Duration `env:"GRID_VIEW_TTL" default:"30m"`

	// SweepInterval is how often idle views are removed (default: 1m)
	SweepInterval time.Duration `env:"GRID_SWEEP_INTERVAL" default:"1m"`

	// MaxViews caps the number of open views (default: 1000)
	MaxViews int `env:"GRID_MAX_VIEWS" default:"1000"`
}

// ExportConfig holds spreadsheet and CSV export settings.
type ExportConfig struct {
	// MaxConcurrent is the number of exports built at once (default: 4)
	MaxConcurrent int `env:"EXPORT_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long to wait for an export slot (default: 10s)
	MaxWait time.Duration `env:"EXPORT_MAX_WAIT" default:"10s"`

	// MaxRows rejects larger exports; 0 disables the limit (default: 100000)
	MaxRows int `env:"EXPORT_MAX_ROWS" default:"100000"`

	// SheetName is the worksheet name in XLSX exports (default: Sheet1)
	SheetName string `env:"EXPORT_SHEET_NAME" default:"Sheet1"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// ExportLimit is requests per minute for export endpoints (default: 10)
	ExportLimit int `env:"RATE_LIMIT_EXPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey rejects /api requests without a valid key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
