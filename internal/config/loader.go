package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads configuration from the environment, applying defaults for unset
// values, and validates the result.
func Load() (*Config, error) {
	return load(os.Getenv)
}

// LoadEnvFile loads a .env file into the environment, then calls Load.
// A missing file is not an error; variables already set are kept.
func LoadEnvFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config load %s: %w", path, err)
	}
	return Load()
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func load(getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), getenv); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value, getenv func(string) string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal, getenv); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		// Primary name first, then the alternate
		value := getenv(envName)
		if value == "" && envAlt != "" {
			value = getenv(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.URL != "" {
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Grid.Catalog == "" {
		errs = append(errs, "GRID_CATALOG is required")
	}
	if c.Grid.MaxPageSize <= 0 {
		errs = append(errs, "GRID_MAX_PAGE_SIZE must be positive")
	}
	if c.Grid.DefaultPageSize <= 0 || c.Grid.DefaultPageSize > c.Grid.MaxPageSize {
		errs = append(errs, fmt.Sprintf("GRID_DEFAULT_PAGE_SIZE (%d) must be 1-%d",
			c.Grid.DefaultPageSize, c.Grid.MaxPageSize))
	}
	if c.Grid.ViewTTL <= 0 {
		errs = append(errs, "GRID_VIEW_TTL must be positive")
	}
	if c.Grid.SweepInterval <= 0 {
		errs = append(errs, "GRID_SWEEP_INTERVAL must be positive")
	}
	if c.Grid.MaxViews <= 0 {
		errs = append(errs, "GRID_MAX_VIEWS must be positive")
	}

	if c.Export.MaxConcurrent <= 0 {
		errs = append(errs, "EXPORT_MAX_CONCURRENT must be positive")
	}
	if c.Export.MaxWait <= 0 {
		errs = append(errs, "EXPORT_MAX_WAIT must be positive")
	}
	if c.Export.MaxRows < 0 {
		errs = append(errs, "EXPORT_MAX_ROWS must be non-negative")
	}
	if len(c.Export.SheetName) > 31 || strings.ContainsAny(c.Export.SheetName, `:\/?*[]`) {
		errs = append(errs, fmt.Sprintf("EXPORT_SHEET_NAME (%q) must be at most 31 characters without :\\/?*[]", c.Export.SheetName))
	}

	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.ExportLimit <= 0 {
		errs = append(errs, "RATE_LIMIT_EXPORT must be positive when rate limiting is enabled")
	}

	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a loggable summary with the database URL masked.
func (c *Config) String() string {
	db := "disabled"
	if c.Database.URL != "" {
		db = "[MASKED]"
	}
	return fmt.Sprintf("Config{Server: {Addr: %q}, Database: {URL: %s, MaxConns: %d}, SQLite: {Path: %q}, "+
		"Grid: {Catalog: %q, PageSize: %d/%d, ViewTTL: %s}, Export: {MaxConcurrent: %d, MaxRows: %d}, "+
		"Rate: {Enabled: %v, RequestsPerMinute: %d}, Logging: {Level: %q, Format: %q}}",
		c.Server.Addr(), db, c.Database.MaxConns, c.SQLite.Path,
		c.Grid.Catalog, c.Grid.DefaultPageSize, c.Grid.MaxPageSize, c.Grid.ViewTTL,
		c.Export.MaxConcurrent, c.Export.MaxRows,
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Logging.Level, c.Logging.Format)
}
