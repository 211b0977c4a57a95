// Package database opens the connections grid sources read from.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/JonMunkholm/gridkit/internal/catalog"
	"github.com/JonMunkholm/gridkit/internal/config"
)

// Conns holds the optional PostgreSQL pool and SQLite handle.
type Conns struct {
	Pool   *pgxpool.Pool
	SQLite *sql.DB
}

// Open connects to every database the configuration names. Unset URLs and
// paths are skipped; catalogs that need them fail at registration.
func Open(ctx context.Context, cfg *config.Config) (*Conns, error) {
	c := &Conns{}

	if cfg.Database.URL != "" {
		pool, err := openPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		c.Pool = pool
	}

	if cfg.SQLite.Path != "" {
		db, err := openSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.SQLite = db
	}

	return c, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	slog.Info("opened sqlite database", "path", path)
	return db, nil
}

// Deps returns the connections as catalog dependencies.
func (c *Conns) Deps() catalog.Deps {
	var deps catalog.Deps
	if c.Pool != nil {
		deps.Postgres = c.Pool
	}
	if c.SQLite != nil {
		deps.SQL = c.SQLite
	}
	return deps
}

// Close releases every open connection.
func (c *Conns) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.SQLite != nil {
		_ = c.SQLite.Close()
	}
}
