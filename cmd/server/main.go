package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/gridkit/internal/catalog"
	"github.com/JonMunkholm/gridkit/internal/config"
	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/database"
	"github.com/JonMunkholm/gridkit/internal/logging"
	"github.com/JonMunkholm/gridkit/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadEnvFile(".env")
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"catalog", cfg.Grid.Catalog,
		"export_max_concurrent", cfg.Export.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conns, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer conns.Close()

	cat, err := catalog.Load(cfg.Grid.Catalog)
	if err != nil {
		return err
	}
	registry := core.NewRegistry()
	forms, err := cat.Register(registry, conns.Deps())
	if err != nil {
		return err
	}

	service := core.NewService(registry, core.Options{
		DefaultPageSize: cfg.Grid.DefaultPageSize,
		MaxPageSize:     cfg.Grid.MaxPageSize,
		ViewTTL:         cfg.Grid.ViewTTL,
		MaxViews:        cfg.Grid.MaxViews,
	})
	server := web.NewServer(service, forms, cfg)

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		service.StartViewSweeper(egctx, cfg.Grid.SweepInterval)
		return nil
	})
	eg.Go(func() error {
		return server.Serve(egctx)
	})

	err = eg.Wait()
	slog.Info("server stopped")
	return err
}
