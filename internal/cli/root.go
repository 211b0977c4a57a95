// Package cli provides the gridctl command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gridkit/internal/catalog"
	"github.com/JonMunkholm/gridkit/internal/config"
	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/database"
	"github.com/JonMunkholm/gridkit/internal/logging"
)

// Version is set at build time.
var Version = "0.1.0"

// options are the persistent flags shared by every command.
type options struct {
	catalogPath string
	databaseURL string
	sqlitePath  string
	logLevel    string
}

// NewRootCmd creates the gridctl root command.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "gridctl",
		Short: "Inspect and export grids from a catalog",
		Long: `gridctl works on the same grid catalog the server loads.

It lists the declared grids, checks a catalog for mistakes, and exports a
grid's filtered rows to XLSX or CSV without running the server.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.Setup(opts.logLevel, "text")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.catalogPath, "catalog", "c", os.Getenv("GRID_CATALOG"), "grid catalog file (default: $GRID_CATALOG)")
	flags.StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL for postgres sources")
	flags.StringVar(&opts.sqlitePath, "sqlite", os.Getenv("SQLITE_PATH"), "SQLite file for sqlite sources")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	rootCmd.AddCommand(newGridsCommand(opts))
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func (o *options) loadCatalog() (*catalog.Catalog, error) {
	if o.catalogPath == "" {
		return nil, fmt.Errorf("no catalog given: pass --catalog or set GRID_CATALOG")
	}
	return catalog.Load(o.catalogPath)
}

// openService loads the catalog, connects to its databases and returns a
// service over every grid. The returned cleanup closes the connections.
func (o *options) openService(ctx context.Context) (*core.Service, catalog.Forms, func(), error) {
	cat, err := o.loadCatalog()
	if err != nil {
		return nil, nil, nil, err
	}

	conns, err := database.Open(ctx, &config.Config{
		Database: config.DatabaseConfig{URL: o.databaseURL, MaxConns: 2, MinConns: 0},
		SQLite:   config.SQLiteConfig{Path: o.sqlitePath},
	})
	if err != nil {
		return nil, nil, nil, err
	}

	reg := core.NewRegistry()
	forms, err := cat.Register(reg, conns.Deps())
	if err != nil {
		conns.Close()
		return nil, nil, nil, err
	}
	return core.NewService(reg, core.Options{}), forms, conns.Close, nil
}
