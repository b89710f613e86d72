// Command shipsdb manages a local database of SHIPS tropical cyclone
// diagnostics.
//
// Usage:
//
//	shipsdb setup     download raw archives and build the database
//	shipsdb ingest    parse the raw file and rebuild the database
//	shipsdb serve     answer queries as an MCP server on stdio
//	shipsdb --version print build information
//
// Configuration is read from SHIPSDB_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/stormlab/shipsdb/internal/config"
	"github.com/stormlab/shipsdb/internal/fetch"
	"github.com/stormlab/shipsdb/internal/ingest"
	"github.com/stormlab/shipsdb/internal/mcp"
	"github.com/stormlab/shipsdb/internal/observability"
	"github.com/stormlab/shipsdb/internal/query"
	"github.com/stormlab/shipsdb/internal/storage"
	"github.com/stormlab/shipsdb/pkg/types"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("shipsdb\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "shipsdb: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Graceful shutdown on interrupt. Ingestion stops between rows,
	// keeping already committed batches.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	store, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		return err
	}

	runner := ingest.NewRunner(store, metrics, clockwork.NewRealClock(), logger)
	querier := query.NewQuerier(store, cfg.TableName, metrics, logger)

	switch cmd {
	case "setup":
		defer func() { _ = store.Close() }()
		d := fetch.NewDownloader("", logger)
		if err := d.Fetch(ctx, cfg.RawPath, cfg.Sources); err != nil {
			return err
		}
		return runIngest(ctx, cfg, runner)
	case "ingest":
		defer func() { _ = store.Close() }()
		return runIngest(ctx, cfg, runner)
	case "serve":
		logger.Info("starting server",
			"version", version,
			"build_mode", storage.BuildMode,
			"driver", storage.DriverName)
		server := mcp.NewServer(cfg, store, runner, querier, logger)
		return server.Serve(ctx)
	default:
		_ = store.Close()
		return fmt.Errorf("unknown command %q, want setup, ingest, or serve", cmd)
	}
}

func runIngest(ctx context.Context, cfg *config.Config, runner *ingest.Runner) error {
	var exclude types.Exclusion
	if len(cfg.Exclude) > 0 {
		exclude = types.NewExclusion(cfg.Exclude)
	}
	stats, err := runner.Run(ctx, ingest.Options{
		RawPath:   cfg.RawPath,
		TableName: cfg.TableName,
		BatchSize: cfg.BatchSize,
		Exclude:   exclude,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %d rows in %d batches (%d parameters retained, %d warnings)\n",
		stats.Rows, stats.Batches, len(stats.Retained), stats.Warnings)
	return nil
}
