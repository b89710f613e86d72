package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/stormlab/shipsdb/internal/observability"
	"github.com/stormlab/shipsdb/internal/parser"
	"github.com/stormlab/shipsdb/internal/storage"
	"github.com/stormlab/shipsdb/pkg/types"
)

// Options controls a single ingestion run.
type Options struct {
	// RawPath is the raw diagnostics file to load.
	RawPath string
	// TableName is the destination table, replaced on each run.
	TableName string
	// BatchSize is the number of rows per transaction. Zero means
	// storage.DefaultBatchSize.
	BatchSize int
	// Exclude is the parameter exclusion policy. Nil means the default
	// policy.
	Exclude types.Exclusion
}

// Statistics summarizes a completed ingestion run.
type Statistics struct {
	Rows     int64         `json:"rows"`
	Batches  int64         `json:"batches"`
	Params   []string      `json:"params"`
	Retained []string      `json:"retained"`
	Warnings int           `json:"warnings"`
	Duration time.Duration `json:"duration"`
}

// Runner executes ingestion runs against a single store.
type Runner struct {
	store   *storage.Store
	metrics *observability.Metrics
	clock   clockwork.Clock
	logger  *slog.Logger
}

// NewRunner creates a Runner. A nil clock falls back to the real clock; a
// nil logger discards output.
func NewRunner(store *storage.Store, metrics *observability.Metrics, clock clockwork.Clock, logger *slog.Logger) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{store: store, metrics: metrics, clock: clock, logger: logger}
}

// Run loads the raw diagnostics file named in opts into the database,
// replacing the destination table. The schema is derived from the first
// block of the file. On context cancellation the run stops between rows
// and returns the context error; already committed batches are kept.
func (r *Runner) Run(ctx context.Context, opts Options) (*Statistics, error) {
	f, err := os.Open(opts.RawPath)
	if err != nil {
		return nil, fmt.Errorf("open raw diagnostics file: %w", err)
	}
	defer func() { _ = f.Close() }()

	exclude := opts.Exclude
	if exclude == nil {
		exclude = types.DefaultExclusion()
	}

	r.metrics.IngestRunning.Set(1)
	defer r.metrics.IngestRunning.Set(0)
	start := r.clock.Now()

	r.logger.Info("starting ingestion",
		"path", opts.RawPath,
		"table", opts.TableName,
		"batch_size", opts.BatchSize)

	reader := parser.NewBlockReader(f, exclude, r.logger)

	var bw *storage.BatchWriter
	for reader.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if bw == nil {
			schema, err := storage.BuildSchema(opts.TableName, reader.ParamNames(), exclude)
			if err != nil {
				return nil, err
			}
			if err := r.store.CreateDiagnosticsTable(ctx, schema); err != nil {
				return nil, fmt.Errorf("create diagnostics table: %w", err)
			}
			bw = storage.NewBatchWriter(r.store, schema, opts.BatchSize)
			bw.OnCommit = func(rows int) {
				r.metrics.BatchesCommitted.Inc()
				r.metrics.BatchSize.Observe(float64(rows))
			}
			r.logger.Info("derived schema",
				"params", len(reader.ParamNames()),
				"retained", len(schema.Params))
		}

		if err := bw.Add(ctx, reader.Row()); err != nil {
			return nil, err
		}
		r.metrics.RowsParsed.Inc()
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	if bw != nil {
		if err := bw.Flush(ctx); err != nil {
			return nil, err
		}
	}

	duration := r.clock.Since(start)
	r.metrics.IngestDuration.Observe(duration.Seconds())
	r.metrics.ParseWarnings.Add(float64(reader.Warnings()))

	stats := &Statistics{
		Params:   reader.ParamNames(),
		Retained: reader.Retained(),
		Warnings: reader.Warnings(),
		Duration: duration,
	}
	if bw != nil {
		stats.Rows = bw.Rows()
		stats.Batches = bw.Batches()
	}

	r.logger.Info("ingestion complete",
		"rows", stats.Rows,
		"batches", stats.Batches,
		"warnings", stats.Warnings,
		"duration", duration)
	return stats, nil
}
