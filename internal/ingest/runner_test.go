package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormlab/shipsdb/internal/observability"
	"github.com/stormlab/shipsdb/internal/storage"
)

const rawFixture = `DELTA 820625 00 25 AL011982 HEAD
-12 -6 0 6 TIME
9999 20 25 30 VMAX
138 140 142 144 CSST 1
56 55 54 53 SHRD
147 149 9999 153 LAT
80 81 82 83 IR00
LAST
EPSIL 820626 06 30 AL021982 HEAD
-12 -6 0 6 TIME
30 35 40 45 VMAX
150 152 154 156 CSST 1
60 59 58 57 SHRD
160 162 164 166 LAT
80 81 82 83 IR00
LAST
`

func writeRaw(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ships.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func setupRunner(t *testing.T) (*Runner, *storage.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.Open(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	runner := NewRunner(store, observability.NewMetricsForTesting(), clockwork.NewFakeClock(), logger)
	return runner, store
}

func TestRun(t *testing.T) {
	runner, store := setupRunner(t)
	ctx := context.Background()

	stats, err := runner.Run(ctx, Options{
		RawPath:   writeRaw(t, rawFixture),
		TableName: "diagnostics",
		BatchSize: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Rows)
	assert.Equal(t, int64(1), stats.Batches)
	assert.Equal(t, []string{"TIME", "VMAX", "CSST", "SHRD", "LAT", "IR00"}, stats.Params)
	assert.Equal(t, []string{"VMAX", "CSST", "SHRD", "LAT"}, stats.Retained)
	assert.Zero(t, stats.Warnings)

	n, err := store.RowCount(ctx, "diagnostics")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	params, rows, err := store.FetchStorm(ctx, "diagnostics", "AL011982", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"VMAX", "CSST", "SHRD", "LAT"}, params)
	require.Len(t, rows, 1)
	assert.Equal(t, []int64{25, 142, 54, 9999}, rows[0].Values)
	assert.Equal(t, time.Date(1982, 6, 25, 0, 0, 0, 0, time.UTC), rows[0].Time)
}

func TestRun_ReplacesPreviousContents(t *testing.T) {
	runner, store := setupRunner(t)
	ctx := context.Background()
	path := writeRaw(t, rawFixture)
	opts := Options{RawPath: path, TableName: "diagnostics"}

	_, err := runner.Run(ctx, opts)
	require.NoError(t, err)
	_, err = runner.Run(ctx, opts)
	require.NoError(t, err)

	n, err := store.RowCount(ctx, "diagnostics")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "re-ingest replaces rather than appends")
}

func TestRun_MissingFile(t *testing.T) {
	runner, _ := setupRunner(t)
	_, err := runner.Run(context.Background(), Options{
		RawPath:   filepath.Join(t.TempDir(), "absent.txt"),
		TableName: "diagnostics",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open raw diagnostics file")
}

func TestRun_MalformedInput(t *testing.T) {
	runner, store := setupRunner(t)
	_, err := runner.Run(context.Background(), Options{
		RawPath:   writeRaw(t, " 0 6 12 18 TIME\n"),
		TableName: "diagnostics",
	})
	require.Error(t, err)

	// The malformed header is fatal before any table is created.
	exists, terr := store.TableExists(context.Background(), "diagnostics")
	require.NoError(t, terr)
	assert.False(t, exists)
}

func TestRun_CanceledContext(t *testing.T) {
	runner, store := setupRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, Options{
		RawPath:   writeRaw(t, rawFixture),
		TableName: "diagnostics",
	})
	require.ErrorIs(t, err, context.Canceled)

	exists, terr := store.TableExists(context.Background(), "diagnostics")
	require.NoError(t, terr)
	assert.False(t, exists)
}

func TestRun_SmallBatches(t *testing.T) {
	runner, _ := setupRunner(t)
	stats, err := runner.Run(context.Background(), Options{
		RawPath:   writeRaw(t, rawFixture),
		TableName: "diagnostics",
		BatchSize: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Rows)
	assert.Equal(t, int64(2), stats.Batches)
}
