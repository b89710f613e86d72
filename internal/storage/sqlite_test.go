package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormlab/shipsdb/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", testLogger())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSchema() types.Schema {
	return types.Schema{Table: "diagnostics", Params: []string{"VMAX", "CSST", "SHRD", "LAT"}}
}

func testRow(id string, t time.Time, vals ...int64) types.Row {
	return types.Row{ATCFID: id, Time: t, Values: vals}
}

func TestOpen(t *testing.T) {
	store := setupTestStore(t)
	assert.NotNil(t, store.db)
}

func TestOpen_SchemaVersionPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ships.db")

	store, err := Open(path, testLogger())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening a database written by the same version succeeds.
	store, err = Open(path, testLogger())
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestOpen_IncompatibleSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ships.db")

	store, err := Open(path, testLogger())
	require.NoError(t, err)
	_, err = store.db.Exec(`UPDATE shipsdb_meta SET value = '99.0.0' WHERE key = 'schema_version'`)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = Open(path, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incompatible")
}

func TestBuildSchema(t *testing.T) {
	names := []string{"TIME", "VMAX", "CSST", "SHRD", "IR00", "LAT"}
	schema, err := BuildSchema("diagnostics", names, types.DefaultExclusion())
	require.NoError(t, err)
	assert.Equal(t, []string{"VMAX", "CSST", "SHRD", "LAT"}, schema.Params)
	assert.Equal(t, []string{"ATCF_ID", "TIME", "VMAX", "CSST", "SHRD", "LAT"}, schema.Columns())
}

func TestBuildSchema_DeduplicatesNames(t *testing.T) {
	schema, err := BuildSchema("diagnostics", []string{"VMAX", "VMAX", "LAT"}, types.NewExclusion(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"VMAX", "LAT"}, schema.Params)
}

func TestBuildSchema_RejectsBadIdentifiers(t *testing.T) {
	_, err := BuildSchema("diagnostics", []string{"VMAX;DROP"}, types.NewExclusion(nil))
	require.Error(t, err)

	_, err = BuildSchema("bad table", []string{"VMAX"}, types.NewExclusion(nil))
	require.Error(t, err)
}

func TestCreateDiagnosticsTable(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schema := testSchema()

	require.NoError(t, store.CreateDiagnosticsTable(ctx, schema))

	cols, err := store.TableColumns(ctx, schema.Table)
	require.NoError(t, err)
	assert.Equal(t, schema.Columns(), cols)
}

func TestCreateDiagnosticsTable_ReplacesExisting(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schema := testSchema()

	require.NoError(t, store.CreateDiagnosticsTable(ctx, schema))
	ts := time.Date(1982, 6, 25, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertRows(ctx, schema, []types.Row{
		testRow("AL011982", ts, 25, 142, 54, 147),
	}))

	// Re-creating drops previous contents; the column set is identical.
	require.NoError(t, store.CreateDiagnosticsTable(ctx, schema))
	n, err := store.RowCount(ctx, schema.Table)
	require.NoError(t, err)
	assert.Zero(t, n)

	cols, err := store.TableColumns(ctx, schema.Table)
	require.NoError(t, err)
	assert.Equal(t, schema.Columns(), cols)
}

func TestInsertRows_AndFetchStorm(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schema := testSchema()
	require.NoError(t, store.CreateDiagnosticsTable(ctx, schema))

	t0 := time.Date(1982, 6, 25, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(1982, 6, 25, 6, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertRows(ctx, schema, []types.Row{
		testRow("AL011982", t0, 25, 142, 54, 147),
		testRow("AL011982", t1, 30, 143, 52, 150),
		testRow("AL021982", t1, 40, 150, 60, 9999),
	}))

	params, rows, err := store.FetchStorm(ctx, schema.Table, "AL011982", nil)
	require.NoError(t, err)
	assert.Equal(t, schema.Params, params)
	require.Len(t, rows, 2)
	assert.Equal(t, t0, rows[0].Time)
	assert.Equal(t, t1, rows[1].Time)
	assert.Equal(t, []int64{25, 142, 54, 147}, rows[0].Values)
}

func TestFetchStorm_AtTimestamp(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schema := testSchema()
	require.NoError(t, store.CreateDiagnosticsTable(ctx, schema))

	t0 := time.Date(1982, 6, 25, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(1982, 6, 25, 6, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertRows(ctx, schema, []types.Row{
		testRow("AL011982", t0, 25, 142, 54, 147),
		testRow("AL011982", t1, 30, 143, 52, 150),
	}))

	_, rows, err := store.FetchStorm(ctx, schema.Table, "AL011982", &t1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []int64{30, 143, 52, 150}, rows[0].Values)

	// No row at this exact timestamp: empty result, not an error.
	t2 := time.Date(1982, 6, 25, 12, 0, 0, 0, time.UTC)
	_, rows, err = store.FetchStorm(ctx, schema.Table, "AL011982", &t2)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchStorm_UnknownStormIsEmpty(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schema := testSchema()
	require.NoError(t, store.CreateDiagnosticsTable(ctx, schema))

	_, rows, err := store.FetchStorm(ctx, schema.Table, "WP999999", nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchStorm_MissingTable(t *testing.T) {
	store := setupTestStore(t)
	_, _, err := store.FetchStorm(context.Background(), "diagnostics", "AL011982", nil)
	require.ErrorIs(t, err, ErrNoTable)
}

func TestInsertRows_ValueCountMismatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schema := testSchema()
	require.NoError(t, store.CreateDiagnosticsTable(ctx, schema))

	err := store.InsertRows(ctx, schema, []types.Row{
		testRow("AL011982", time.Now(), 25, 142),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "values")
}

func TestRowCount_NoTable(t *testing.T) {
	store := setupTestStore(t)
	n, err := store.RowCount(context.Background(), "diagnostics")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSizeBytes(t *testing.T) {
	store := setupTestStore(t)
	n, err := store.SizeBytes(context.Background())
	require.NoError(t, err)
	assert.Greater(t, n, int64(0))
}
