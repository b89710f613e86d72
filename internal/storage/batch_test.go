package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormlab/shipsdb/pkg/types"
)

func setupBatchStore(t *testing.T) (*Store, types.Schema) {
	t.Helper()
	store := setupTestStore(t)
	schema := testSchema()
	require.NoError(t, store.CreateDiagnosticsTable(context.Background(), schema))
	return store, schema
}

func batchRow(i int) types.Row {
	return types.Row{
		ATCFID: "AL011982",
		Time:   time.Date(1982, 6, 25, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * 6 * time.Hour),
		Values: []int64{int64(25 + i), 142, 54, 147},
	}
}

func TestBatchWriter_FlushesAtThreshold(t *testing.T) {
	store, schema := setupBatchStore(t)
	ctx := context.Background()

	bw := NewBatchWriter(store, schema, 3)
	for i := 0; i < 3; i++ {
		require.NoError(t, bw.Add(ctx, batchRow(i)))
	}

	// The third Add crossed the threshold, so rows are already committed.
	n, err := store.RowCount(ctx, schema.Table)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, int64(1), bw.Batches())
}

func TestBatchWriter_FinalPartialFlush(t *testing.T) {
	store, schema := setupBatchStore(t)
	ctx := context.Background()

	bw := NewBatchWriter(store, schema, 100)
	for i := 0; i < 7; i++ {
		require.NoError(t, bw.Add(ctx, batchRow(i)))
	}

	n, err := store.RowCount(ctx, schema.Table)
	require.NoError(t, err)
	assert.Zero(t, n, "no commit before Flush when under the batch size")

	require.NoError(t, bw.Flush(ctx))
	n, err = store.RowCount(ctx, schema.Table)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, int64(7), bw.Rows())
	assert.Equal(t, int64(1), bw.Batches())
}

func TestBatchWriter_FlushEmptyIsNoop(t *testing.T) {
	store, schema := setupBatchStore(t)
	bw := NewBatchWriter(store, schema, 100)
	require.NoError(t, bw.Flush(context.Background()))
	assert.Zero(t, bw.Batches())
}

func TestBatchWriter_OnCommitReportsBatchSizes(t *testing.T) {
	store, schema := setupBatchStore(t)
	ctx := context.Background()

	var sizes []int
	bw := NewBatchWriter(store, schema, 4)
	bw.OnCommit = func(rows int) { sizes = append(sizes, rows) }

	for i := 0; i < 10; i++ {
		require.NoError(t, bw.Add(ctx, batchRow(i)))
	}
	require.NoError(t, bw.Flush(ctx))

	assert.Equal(t, []int{4, 4, 2}, sizes)
	assert.Equal(t, int64(10), bw.Rows())
	assert.Equal(t, int64(3), bw.Batches())
}

func TestBatchWriter_DefaultSize(t *testing.T) {
	store, schema := setupBatchStore(t)
	bw := NewBatchWriter(store, schema, 0)
	assert.Equal(t, DefaultBatchSize, bw.size)
}
