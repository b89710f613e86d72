package storage

import (
	"context"
	"fmt"

	"github.com/stormlab/shipsdb/pkg/types"
)

// DefaultBatchSize is the number of rows buffered per transaction when no
// other size is configured.
const DefaultBatchSize = 100

// BatchWriter buffers parsed rows and flushes them to the store in
// fixed-size batches to bound memory. Every accepted row is persisted
// exactly once; a failed commit surfaces to the caller and the ingestion
// run is considered failed. Previously committed batches stay valid.
type BatchWriter struct {
	store  *Store
	schema types.Schema
	size   int

	buf     []types.Row
	rows    int64
	batches int64

	// OnCommit, when set, is called with the row count of each committed
	// batch.
	OnCommit func(rows int)
}

// NewBatchWriter creates a BatchWriter for the given schema. A size of
// zero or less falls back to DefaultBatchSize.
func NewBatchWriter(store *Store, schema types.Schema, size int) *BatchWriter {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &BatchWriter{
		store:  store,
		schema: schema,
		size:   size,
		buf:    make([]types.Row, 0, size),
	}
}

// Add buffers one row, committing the buffer as a single transaction once
// it reaches the batch size.
func (w *BatchWriter) Add(ctx context.Context, row types.Row) error {
	w.buf = append(w.buf, row)
	if len(w.buf) < w.size {
		return nil
	}
	return w.flush(ctx)
}

// Flush commits any remaining partial batch. Call once at end of input.
func (w *BatchWriter) Flush(ctx context.Context) error {
	if len(w.buf) == 0 {
		return nil
	}
	return w.flush(ctx)
}

func (w *BatchWriter) flush(ctx context.Context) error {
	n := len(w.buf)
	if err := w.store.InsertRows(ctx, w.schema, w.buf); err != nil {
		return fmt.Errorf("batch of %d rows failed: %w", n, err)
	}
	w.rows += int64(n)
	w.batches++
	w.buf = w.buf[:0]
	if w.OnCommit != nil {
		w.OnCommit(n)
	}
	return nil
}

// Rows returns the number of rows committed so far.
func (w *BatchWriter) Rows() int64 {
	return w.rows
}

// Batches returns the number of batches committed so far.
func (w *BatchWriter) Batches() int64 {
	return w.batches
}
