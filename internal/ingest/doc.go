// Package ingest orchestrates a full load of a raw SHIPS diagnostics file
// into the database.
//
// A run streams blocks from the parser, derives the table schema from the
// first block, replaces the diagnostics table, and commits rows through a
// batch writer. The run is destructive: re-ingesting drops the previous
// table contents rather than merging. Cancellation via context stops the
// run between rows; batches committed before cancellation remain in the
// database.
//
// The runner reports progress through structured logs and Prometheus
// metrics, and returns a Statistics summary on success.
package ingest
