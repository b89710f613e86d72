// Package mcp exposes the diagnostics database as an MCP (Model Context
// Protocol) server over stdio.
//
// # Tools
//
// The server registers four tools:
//
//   - ingest_diagnostics: parses the raw SHIPS diagnostics file and
//     (re)builds the database table. Accepts an optional source path and
//     batch size; defaults come from configuration. Re-ingesting replaces
//     the table and invalidates the query cache.
//
//   - get_storm_obs: returns observations for one storm by ATCF ID, as
//     physical values with missing entries encoded as null. With a "time"
//     argument (RFC 3339) it returns the single observation at that
//     timestamp; without one it returns the storm's full time series.
//
//   - describe_parameters: looks up parameter codes in the predictor
//     description file. With no codes argument it returns the whole
//     catalog.
//
//   - get_status: reports whether the table exists, its row count and
//     columns, database size, schema version, and the SQLite build mode.
//
// # Errors
//
// Tool failures are returned as MCPError values carrying a JSON-RPC style
// code: invalid parameters, storm not found, nothing ingested yet, or an
// internal failure. The framework encodes them onto the wire.
//
// # Transport
//
// Only stdio transport is supported. Logs go to stderr so stdout stays a
// clean protocol stream.
package mcp
