// Package storage provides SQLite-based persistence for parsed SHIPS
// diagnostics.
//
// The storage layer manages:
//   - The diagnostics table, with a schema derived once per ingestion from
//     the first block's parameter names
//   - Batched row insertion, one transaction per batch
//   - Typed read-back of stored observations by storm identifier
//   - Schema version metadata
//
// # Database Schema
//
// The diagnostics table has two identifying columns followed by one
// integer column per retained parameter, stored exactly as in the raw
// file (including the 9999 missing sentinel):
//
//	ATCF_ID CHAR(8), TIME DATETIME, VMAX INT, CSST INT, SHRD INT, ...
//
// A shipsdb_meta table records the layout version; databases written by an
// incompatible major version are rejected on open.
//
// # Basic Usage
//
//	store, err := storage.Open("ships.db", logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	schema, err := storage.BuildSchema("diagnostics", names, exclude)
//	if err != nil {
//	    return err
//	}
//	if err := store.CreateDiagnosticsTable(ctx, schema); err != nil {
//	    return err
//	}
//
//	w := storage.NewBatchWriter(store, schema, 100)
//	for br.Next() {
//	    if err := w.Add(ctx, br.Row()); err != nil {
//	        return err
//	    }
//	}
//	if err := w.Flush(ctx); err != nil {
//	    return err
//	}
//
// # Build Modes
//
// Two SQLite drivers are supported behind build tags: modernc.org/sqlite
// (pure Go, the default) and github.com/mattn/go-sqlite3 (cgo, tag
// sqlite_cgo). See build_purego.go and build_cgo.go.
package storage
