// Package types provides shared type definitions for the shipsdb module.
//
// This package defines the domain types used across multiple components:
// parsed observation rows, the derived table schema, parameter exclusion
// sets, and the typed query results returned to callers.
//
// # Core Types
//
// Row is one storm observation parsed from a diagnostics block:
//
//	row := types.Row{
//	    ATCFID: "AL132005",
//	    Time:   time.Date(2005, 8, 23, 18, 0, 0, 0, time.UTC),
//	    Values: []int64{175, 751, 9999, ...},
//	}
//
// Schema is the ordered column layout derived once per ingestion from the
// first block's parameter names. StormObs and Obs are the columnar query
// results; Datum is a single value with the missing sentinel already
// resolved to an explicit absent marker:
//
//	if d.Valid {
//	    fmt.Println(d.Value)
//	} else {
//	    fmt.Println("no data")
//	}
package types
