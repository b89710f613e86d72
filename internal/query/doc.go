// Package query reads stored diagnostics back out as physical
// observations.
//
// Stored values are the raw scaled integers from the diagnostics file. The
// querier applies the per-parameter conversion factors (tenths for
// latitude, longitude, sea surface temperatures, shear, and the other
// scaled fields) and maps the 9999 missing sentinel to an absent Datum, so
// callers only ever see physical units.
//
// Whole-storm results are kept in an LRU cache keyed by ATCF ID. The cache
// must be Reset after an ingestion run, since re-ingesting replaces the
// table contents.
package query
