package types

import "time"

// MissingValue is the sentinel the raw SHIPS files use for "no data".
// It is stored verbatim in the database and resolved to an absent Datum
// on the way out of the query layer.
const MissingValue int64 = 9999

// Row is one storm observation: the identifying key plus one integer value
// per retained parameter, positionally aligned with Schema.Params.
// Parameters absent from the source block keep MissingValue.
type Row struct {
	ATCFID string
	Time   time.Time
	Values []int64
}

// Schema is the ordered column layout of the diagnostics table, derived
// once per ingestion run from the first block's parameter names with the
// exclusion list applied. Identifying columns ATCF_ID and TIME precede the
// parameter columns.
type Schema struct {
	Table  string
	Params []string
}

// Columns returns the full ordered column list including the identifying
// columns.
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s.Params)+2)
	cols = append(cols, "ATCF_ID", "TIME")
	return append(cols, s.Params...)
}

// Index returns the positional index of a parameter within Row.Values,
// or false if the parameter is not part of the schema.
func (s Schema) Index(param string) (int, bool) {
	for i, p := range s.Params {
		if p == param {
			return i, true
		}
	}
	return 0, false
}
