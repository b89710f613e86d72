package types

import (
	"encoding/json"
	"time"
)

// Datum is a single unit-converted parameter value. Valid is false when the
// stored value was the missing sentinel; callers never see the literal
// sentinel integer.
type Datum struct {
	Value float64
	Valid bool
}

// MarshalJSON encodes an absent Datum as null.
func (d Datum) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Value)
}

// StormObs is the all-time query result for one storm: each retained
// parameter's full time-ordered value series. Times holds the decoded TIME
// column and is index-aligned with every series in Params.
type StormObs struct {
	ATCFID string             `json:"atcf_id"`
	Times  []time.Time        `json:"times"`
	Params map[string][]Datum `json:"params"`
}

// Len returns the number of observations.
func (o *StormObs) Len() int {
	return len(o.Times)
}

// Obs is the single-timestamp query result for one storm.
type Obs struct {
	ATCFID string           `json:"atcf_id"`
	Time   time.Time        `json:"time"`
	Params map[string]Datum `json:"params"`
}
