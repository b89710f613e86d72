package query

import (
	"github.com/stormlab/shipsdb/pkg/types"
)

// conversionFactors maps parameter codes to the multiplier that turns the
// stored integer into its physical value. Parameters not listed here are
// stored at full precision already.
var conversionFactors = map[string]float64{
	"LAT":  0.1,
	"LON":  0.1,
	"CSST": 0.1,
	"RSST": 0.1,
	"DSST": 0.1,
	"DSTA": 0.1,
	"NSST": 0.1,
	"XDST": 0.1,
	"U200": 0.1,
	"T150": 0.1,
	"T200": 0.1,
	"T250": 0.1,
	"SHRD": 0.1,
	"SHRS": 0.1,
}

// Convert turns a stored integer into a Datum, applying the parameter's
// conversion factor and mapping the missing sentinel to an absent value.
func Convert(param string, raw int64) types.Datum {
	if raw == types.MissingValue {
		return types.Datum{}
	}
	factor, ok := conversionFactors[param]
	if !ok {
		factor = 1.0
	}
	return types.Datum{Value: float64(raw) * factor, Valid: true}
}
