package types

import "fmt"

// Exclusion is the set of parameter names dropped during ingestion.
type Exclusion map[string]struct{}

// NewExclusion builds an Exclusion from a list of parameter names.
func NewExclusion(names []string) Exclusion {
	e := make(Exclusion, len(names))
	for _, n := range names {
		e[n] = struct{}{}
	}
	return e
}

// Excluded reports whether the parameter is on the exclusion list.
func (e Exclusion) Excluded(name string) bool {
	_, ok := e[name]
	return ok
}

// DefaultExclusion returns the canonical exclusion policy: TIME (redundant
// with the block header), the satellite-derived IR and principal-component
// arrays, and the total-precipitable-water distribution. These rows carry an
// array of values for a single time and do not fit the one-integer-per-column
// table layout.
func DefaultExclusion() Exclusion {
	names := []string{
		"TIME", "MTPW", "IRXX", "IR00", "IRM1", "IRM3",
		"PC00", "PCM1", "PCM3", "PSLV",
	}
	for i := 0; i < 20; i++ {
		names = append(names, fmt.Sprintf("PW%02d", i))
	}
	return NewExclusion(names)
}
