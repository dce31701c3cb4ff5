package models

import (
	"sort"

	dErrors "dexrank/pkg/domain-errors"
)

// Zone is a named, colored, contiguous range of ranking positions embedded in
// a Ranking. Start is 1-based. A nil End means "to the end of the list"; an
// unbounded zone must be the last zone.
type Zone struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   *int   `json:"end"` // nil = unbounded
	Color string `json:"color"`
}

// Bounded reports whether the zone has an explicit upper bound.
func (z Zone) Bounded() bool { return z.End != nil }

// ValidateZones checks a ranking's zone set against its current Pokémon count.
//
// Rules, applied to the zones sorted by start position:
//   - start >= 1, and end >= start when bounded;
//   - a bounded end must not exceed totalPositions;
//   - a zone may never follow an unbounded zone;
//   - adjacent zones must not overlap: previous end >= next start is rejected,
//     so [1,5] followed by [5,10] fails while [1,5] then [6,10] passes.
//
// Empty and single-zone inputs are valid (a single unbounded zone included).
// The function is pure; it is called on every ranking write where either the
// effective zones or the effective Pokémon count changes, because shrinking
// the list can invalidate a previously valid bounded zone.
func ValidateZones(zones []Zone, totalPositions int) error {
	if len(zones) == 0 {
		return nil
	}

	for _, z := range zones {
		if !isHexColor(z.Color) {
			return dErrors.Newf(dErrors.CodeValidation,
				"zone %q has invalid color %q: want 6 hex digits", z.Name, z.Color)
		}
		if z.Start < 1 {
			return dErrors.Newf(dErrors.CodeValidation,
				"zone %q starts at %d: positions are 1-based", z.Name, z.Start)
		}
		if z.End != nil && *z.End < z.Start {
			return dErrors.Newf(dErrors.CodeValidation,
				"zone %q has interval [%d, %d]: end precedes start", z.Name, z.Start, *z.End)
		}
		if z.End != nil && *z.End > totalPositions {
			return dErrors.Newf(dErrors.CodeValidation,
				"zone %q ends at %d but the ranking only has %d positions", z.Name, *z.End, totalPositions)
		}
	}

	sorted := append([]Zone(nil), zones...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		if prev.End == nil {
			return dErrors.Newf(dErrors.CodeValidation,
				"zone %q follows unbounded zone %q: an unbounded zone must be last", next.Name, prev.Name)
		}
		if *prev.End >= next.Start {
			return dErrors.Newf(dErrors.CodeValidation,
				"zones %q and %q overlap: [%d, %d] reaches into position %d", prev.Name, next.Name, prev.Start, *prev.End, next.Start)
		}
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
