package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "dexrank/pkg/domain-errors"
)

func intp(v int) *int { return &v }

func TestValidateZones(t *testing.T) {
	t.Run("empty zone set is valid", func(t *testing.T) {
		require.NoError(t, ValidateZones(nil, 0))
		require.NoError(t, ValidateZones([]Zone{}, 10))
	})

	t.Run("single bounded zone within capacity is valid", func(t *testing.T) {
		zones := []Zone{{Name: "S", Start: 1, End: intp(3), Color: "ff0000"}}
		require.NoError(t, ValidateZones(zones, 3))
	})

	t.Run("single unbounded zone is valid", func(t *testing.T) {
		zones := []Zone{{Name: "All", Start: 1, Color: "00ff00"}}
		require.NoError(t, ValidateZones(zones, 2))
	})

	t.Run("shared endpoint is an overlap", func(t *testing.T) {
		zones := []Zone{
			{Name: "S", Start: 1, End: intp(5), Color: "ff0000"},
			{Name: "A", Start: 5, End: intp(10), Color: "00ff00"},
		}
		err := ValidateZones(zones, 10)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("adjacent non-overlapping zones are valid", func(t *testing.T) {
		zones := []Zone{
			{Name: "S", Start: 1, End: intp(5), Color: "ff0000"},
			{Name: "A", Start: 6, End: intp(10), Color: "00ff00"},
		}
		require.NoError(t, ValidateZones(zones, 10))
	})

	t.Run("single-position zones back to back are rejected only when equal", func(t *testing.T) {
		require.NoError(t, ValidateZones([]Zone{
			{Name: "first", Start: 1, End: intp(1), Color: "aaaaaa"},
			{Name: "second", Start: 2, End: intp(2), Color: "bbbbbb"},
		}, 2))
		require.Error(t, ValidateZones([]Zone{
			{Name: "first", Start: 1, End: intp(1), Color: "aaaaaa"},
			{Name: "twin", Start: 1, End: intp(1), Color: "bbbbbb"},
		}, 2))
	})

	t.Run("any zone after an unbounded zone is rejected", func(t *testing.T) {
		zones := []Zone{
			{Name: "tail", Start: 1, Color: "ff0000"},
			{Name: "late", Start: 50, End: intp(60), Color: "00ff00"},
		}
		err := ValidateZones(zones, 100)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "unbounded")
	})

	t.Run("bounded end beyond capacity is rejected with detail", func(t *testing.T) {
		zones := []Zone{{Name: "S", Start: 1, End: intp(10), Color: "ff0000"}}
		err := ValidateZones(zones, 2)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), `"S"`)
		assert.Contains(t, err.Error(), "10")
		assert.Contains(t, err.Error(), "2 positions")
	})

	t.Run("structural violations", func(t *testing.T) {
		require.Error(t, ValidateZones([]Zone{{Name: "z", Start: 0, End: intp(2), Color: "ffffff"}}, 5))
		require.Error(t, ValidateZones([]Zone{{Name: "z", Start: 3, End: intp(2), Color: "ffffff"}}, 5))
		require.Error(t, ValidateZones([]Zone{{Name: "z", Start: 1, End: intp(2), Color: "red"}}, 5))
		require.Error(t, ValidateZones([]Zone{{Name: "z", Start: 1, End: intp(2), Color: "gggggg"}}, 5))
	})

	t.Run("input order does not matter", func(t *testing.T) {
		zones := []Zone{
			{Name: "B", Start: 6, End: intp(9), Color: "0000ff"},
			{Name: "S", Start: 1, End: intp(5), Color: "ff0000"},
		}
		require.NoError(t, ValidateZones(zones, 9))
	})
}

// TestValidateZones_Property generates random non-overlapping in-bounds zone
// sets, verifies they validate, then perturbs one zone to overlap or exceed
// capacity and verifies validation flips to failure.
func TestValidateZones_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 250; i++ {
		total := 5 + rng.Intn(200)
		zones := randomValidZones(rng, total)
		require.NoError(t, ValidateZones(zones, total), "zones=%v total=%d", zones, total)

		if len(zones) == 0 {
			continue
		}

		// Out-of-bounds perturbation: push one bounded end past capacity.
		oob := cloneZones(zones)
		j := rng.Intn(len(oob))
		oob[j].End = intp(total + 1 + rng.Intn(5))
		require.Error(t, ValidateZones(oob, total), "oob zones=%v total=%d", oob, total)

		// Overlap perturbation: extend a zone into its successor.
		if len(zones) >= 2 {
			ov := cloneZones(zones)
			ov[0].End = intp(ov[1].Start)
			require.Error(t, ValidateZones(ov, total), "overlap zones=%v total=%d", ov, total)
		}
	}
}

func randomValidZones(rng *rand.Rand, total int) []Zone {
	var zones []Zone
	next := 1
	for next <= total && len(zones) < 6 {
		if rng.Intn(3) == 0 {
			break
		}
		start := next + rng.Intn(3)
		if start > total {
			break
		}
		end := start + rng.Intn(total-start+1)
		zones = append(zones, Zone{
			Name:  "zone",
			Start: start,
			End:   intp(end),
			Color: "abc123",
		})
		next = end + 1
	}
	return zones
}

func cloneZones(zones []Zone) []Zone {
	out := append([]Zone(nil), zones...)
	for i, z := range zones {
		if z.End != nil {
			end := *z.End
			out[i].End = &end
		}
	}
	return out
}
