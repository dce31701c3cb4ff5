package models

import (
	"strings"
	"time"

	id "dexrank/pkg/domain"
	dErrors "dexrank/pkg/domain-errors"
)

const (
	// TitleMinLength and TitleMaxLength bound ranking titles.
	TitleMinLength = 1
	TitleMaxLength = 100
)

// Ranking is an ordered Pokémon list owned by exactly one user. Position in
// the Pokemon slice is the rank (1-indexed from the caller's point of view).
// Zones partition positions into named, colored tiers.
type Ranking struct {
	ID        id.RankingID
	OwnerID   id.UserID // immutable after creation
	Title     string    // unique per owner, case-sensitive
	Pokemon   []id.PokemonID
	Zones     []Zone
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRanking validates and constructs a ranking. Title bounds and zone
// consistency are enforced here so no store ever sees an invalid ranking.
func NewRanking(rankingID id.RankingID, ownerID id.UserID, title string, pokemon []id.PokemonID, zones []Zone, now time.Time) (*Ranking, error) {
	title = strings.TrimSpace(title)
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := ValidateZones(zones, len(pokemon)); err != nil {
		return nil, err
	}
	return &Ranking{
		ID:        rankingID,
		OwnerID:   ownerID,
		Title:     title,
		Pokemon:   append([]id.PokemonID(nil), pokemon...),
		Zones:     append([]Zone(nil), zones...),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateTitle enforces the title length bounds shared by rankings and boxes.
func ValidateTitle(title string) error {
	if len(title) < TitleMinLength {
		return dErrors.New(dErrors.CodeValidation, "title must not be empty")
	}
	if len(title) > TitleMaxLength {
		return dErrors.Newf(dErrors.CodeValidation, "title must be at most %d characters", TitleMaxLength)
	}
	return nil
}

// Clone returns a deep copy so stores can hand out values without aliasing
// their internal state.
func (r *Ranking) Clone() *Ranking {
	if r == nil {
		return nil
	}
	out := *r
	out.Pokemon = append([]id.PokemonID(nil), r.Pokemon...)
	out.Zones = append([]Zone(nil), r.Zones...)
	for i, z := range r.Zones {
		if z.End != nil {
			end := *z.End
			out.Zones[i].End = &end
		}
	}
	return &out
}
