// Package domain defines typed identifiers shared across features.
//
// Each entity gets its own UUID-backed type so the compiler rejects
// cross-entity assignment (a BoxID can never flow into a ranking lookup).
// Parse helpers enforce the trust-boundary invariant that IDs arriving from
// the outside are valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "dexrank/pkg/domain-errors"
)

type (
	// UserID identifies a registered user.
	UserID uuid.UUID
	// RankingID identifies an ordered, zoned Pokémon ranking.
	RankingID uuid.UUID
	// BoxID identifies a named Pokémon box.
	BoxID uuid.UUID
	// PokemonID identifies a catalog Pokémon.
	PokemonID uuid.UUID
)

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id RankingID) String() string { return uuid.UUID(id).String() }
func (id BoxID) String() string     { return uuid.UUID(id).String() }
func (id PokemonID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id RankingID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id BoxID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id PokemonID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// NewUserID returns a freshly generated user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewRankingID returns a freshly generated ranking ID.
func NewRankingID() RankingID { return RankingID(uuid.New()) }

// NewBoxID returns a freshly generated box ID.
func NewBoxID() BoxID { return BoxID(uuid.New()) }

// NewPokemonID returns a freshly generated Pokémon ID.
func NewPokemonID() PokemonID { return PokemonID(uuid.New()) }

// ParseUserID parses and validates a user ID from its string form.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseRankingID parses and validates a ranking ID from its string form.
func ParseRankingID(s string) (RankingID, error) {
	u, err := parseUUID(s, "ranking id")
	return RankingID(u), err
}

// ParseBoxID parses and validates a box ID from its string form.
func ParseBoxID(s string) (BoxID, error) {
	u, err := parseUUID(s, "box id")
	return BoxID(u), err
}

// ParsePokemonID parses and validates a Pokémon ID from its string form.
func ParsePokemonID(s string) (PokemonID, error) {
	u, err := parseUUID(s, "pokemon id")
	return PokemonID(u), err
}

// ParsePokemonIDs parses a slice of Pokémon IDs, failing on the first bad one.
func ParsePokemonIDs(in []string) ([]PokemonID, error) {
	out := make([]PokemonID, 0, len(in))
	for _, s := range in {
		id, err := ParsePokemonID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be the nil UUID")
	}
	return u, nil
}
