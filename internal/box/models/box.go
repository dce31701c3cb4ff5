package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	id "dexrank/pkg/domain"
	dErrors "dexrank/pkg/domain-errors"
)

const (
	// NameMinLength and NameMaxLength bound box names.
	NameMinLength = 1
	NameMaxLength = 100
)

// DefaultBoxID is the internal identity of the synthesized "all Pokémon" box.
// It is never persisted; the HTTP layer renders it as the "default" sentinel.
var DefaultBoxID = id.BoxID(uuid.Nil)

// DefaultBoxName is the fixed label of the synthesized default box.
const DefaultBoxName = "All Pokémon"

// Box is a named, ownable, optionally public collection of Pokémon.
// FavoriteCount only ever grows, and only through the favorite-copy flow.
type Box struct {
	ID            id.BoxID
	OwnerID       id.UserID
	Name          string // unique per owner, case-sensitive
	Public        bool
	Pokemon       []id.PokemonID // unordered set, stored deduplicated
	FavoriteCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBox validates and constructs a box owned by ownerID. Pokémon references
// are deduplicated since a box is a set, not a list.
func NewBox(boxID id.BoxID, ownerID id.UserID, name string, public bool, pokemon []id.PokemonID, now time.Time) (*Box, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &Box{
		ID:        boxID,
		OwnerID:   ownerID,
		Name:      name,
		Public:    public,
		Pokemon:   dedupe(pokemon),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DefaultBox synthesizes the virtual box holding every catalog Pokémon.
// It is computed on read, excluded from uniqueness and ownership invariants,
// and never written to any store.
func DefaultBox(ownerID id.UserID, pokemon []id.PokemonID) *Box {
	return &Box{
		ID:      DefaultBoxID,
		OwnerID: ownerID,
		Name:    DefaultBoxName,
		Public:  false,
		Pokemon: append([]id.PokemonID(nil), pokemon...),
	}
}

// IsDefault reports whether b is the synthesized default box.
func (b *Box) IsDefault() bool { return b.ID == DefaultBoxID }

// ValidateName enforces the box name length bounds.
func ValidateName(name string) error {
	if len(name) < NameMinLength {
		return dErrors.New(dErrors.CodeValidation, "name must not be empty")
	}
	if len(name) > NameMaxLength {
		return dErrors.Newf(dErrors.CodeValidation, "name must be at most %d characters", NameMaxLength)
	}
	return nil
}

// Clone returns a deep copy so stores can hand out values without aliasing
// their internal state.
func (b *Box) Clone() *Box {
	if b == nil {
		return nil
	}
	out := *b
	out.Pokemon = append([]id.PokemonID(nil), b.Pokemon...)
	return &out
}

func dedupe(in []id.PokemonID) []id.PokemonID {
	seen := make(map[id.PokemonID]struct{}, len(in))
	out := make([]id.PokemonID, 0, len(in))
	for _, p := range in {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
