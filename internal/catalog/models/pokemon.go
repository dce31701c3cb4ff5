// Package models holds the read-only Pokémon catalog types.
package models

import (
	id "dexrank/pkg/domain"
)

// Pokemon is a catalog entry. The catalog is reference data; nothing in the
// application mutates it after seeding.
type Pokemon struct {
	ID        id.PokemonID
	DexNumber int
	Name      string
}
