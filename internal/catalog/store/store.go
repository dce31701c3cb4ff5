// Package store reads the Pokémon catalog.
package store

import (
	"context"

	id "dexrank/pkg/domain"

	"dexrank/internal/catalog/models"
)

// Store is the catalog read contract. ListAll returns entries in national dex
// order; FindByID returns sentinel.ErrNotFound for unknown references.
type Store interface {
	ListAll(ctx context.Context) ([]*models.Pokemon, error)
	FindByID(ctx context.Context, pokemonID id.PokemonID) (*models.Pokemon, error)
}
