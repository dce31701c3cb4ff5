package store

import (
	id "dexrank/pkg/domain"

	"dexrank/internal/catalog/models"
)

// BootstrapDex returns the starter catalog inserted on first boot so a fresh
// deployment has something to rank. IDs are minted per call; the postgres
// seeder ignores conflicts, so the first boot wins and restarts are no-ops.
func BootstrapDex() []*models.Pokemon {
	names := []struct {
		dex  int
		name string
	}{
		{1, "Bulbasaur"},
		{2, "Ivysaur"},
		{3, "Venusaur"},
		{4, "Charmander"},
		{5, "Charmeleon"},
		{6, "Charizard"},
		{7, "Squirtle"},
		{8, "Wartortle"},
		{9, "Blastoise"},
		{25, "Pikachu"},
		{94, "Gengar"},
		{131, "Lapras"},
		{133, "Eevee"},
		{143, "Snorlax"},
		{150, "Mewtwo"},
	}

	out := make([]*models.Pokemon, len(names))
	for i, n := range names {
		out[i] = &models.Pokemon{
			ID:        id.NewPokemonID(),
			DexNumber: n.dex,
			Name:      n.name,
		}
	}
	return out
}
