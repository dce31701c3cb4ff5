package store

import (
	"context"
	"sort"
	"sync"

	id "dexrank/pkg/domain"
	"dexrank/pkg/platform/sentinel"

	"dexrank/internal/catalog/models"
)

// InMemoryStore serves a fixed catalog from memory. The seed slice is copied
// and sorted by dex number at construction, then never written again.
type InMemoryStore struct {
	mu   sync.RWMutex
	byID map[id.PokemonID]*models.Pokemon
	all  []*models.Pokemon
}

func NewInMemory(seed []*models.Pokemon) *InMemoryStore {
	s := &InMemoryStore{byID: make(map[id.PokemonID]*models.Pokemon, len(seed))}
	for _, p := range seed {
		cp := *p
		s.byID[p.ID] = &cp
		s.all = append(s.all, &cp)
	}
	sort.Slice(s.all, func(i, j int) bool { return s.all[i].DexNumber < s.all[j].DexNumber })
	return s
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]*models.Pokemon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Pokemon, len(s.all))
	for i, p := range s.all {
		cp := *p
		out[i] = &cp
	}
	return out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, pokemonID id.PokemonID) (*models.Pokemon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[pokemonID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}
