package store

import (
	"context"
	"sort"
	"sync"

	id "dexrank/pkg/domain"
	"dexrank/pkg/platform/sentinel"

	"dexrank/internal/box/models"
)

type ownerName struct {
	owner id.UserID
	name  string
}

// InMemoryStore keeps boxes in maps guarded by a RWMutex, mirroring the
// database's (owner, name) unique constraint with a secondary index.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[id.BoxID]*models.Box
	byName map[ownerName]id.BoxID
	seq    int // creation sequence, tiebreak for newest-first listing
	order  map[id.BoxID]int
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[id.BoxID]*models.Box),
		byName: make(map[ownerName]id.BoxID),
		order:  make(map[id.BoxID]int),
	}
}

func (s *InMemoryStore) Create(_ context.Context, box *models.Box) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ownerName{box.OwnerID, box.Name}
	if _, ok := s.byName[key]; ok {
		return sentinel.ErrConflict
	}
	s.byID[box.ID] = box.Clone()
	s.byName[key] = box.ID
	s.seq++
	s.order[box.ID] = s.seq
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, boxID id.BoxID) (*models.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byID[boxID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return b.Clone(), nil
}

func (s *InMemoryStore) FindByOwnerAndName(_ context.Context, ownerID id.UserID, name string) (*models.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	boxID, ok := s.byName[ownerName{ownerID, name}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byID[boxID].Clone(), nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Box
	for _, b := range s.byID {
		if b.OwnerID == ownerID {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] > s.order[out[j].ID] })
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, box *models.Box) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[box.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	newKey := ownerName{box.OwnerID, box.Name}
	if other, ok := s.byName[newKey]; ok && other != box.ID {
		return sentinel.ErrConflict
	}
	delete(s.byName, ownerName{existing.OwnerID, existing.Name})
	// Preserve the store-owned counter; Update never writes it.
	clone := box.Clone()
	clone.FavoriteCount = existing.FavoriteCount
	s.byID[box.ID] = clone
	s.byName[newKey] = box.ID
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, boxID id.BoxID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[boxID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byName, ownerName{existing.OwnerID, existing.Name})
	delete(s.byID, boxID)
	delete(s.order, boxID)
	return nil
}

func (s *InMemoryStore) IncrementFavoriteCount(_ context.Context, boxID id.BoxID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[boxID]
	if !ok {
		return sentinel.ErrNotFound
	}
	b.FavoriteCount++
	return nil
}
