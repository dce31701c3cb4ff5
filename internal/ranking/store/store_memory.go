package store

import (
	"context"
	"sort"
	"sync"

	id "dexrank/pkg/domain"
	"dexrank/pkg/platform/sentinel"

	"dexrank/internal/ranking/models"
)

type ownerTitle struct {
	owner id.UserID
	title string
}

// InMemoryStore keeps rankings in maps guarded by a RWMutex, mirroring the
// database's (owner, title) unique constraint with a secondary index.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.RankingID]*models.Ranking
	byTitle map[ownerTitle]id.RankingID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.RankingID]*models.Ranking),
		byTitle: make(map[ownerTitle]id.RankingID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, ranking *models.Ranking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ownerTitle{ranking.OwnerID, ranking.Title}
	if _, ok := s.byTitle[key]; ok {
		return sentinel.ErrConflict
	}
	s.byID[ranking.ID] = ranking.Clone()
	s.byTitle[key] = ranking.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, rankingID id.RankingID) (*models.Ranking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[rankingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *InMemoryStore) FindByOwnerAndTitle(_ context.Context, ownerID id.UserID, title string) (*models.Ranking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rankingID, ok := s.byTitle[ownerTitle{ownerID, title}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byID[rankingID].Clone(), nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Ranking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Ranking
	for _, r := range s.byID {
		if r.OwnerID == ownerID {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) CountsByOwner(_ context.Context, ownerID id.UserID) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var counts []int
	for _, r := range s.byID {
		if r.OwnerID == ownerID {
			counts = append(counts, len(r.Pokemon))
		}
	}
	return counts, nil
}

func (s *InMemoryStore) Update(_ context.Context, ranking *models.Ranking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[ranking.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	newKey := ownerTitle{ranking.OwnerID, ranking.Title}
	if other, ok := s.byTitle[newKey]; ok && other != ranking.ID {
		return sentinel.ErrConflict
	}
	delete(s.byTitle, ownerTitle{existing.OwnerID, existing.Title})
	s.byID[ranking.ID] = ranking.Clone()
	s.byTitle[newKey] = ranking.ID
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, rankingID id.RankingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[rankingID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byTitle, ownerTitle{existing.OwnerID, existing.Title})
	delete(s.byID, rankingID)
	return nil
}
