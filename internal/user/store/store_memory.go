package store

import (
	"context"
	"sort"
	"sync"

	id "dexrank/pkg/domain"
	"dexrank/pkg/platform/sentinel"

	"dexrank/internal/user/models"
)

// InMemoryStore keeps users in maps guarded by a RWMutex. Used by unit tests
// and local development; the coarse in-memory transaction runner provides
// the cross-store atomicity postgres gets from real transactions.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return sentinel.ErrConflict
	}
	s.byID[user.ID] = user.Clone()
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byID[userID].Clone(), nil
}

func (s *InMemoryStore) AppendRanking(_ context.Context, userID id.UserID, rankingID id.RankingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.RankingIDs = append(u.RankingIDs, rankingID)
	return nil
}

func (s *InMemoryStore) RemoveRanking(_ context.Context, userID id.UserID, rankingID id.RankingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	out := u.RankingIDs[:0]
	for _, rid := range u.RankingIDs {
		if rid != rankingID {
			out = append(out, rid)
		}
	}
	u.RankingIDs = out
	return nil
}

func (s *InMemoryStore) AppendBox(_ context.Context, userID id.UserID, boxID id.BoxID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.BoxIDs = append(u.BoxIDs, boxID)
	return nil
}

func (s *InMemoryStore) RemoveBox(_ context.Context, userID id.UserID, boxID id.BoxID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	out := u.BoxIDs[:0]
	for _, bid := range u.BoxIDs {
		if bid != boxID {
			out = append(out, bid)
		}
	}
	u.BoxIDs = out
	return nil
}

func (s *InMemoryStore) SetHighestRankedCount(_ context.Context, userID id.UserID, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.HighestRankedCount = count
	return nil
}

func (s *InMemoryStore) ListByHighestRanked(_ context.Context, limit int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*models.User, 0, len(s.byID))
	for _, u := range s.byID {
		users = append(users, u.Clone())
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].HighestRankedCount != users[j].HighestRankedCount {
			return users[i].HighestRankedCount > users[j].HighestRankedCount
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}
