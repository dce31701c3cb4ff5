// Package store persists rankings. Uniqueness of (owner, title) is enforced
// by the backing implementation so concurrent creators are arbitrated at
// commit time, not by application-level checks.
package store

import (
	"context"

	id "dexrank/pkg/domain"

	"dexrank/internal/ranking/models"
)

// Store is the ranking persistence contract. Implementations return
// sentinel.ErrNotFound for missing rankings and sentinel.ErrConflict when the
// (owner, title) uniqueness constraint rejects a write.
type Store interface {
	Create(ctx context.Context, ranking *models.Ranking) error
	FindByID(ctx context.Context, rankingID id.RankingID) (*models.Ranking, error)
	// FindByOwnerAndTitle does an exact, case-sensitive title match.
	FindByOwnerAndTitle(ctx context.Context, ownerID id.UserID, title string) (*models.Ranking, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Ranking, error)
	// CountsByOwner returns the Pokémon count of each ranking the owner has,
	// without loading the rankings themselves.
	CountsByOwner(ctx context.Context, ownerID id.UserID) ([]int, error)
	Update(ctx context.Context, ranking *models.Ranking) error
	Delete(ctx context.Context, rankingID id.RankingID) error
}
