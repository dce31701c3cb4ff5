// Package store persists users and the denormalized references to the
// rankings and boxes they own. Array push/pull operations are primitive here
// so services can pair them with entity writes inside one transaction.
package store

import (
	"context"

	id "dexrank/pkg/domain"

	"dexrank/internal/user/models"
)

// Store is the user persistence contract. Implementations return
// sentinel.ErrNotFound for missing users and sentinel.ErrConflict when a
// uniqueness constraint (email) rejects a write.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	AppendRanking(ctx context.Context, userID id.UserID, rankingID id.RankingID) error
	RemoveRanking(ctx context.Context, userID id.UserID, rankingID id.RankingID) error
	AppendBox(ctx context.Context, userID id.UserID, boxID id.BoxID) error
	RemoveBox(ctx context.Context, userID id.UserID, boxID id.BoxID) error

	SetHighestRankedCount(ctx context.Context, userID id.UserID, count int) error
	ListByHighestRanked(ctx context.Context, limit int) ([]*models.User, error)
}
