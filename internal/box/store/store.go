// Package store persists boxes. Uniqueness of (owner, name) is enforced by
// the backing implementation; the favorite counter is incremented atomically
// in the store so concurrent favoriters never lose updates.
package store

import (
	"context"

	id "dexrank/pkg/domain"

	"dexrank/internal/box/models"
)

// Store is the box persistence contract. Implementations return
// sentinel.ErrNotFound for missing boxes and sentinel.ErrConflict when the
// (owner, name) uniqueness constraint rejects a write.
type Store interface {
	Create(ctx context.Context, box *models.Box) error
	FindByID(ctx context.Context, boxID id.BoxID) (*models.Box, error)
	// FindByOwnerAndName does an exact, case-sensitive name match.
	FindByOwnerAndName(ctx context.Context, ownerID id.UserID, name string) (*models.Box, error)
	// ListByOwner returns the owner's boxes newest-first.
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Box, error)
	Update(ctx context.Context, box *models.Box) error
	Delete(ctx context.Context, boxID id.BoxID) error
	// IncrementFavoriteCount bumps the counter by exactly one using an atomic
	// store-side increment, never read-modify-write.
	IncrementFavoriteCount(ctx context.Context, boxID id.BoxID) error
}
