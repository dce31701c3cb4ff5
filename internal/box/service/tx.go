package service

import (
	"context"
	"sync"
	"time"

	dErrors "dexrank/pkg/domain-errors"

	boxstore "dexrank/internal/box/store"
	userstore "dexrank/internal/user/store"
)

// Stores bundles the store set visible inside one transaction. Box mutations
// touch the box table and the owner's reference array; the favorite flow
// additionally bumps the source box's counter, and all of it must commit or
// roll back together.
type Stores struct {
	Users userstore.Store
	Boxes boxstore.Store
}

// StoreTx provides the transactional boundary for box mutations.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(stores Stores) error) error
}

const defaultTxTimeout = 5 * time.Second

// InMemoryTx serializes transactions over in-memory stores with one mutex.
type InMemoryTx struct {
	mu      sync.Mutex
	stores  Stores
	timeout time.Duration
}

func NewInMemoryTx(stores Stores) *InMemoryTx {
	return &InMemoryTx{stores: stores}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(stores Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(t.stores)
}
