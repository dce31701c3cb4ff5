package service

import (
	"context"
	"sync"
	"time"

	dErrors "dexrank/pkg/domain-errors"

	rankingstore "dexrank/internal/ranking/store"
	userstore "dexrank/internal/user/store"
)

// Stores bundles the store set visible inside one transaction. Ranking
// mutations touch the ranking table, the owner's reference array and the
// derived aggregate, so all three must commit or roll back together.
type Stores struct {
	Users    userstore.Store
	Rankings rankingstore.Store
}

// StoreTx provides the transactional boundary for ranking mutations.
// Implementations may wrap a database transaction or, in-memory, a coarse
// lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(stores Stores) error) error
}

const defaultTxTimeout = 5 * time.Second

// InMemoryTx serializes transactions over in-memory stores with one mutex.
// Coarse but correct; it backs unit tests and single-process runs.
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
