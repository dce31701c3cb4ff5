package service

import (
	"context"
	"sync"
	"time"

	dErrors "dexrank/pkg/domain-errors"

	userstore "dexrank/internal/user/store"
)

// StoreTx provides the transactional boundary for user writes, closing the
// check-then-create race on email uniqueness.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(store userstore.Store) error) error
}

const defaultTxTimeout = 5 * time.Second

// InMemoryTx serializes transactions over an in-memory store with one mutex.
type InMemoryTx struct {
	mu      sync.Mutex
	store   userstore.Store
	timeout time.Duration
}

func NewInMemoryTx(store userstore.Store) *InMemoryTx {
	return &InMemoryTx{store: store}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(store userstore.Store) error) error {
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

	return fn(t.store)
}
