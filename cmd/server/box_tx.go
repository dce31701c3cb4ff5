package main

import (
	"context"
	"database/sql"
	"time"

	boxservice "dexrank/internal/box/service"
	boxstore "dexrank/internal/box/store"
	userstore "dexrank/internal/user/store"
	dErrors "dexrank/pkg/domain-errors"
)

type boxPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newBoxPostgresTx(db *sql.DB, timeout time.Duration) *boxPostgresTx {
	return &boxPostgresTx{db: db, timeout: timeout}
}

func (t *boxPostgresTx) RunInTx(ctx context.Context, fn func(stores boxservice.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stores := boxservice.Stores{
		Users: userstore.NewPostgresTx(tx),
		Boxes: boxstore.NewPostgresTx(tx),
	}
	if err := fn(stores); err != nil {
		return err
	}

	return tx.Commit()
}
