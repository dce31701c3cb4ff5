package main

import (
	"context"
	"database/sql"
	"time"

	userstore "dexrank/internal/user/store"
	dErrors "dexrank/pkg/domain-errors"
)

type userPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newUserPostgresTx(db *sql.DB, timeout time.Duration) *userPostgresTx {
	return &userPostgresTx{db: db, timeout: timeout}
}

func (t *userPostgresTx) RunInTx(ctx context.Context, fn func(store userstore.Store) error) error {
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

	if err := fn(userstore.NewPostgresTx(tx)); err != nil {
		return err
	}

	return tx.Commit()
}
