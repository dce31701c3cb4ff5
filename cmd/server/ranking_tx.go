package main

import (
	"context"
	"database/sql"
	"time"

	rankingservice "dexrank/internal/ranking/service"
	rankingstore "dexrank/internal/ranking/store"
	userstore "dexrank/internal/user/store"
	dErrors "dexrank/pkg/domain-errors"
)

type rankingPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newRankingPostgresTx(db *sql.DB, timeout time.Duration) *rankingPostgresTx {
	return &rankingPostgresTx{db: db, timeout: timeout}
}

func (t *rankingPostgresTx) RunInTx(ctx context.Context, fn func(stores rankingservice.Stores) error) error {
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

	stores := rankingservice.Stores{
		Users:    userstore.NewPostgresTx(tx),
		Rankings: rankingstore.NewPostgresTx(tx),
	}
	if err := fn(stores); err != nil {
		return err
	}

	return tx.Commit()
}
