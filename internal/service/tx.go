package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// inTx runs fn in a transaction, committing only when fn succeeds.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// lockedTx is inTx run under the tournament's lock. The lock is released before
// lockedTx returns, so callers notify without holding it.
func lockedTx(ctx context.Context, db *sqlx.DB, tournamentID uuid.UUID, fn func(tx *sqlx.Tx) error) error {
	unlock := tournamentLocks.Lock(tournamentID)
	defer unlock()
	return inTx(ctx, db, fn)
}
