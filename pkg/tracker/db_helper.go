package tracker

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

// WithTx runs fn in a database transaction. The transaction commits when fn
// returns nil and rolls back on error or panic.
func (c *Core) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return runTx(ctx, c.db, c.logger, fn)
}

func runTx(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return WrapError(ErrCodeDatabase, "begin transaction", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Error("transaction rollback failed", "err", rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return WrapError(ErrCodeDatabase, "commit transaction", err)
	}
	committed = true
	return nil
}
