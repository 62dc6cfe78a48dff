package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
)

// TxFn is a unit of work run by RunInTransaction. Stores obtained through
// WithTx(tx) inside it share the transaction.
type TxFn func(ctx context.Context, tx *sqlx.Tx) error

// RunInTransaction runs fn in one transaction on db. Saving a set with its
// cards and recording a batch of study results both go through here so a
// partial write is never visible. A nil return from fn commits; an error or a
// panic rolls back, and the panic is re-raised after the rollback.
func RunInTransaction(ctx context.Context, db *sqlx.DB, fn TxFn) (err error) {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("could not begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		p := recover()
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback failed", slog.String("error", rbErr.Error()), slog.Any("panic", p))
			if p == nil && err != nil {
				err = fmt.Errorf("rollback failed: %v (cause: %w)", rbErr, err)
			}
		} else if p != nil {
			log.Error("rolled back after panic", slog.Any("panic", p))
		}
		if p != nil {
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		log.Debug("rolling back transaction", slog.String("error", err.Error()))
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error("could not commit transaction", slog.String("error", err.Error()))
		// sql.Tx is done after a failed Commit; the deferred Rollback returns ErrTxDone.
		committed = true
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}
	committed = true
	return nil
}
