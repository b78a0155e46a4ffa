package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gridstonehq/gridstone-api/internal/platform/logger"
)

// TxFn runs inside a database transaction. Returning nil commits the
// transaction; returning an error rolls it back.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction begins a transaction on db, runs fn inside it, and
// commits or rolls back depending on fn's result. A panic inside fn
// rolls the transaction back before propagating. If rollback itself
// fails, the returned error reports both failures and wraps fn's error
// as the cause.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	settled := false
	defer func() {
		if settled {
			return
		}
		// Reached only when fn panicked. Release the transaction before
		// the panic continues up the stack.
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction during panic",
				slog.String("error", rbErr.Error()))
		}
	}()

	if err := fn(ctx, tx); err != nil {
		settled = true
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("transaction rollback failed",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("cause", err.Error()))
			return fmt.Errorf("transaction rollback failed: %v (caused by: %w)", rbErr, err)
		}
		log.Debug("transaction rolled back", slog.String("cause", err.Error()))
		return err
	}

	settled = true
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
