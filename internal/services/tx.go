package services

import (
	"context"
	"errors"
	"fmt"

	"pharmacy_pos_backend/internal/database"
	"pharmacy_pos_backend/internal/repositories"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// runInTx runs fn in a transaction, committing when it returns nil. Serialization
// failures and deadlocks roll back and run fn again, up to attempts times; if they
// persist the result wraps conflictErr.
func runInTx(ctx context.Context, db *sqlx.DB, attempts int, conflictErr error, fn func(tx *sqlx.Tx) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := runOnce(ctx, db, fn)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			utils.LogDebug("Transaction rolled back", map[string]interface{}{"attempt": attempt, "error": err.Error()})
			return err
		}
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
		utils.LogWarn("Transaction conflict, retrying", map[string]interface{}{
			"attempt": attempt, "max_attempts": attempts, "error": err.Error(),
		})
	}
	return fmt.Errorf("%w: %v", conflictErr, lastErr)
}

func runOnce(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isTransient(err error) bool {
	return database.IsRetryable(err) || errors.Is(err, repositories.ErrStockConflict)
}
