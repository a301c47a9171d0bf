package repositories

import (
	"context"
	"time"

	"pharmacy_pos_backend/internal/database"
)

// ReceiptSequenceRepository keeps one counter row per receipt prefix. The row
// is locked and advanced inside the checkout transaction.
type ReceiptSequenceRepository interface {
	EnsureSequence(ctx context.Context, executor SQLExecutor, prefix string, start int64) error
	LockSequence(ctx context.Context, executor SQLExecutor, prefix string) (int64, error)
	AdvanceSequence(ctx context.Context, executor SQLExecutor, prefix string, value int64) error
}

type receiptSequenceRepository struct{}

func NewReceiptSequenceRepository() ReceiptSequenceRepository {
	return &receiptSequenceRepository{}
}

// EnsureSequence creates the counter row at start unless it already exists.
func (r *receiptSequenceRepository) EnsureSequence(ctx context.Context, executor SQLExecutor, prefix string, start int64) error {
	query := executor.Rebind(`INSERT INTO receipt_sequences (prefix, last_value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (prefix) DO NOTHING`)
	if _, err := executor.ExecContext(ctx, query, prefix, start, time.Now().UTC()); err != nil {
		return wrapError(err, "creating receipt sequence")
	}
	return nil
}

// LockSequence reads the last issued value for prefix, holding the row lock until commit.
func (r *receiptSequenceRepository) LockSequence(ctx context.Context, executor SQLExecutor, prefix string) (int64, error) {
	var last int64
	query := executor.Rebind(`SELECT last_value FROM receipt_sequences WHERE prefix = ?` + database.ForUpdate(executor.DriverName()))
	if err := executor.GetContext(ctx, &last, query, prefix); err != nil {
		return 0, wrapError(err, "locking receipt sequence")
	}
	return last, nil
}

func (r *receiptSequenceRepository) AdvanceSequence(ctx context.Context, executor SQLExecutor, prefix string, value int64) error {
	query := executor.Rebind(`UPDATE receipt_sequences SET last_value = ?, updated_at = ? WHERE prefix = ? AND last_value < ?`)
	result, err := executor.ExecContext(ctx, query, value, time.Now().UTC(), prefix, value)
	if err != nil {
		return wrapError(err, "advancing receipt sequence")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
