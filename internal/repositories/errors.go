package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pharmacy_pos_backend/internal/database"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It can be used to wrap more specific driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrInvalidReference is returned when a foreign key points at a missing row.
	ErrInvalidReference = errors.New("referenced record does not exist")

	// ErrStockConflict is returned when a guarded lot update finds less stock than expected.
	ErrStockConflict = errors.New("stock lot changed concurrently")
)

// SQLExecutor is satisfied by *sqlx.DB and *sqlx.Tx, so repository methods
// can run inside a service-owned transaction or directly on the pool.
type SQLExecutor interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// wrapError maps driver errors onto the package sentinels.
func wrapError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if database.IsRetryable(err) {
		// Keep the driver error visible so the service can retry.
		return fmt.Errorf("%w: %s: %w", ErrDatabaseError, action, err)
	}
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s: %v", ErrDuplicateKey, action, err)
	}
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s: %v", ErrInvalidReference, action, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", action, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrDatabaseError, action, err)
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?.
func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}
