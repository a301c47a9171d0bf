package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPostgresErrorClassification(t *testing.T) {
	tests := []struct {
		code       pq.ErrorCode
		retryable  bool
		unique     bool
		foreignKey bool
	}{
		{"40001", true, false, false},  // serialization_failure
		{"40P01", true, false, false},  // deadlock_detected
		{"23505", false, true, false},  // unique_violation
		{"23503", false, false, true},  // foreign_key_violation
		{"23514", false, false, false}, // check_violation
		{"57014", false, false, false}, // query_canceled
	}
	for _, tt := range tests {
		err := fmt.Errorf("failed to decrement lot: %w", &pq.Error{Code: tt.code})
		assert.Equal(t, tt.retryable, IsRetryable(err), "retryable %s", tt.code)
		assert.Equal(t, tt.unique, IsUniqueViolation(err), "unique %s", tt.code)
		assert.Equal(t, tt.foreignKey, IsForeignKeyViolation(err), "foreign key %s", tt.code)
	}

	assert.False(t, IsRetryable(errors.New("connection reset")))
	assert.False(t, IsRetryable(nil))
}
