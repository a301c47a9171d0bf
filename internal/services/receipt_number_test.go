package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatReceiptNumber(t *testing.T) {
	got, err := FormatReceiptNumber("B001", 1, 6)
	require.NoError(t, err)
	assert.Equal(t, "B001-000001", got)

	got, err = FormatReceiptNumber("B002", 43, 6)
	require.NoError(t, err)
	assert.Equal(t, "B002-000043", got)

	got, err = FormatReceiptNumber("F001", 999999, 6)
	require.NoError(t, err)
	assert.Equal(t, "F001-999999", got)

	_, err = FormatReceiptNumber("F001", 1000000, 6)
	assert.Error(t, err)
	_, err = FormatReceiptNumber("F001", 0, 6)
	assert.Error(t, err)
}

func TestParseReceiptNumber(t *testing.T) {
	n, err := ParseReceiptNumber("B002", "B002-000042")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	for _, bad := range []string{"B001-000042", "B002-", "B002-00x1", "B002000042"} {
		_, err := ParseReceiptNumber("B002", bad)
		assert.Error(t, err, bad)
	}
}
