package services

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatReceiptNumber renders sequence n under prefix as PREFIX-NNNNNN.
func FormatReceiptNumber(prefix string, n int64, width int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("receipt sequence must be positive, got %d", n)
	}
	digits := strconv.FormatInt(n, 10)
	if len(digits) > width {
		return "", fmt.Errorf("receipt sequence %s exhausted: %d does not fit in %d digits", prefix, n, width)
	}
	return fmt.Sprintf("%s-%0*d", prefix, width, n), nil
}

// ParseReceiptNumber extracts the numeric suffix of a number issued under prefix.
func ParseReceiptNumber(prefix, receiptNumber string) (int64, error) {
	suffix, ok := strings.CutPrefix(receiptNumber, prefix+"-")
	if !ok || suffix == "" {
		return 0, fmt.Errorf("receipt number %q does not belong to series %s", receiptNumber, prefix)
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("receipt number %q has a non-numeric suffix", receiptNumber)
	}
	return n, nil
}
