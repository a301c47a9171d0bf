package utils

import "strings"

// NewNullString is a helper for string pointers, returning nil if string is empty.
// Useful for fields that are optional and should be NULL in DB if not provided.
func NewNullString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// NormalizeCode upper-cases and trims lookup codes such as "cash" -> "CASH".
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
