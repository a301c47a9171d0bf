package utils

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Standardized APIError response
type APIError struct {
	StatusCode int    `json:"-"`              // HTTP status code, not part of the body
	Code       string `json:"code,omitempty"` // Application-specific error code
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

// NewAPIError creates a new APIError instance
func NewAPIError(statusCode int, code string, message string, details string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return e.Code + ": " + e.Message + " (" + e.Details + ")"
	}
	return e.Code + ": " + e.Message
}

// RespondWithError sends a standardized JSON error response
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.StatusCode, gin.H{"error": err})
	c.Abort()
}

const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeTooManyRequests     = "TOO_MANY_REQUESTS"

	// Checkout
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeLotNotFound         = "LOT_NOT_FOUND"
	ErrCodeCustomerNotFound    = "CUSTOMER_NOT_FOUND"
	ErrCodePaymentTypeNotFound = "PAYMENT_TYPE_NOT_FOUND"
	ErrCodeCheckoutConflict    = "CHECKOUT_CONFLICT"
	ErrCodeConfiguration       = "CONFIGURATION_ERROR"
)

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidPasswordLength checks if password meets minimum length requirement.
func IsValidPasswordLength(password string, minLength int) bool {
	return len(password) >= minLength
}

// Helper to return a standard validation error
func RespondValidationFailed(c *gin.Context, details string) {
	RespondWithError(c, NewAPIError(http.StatusBadRequest, ErrCodeValidationFailed, "Input validation failed", details))
}

// RespondInternalError hides err from the client but keeps it on the gin context for GinLogger.
func RespondInternalError(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	RespondWithError(c, NewAPIError(http.StatusInternalServerError, ErrCodeInternalServerError, message, ""))
}
