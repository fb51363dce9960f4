// Package errors provides categorized errors shared by the engine, the
// workers, and the ops API.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/camsettings-bot/internal/types"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryParse represents a message no command pattern matched
	CategoryParse ErrorCategory = "parse"
	// CategoryStore represents a settings store failure
	CategoryStore ErrorCategory = "store"
	// CategoryGateway represents a messaging gateway failure
	CategoryGateway ErrorCategory = "gateway"
	// CategoryValidation represents invalid user-supplied input
	CategoryValidation ErrorCategory = "validation"
	// CategorySystem represents an internal failure
	CategorySystem ErrorCategory = "system"
)

// CategorizedError represents an error with a category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// ToServiceError converts to a ServiceError for API responses
func (e *CategorizedError) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: map[string]interface{}{"category": string(e.Category)},
	}
}

// NewStoreError wraps a settings store failure
func NewStoreError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryStore,
		StatusCode: http.StatusInternalServerError,
		Code:       "STORE_ERROR",
		Message:    fmt.Sprintf("settings store operation failed: %s", operation),
		Cause:      cause,
	}
}

// NewGatewayError wraps a messaging gateway failure
func NewGatewayError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryGateway,
		StatusCode: http.StatusBadGateway,
		Code:       "GATEWAY_ERROR",
		Message:    fmt.Sprintf("gateway operation failed: %s", operation),
		Cause:      cause,
	}
}

// NewValidationError reports invalid user input
func NewValidationError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       "INVALID_INPUT",
		Message:    message,
	}
}

// IsStoreError reports whether err is (or wraps) a store failure
func IsStoreError(err error) bool {
	var categorized *CategorizedError
	if errors.As(err, &categorized) {
		return categorized.Category == CategoryStore
	}
	return false
}
