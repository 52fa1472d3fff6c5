package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError carries a machine-readable code alongside the human message.
// Codes are stable: transports map them to status codes, clients switch on them.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf extracts the code from an AppError anywhere in the chain.
// Unrecognized errors report as internal.
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Common error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// Ledger and redemption error codes
const (
	ErrCodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeAlreadyCheckedIn    = "ALREADY_CHECKED_IN"
	ErrCodeAlreadyPaid         = "ALREADY_PAID"
	ErrCodeAlreadyRefunded     = "ALREADY_REFUNDED"
	ErrCodeWindowClosed        = "WINDOW_CLOSED"
	ErrCodeTimestampSkew       = "TIMESTAMP_SKEW"
	ErrCodeCheckoutExpired     = "CHECKOUT_EXPIRED"
	ErrCodeOwnershipMismatch   = "OWNERSHIP_MISMATCH"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)
