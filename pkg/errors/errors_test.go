package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	plain := New(ErrCodeNotFound, "window not found")
	if plain.Error() != "NOT_FOUND: window not found" {
		t.Errorf("Error() = %q", plain.Error())
	}

	wrapped := Wrap(fmt.Errorf("row missing"), ErrCodeNotFound, "window not found")
	if wrapped.Error() != "NOT_FOUND: window not found (row missing)" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	wrapped := Wrap(cause, ErrCodeInternalError, "database unavailable")

	if !stderrors.Is(wrapped, cause) {
		t.Error("wrapped error does not match its cause")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"app error", New(ErrCodeInsufficientFunds, "insufficient balance"), ErrCodeInsufficientFunds},
		{"wrapped app error", fmt.Errorf("handler: %w", New(ErrCodeWindowClosed, "closed")), ErrCodeWindowClosed},
		{"plain error", fmt.Errorf("boom"), ErrCodeInternalError},
		{"nil-adjacent wrap", Wrap(nil, ErrCodeValidation, "bad input"), ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := New(ErrCodeAlreadyPaid, "checkout already settled")

	if !HasCode(err, ErrCodeAlreadyPaid) {
		t.Error("HasCode() = false for matching code")
	}
	if HasCode(err, ErrCodeAlreadyRefunded) {
		t.Error("HasCode() = true for non-matching code")
	}
	if HasCode(fmt.Errorf("boom"), ErrCodeAlreadyPaid) {
		t.Error("HasCode() = true for plain error")
	}
}
