package repositories

import (
	"fmt"
	"testing"

	"github.com/clubeapp/points-engine/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorHelpers(t *testing.T) {
	unique := &pgconn.PgError{Code: pgUniqueViolation}
	serialization := &pgconn.PgError{Code: pgSerializationFailure}
	deadlock := &pgconn.PgError{Code: pgDeadlockDetected}
	plain := fmt.Errorf("boom")

	if !isUniqueViolation(unique) {
		t.Error("isUniqueViolation() = false for 23505")
	}
	if isUniqueViolation(plain) || isUniqueViolation(serialization) {
		t.Error("isUniqueViolation() = true for non-unique error")
	}

	if !isRetryable(serialization) || !isRetryable(deadlock) {
		t.Error("isRetryable() = false for contention codes")
	}
	if isRetryable(unique) || isRetryable(plain) {
		t.Error("isRetryable() = true for non-contention error")
	}
	if !isRetryable(errors.New(errors.ErrCodeConcurrencyConflict, "balance row init race")) {
		t.Error("isRetryable() = false for CONCURRENCY_CONFLICT")
	}

	// Helpers see through wrapping.
	wrapped := fmt.Errorf("tx: %w", unique)
	if !isUniqueViolation(wrapped) {
		t.Error("isUniqueViolation() failed to unwrap")
	}
}

func TestWithRetrySucceedsEventually(t *testing.T) {
	attempts := 0
	err := withRetry(func() error {
		attempts++
		if attempts < 3 {
			return &pgconn.PgError{Code: pgSerializationFailure}
		}
		return nil
	})

	if err != nil {
		t.Errorf("withRetry() error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetryRecoversBalanceInitRace(t *testing.T) {
	attempts := 0
	err := withRetry(func() error {
		attempts++
		if attempts == 1 {
			return errors.Wrap(&pgconn.PgError{Code: pgUniqueViolation},
				errors.ErrCodeConcurrencyConflict, "balance row init race")
		}
		return nil
	})

	if err != nil {
		t.Errorf("withRetry() error = %v, want nil", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestWithRetryStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	appErr := errors.New(errors.ErrCodeInsufficientFunds, "insufficient balance")
	err := withRetry(func() error {
		attempts++
		return appErr
	})

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if errors.CodeOf(err) != errors.ErrCodeInsufficientFunds {
		t.Errorf("CodeOf() = %s, want INSUFFICIENT_FUNDS", errors.CodeOf(err))
	}
}

func TestWithRetryExhaustsToConcurrencyConflict(t *testing.T) {
	attempts := 0
	err := withRetry(func() error {
		attempts++
		return &pgconn.PgError{Code: pgDeadlockDetected}
	})

	if attempts != maxTxRetries {
		t.Errorf("attempts = %d, want %d", attempts, maxTxRetries)
	}
	if errors.CodeOf(err) != errors.ErrCodeConcurrencyConflict {
		t.Errorf("CodeOf() = %s, want CONCURRENCY_CONFLICT", errors.CodeOf(err))
	}
}
