package repositories

import (
	stderrors "errors"

	"github.com/clubeapp/points-engine/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes the repositories care about.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

const maxTxRetries = 3

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrCode(err) == pgUniqueViolation
}

func isRetryable(err error) bool {
	if errors.HasCode(err, errors.ErrCodeConcurrencyConflict) {
		return true
	}
	code := pgErrCode(err)
	return code == pgSerializationFailure || code == pgDeadlockDetected
}

// withRetry runs fn, retrying bounded times on lock contention. Typed
// application errors pass through untouched; contention that survives the
// retries surfaces as CONCURRENCY_CONFLICT, which callers may retry.
func withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = fn()
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return errors.Wrap(err, errors.ErrCodeConcurrencyConflict, "transaction contention, try again")
}
