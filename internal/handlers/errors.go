package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/clubeapp/points-engine/pkg/errors"
	"github.com/clubeapp/points-engine/pkg/logger"
	"github.com/gin-gonic/gin"
)

// statusFor maps application error codes to HTTP statuses. Routine outcomes
// like insufficient balance or an expired QR are client-visible conditions,
// not server failures.
func statusFor(code string) int {
	switch code {
	case errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidAmount, errors.ErrCodeTimestampSkew:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInsufficientFunds:
		return http.StatusPaymentRequired
	case errors.ErrCodeAlreadyCheckedIn,
		errors.ErrCodeAlreadyPaid,
		errors.ErrCodeAlreadyRefunded,
		errors.ErrCodeOwnershipMismatch:
		return http.StatusConflict
	case errors.ErrCodeWindowClosed, errors.ErrCodeCheckoutExpired:
		return http.StatusGone
	case errors.ErrCodeConcurrencyConflict:
		return http.StatusServiceUnavailable
	case errors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	status := statusFor(code)

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"code": errors.ErrCodeInternalError, "error": "internal server error"})
		return
	}

	var message string
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
	} else {
		message = err.Error()
	}

	c.JSON(status, gin.H{"code": code, "error": message})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": errors.ErrCodeValidation, "error": err.Error()})
}
