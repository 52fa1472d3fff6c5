package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/clubeapp/points-engine/internal/services"
	"github.com/clubeapp/points-engine/pkg/errors"
	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	ledger    *services.LedgerService
	statement *services.StatementService
}

func NewLedgerHandler(ledger *services.LedgerService, statement *services.StatementService) *LedgerHandler {
	return &LedgerHandler{
		ledger:    ledger,
		statement: statement,
	}
}

func userIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(errors.ErrCodeValidation, "invalid user id")
	}
	return id, nil
}

func (h *LedgerHandler) Balance(c *gin.Context) {
	userID, err := userIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	balance, err := h.ledger.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := BalanceResponse{
		UserID:         balance.UserID,
		Balance:        balance.Balance,
		LifetimeEarned: balance.LifetimeEarned,
		LifetimeSpent:  balance.LifetimeSpent,
	}
	if !balance.LastTransactionAt.IsZero() {
		resp.LastTransactionAt = balance.LastTransactionAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) History(c *gin.Context) {
	userID, err := userIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.ledger.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		resp[i] = toLedgerEntryResponse(&entries[i])
	}
	c.JSON(http.StatusOK, resp)
}

// Statement streams the user's ledger history as an xlsx workbook.
func (h *LedgerHandler) Statement(c *gin.Context) {
	userID, err := userIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := h.statement.BuildStatement(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=statement-%d.xlsx", userID))
	if err := file.Write(c.Writer); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeInternalError, "failed to write statement"))
	}
}
