package handlers

import (
	"net/http"

	"github.com/clubeapp/points-engine/internal/services"
	"github.com/gin-gonic/gin"
)

type TransferHandler struct {
	transfers *services.TransferService
}

func NewTransferHandler(transfers *services.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

func (h *TransferHandler) Create(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.transfers.Transfer(c.Request.Context(), req.SenderID, req.RecipientID, req.Amount, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransferResponse{
		TransactionID:      result.TransactionID,
		Amount:             result.Amount,
		RecipientID:        result.RecipientID,
		SenderBalanceAfter: result.SenderBalanceAfter,
	})
}
