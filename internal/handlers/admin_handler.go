package handlers

import (
	"net/http"

	"github.com/clubeapp/points-engine/internal/services"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adjustments *services.AdjustmentService
}

func NewAdminHandler(adjustments *services.AdjustmentService) *AdminHandler {
	return &AdminHandler{adjustments: adjustments}
}

func (h *AdminHandler) Grant(c *gin.Context) {
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.adjustments.Grant(c.Request.Context(), req.UserID, req.Amount, req.Reason, req.AdminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toLedgerEntryResponse(entry))
}

func (h *AdminHandler) Deduct(c *gin.Context) {
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.adjustments.Deduct(c.Request.Context(), req.UserID, req.Amount, req.Reason, req.AdminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toLedgerEntryResponse(entry))
}

func (h *AdminHandler) Refund(c *gin.Context) {
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.adjustments.Refund(c.Request.Context(), req.EntryID, req.Reason, req.AdminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toLedgerEntryResponse(entry))
}
