package handlers

import (
	"net/http"

	"github.com/clubeapp/points-engine/internal/services"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkouts *services.CheckoutService
}

func NewCheckoutHandler(checkouts *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkouts: checkouts}
}

func (h *CheckoutHandler) CreatePdv(c *gin.Context) {
	var req CreatePdvRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pdv, err := h.checkouts.CreatePdv(c.Request.Context(), req.Name, req.CashbackRate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, PdvResponse{
		ID:           pdv.ID,
		Name:         pdv.Name,
		CashbackRate: pdv.CashbackRate.String(),
	})
}

func (h *CheckoutHandler) Create(c *gin.Context) {
	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	items := make([]services.CheckoutItemParams, len(req.Items))
	for i, item := range req.Items {
		items[i] = services.CheckoutItemParams{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPoints: item.UnitPoints,
			UnitMoney:  item.UnitMoney,
		}
	}

	result, err := h.checkouts.CreateCheckout(c.Request.Context(), req.PdvID, items)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCheckoutResponse(result.Checkout, result.QRPayload))
}

func (h *CheckoutHandler) Get(c *gin.Context) {
	checkout, err := h.checkouts.GetCheckout(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCheckoutResponse(checkout, ""))
}

func (h *CheckoutHandler) Bind(c *gin.Context) {
	var req BindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	checkout, err := h.checkouts.BindUser(c.Request.Context(), c.Param("code"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCheckoutResponse(checkout, ""))
}

func (h *CheckoutHandler) Pay(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.checkouts.PayWithPoints(c.Request.Context(), c.Param("code"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentResponse{
		OrderID:        result.OrderID,
		Code:           result.Code,
		PointsDebited:  result.PointsDebited,
		CashbackPoints: result.CashbackPoints,
		BalanceAfter:   result.BalanceAfter,
		AlreadyPaid:    result.AlreadyPaid,
	})
}

func (h *CheckoutHandler) ConfirmMoney(c *gin.Context) {
	var req ConfirmMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.checkouts.ConfirmMoneyPayment(c.Request.Context(), c.Param("code"), req.ExternalRef)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentResponse{
		OrderID:        result.OrderID,
		Code:           result.Code,
		PointsDebited:  result.PointsDebited,
		CashbackPoints: result.CashbackPoints,
		BalanceAfter:   result.BalanceAfter,
		AlreadyPaid:    result.AlreadyPaid,
	})
}

func (h *CheckoutHandler) Cancel(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	checkout, err := h.checkouts.Cancel(c.Request.Context(), c.Param("code"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCheckoutResponse(checkout, ""))
}
