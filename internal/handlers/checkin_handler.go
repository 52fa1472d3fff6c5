package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/clubeapp/points-engine/internal/services"
	"github.com/clubeapp/points-engine/pkg/errors"
	"github.com/gin-gonic/gin"
)

type CheckinHandler struct {
	checkins        *services.CheckinService
	defaultInterval time.Duration
}

func NewCheckinHandler(checkins *services.CheckinService, defaultInterval time.Duration) *CheckinHandler {
	return &CheckinHandler{
		checkins:        checkins,
		defaultInterval: defaultInterval,
	}
}

func eventIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(errors.ErrCodeValidation, "invalid event id")
	}
	return id, nil
}

func (h *CheckinHandler) ScheduleWindows(c *gin.Context) {
	eventID, err := eventIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req ScheduleWindowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	interval := h.defaultInterval
	if req.IntervalMinutes > 0 {
		interval = time.Duration(req.IntervalMinutes) * time.Minute
	}

	windows, err := h.checkins.ScheduleWindows(c.Request.Context(), eventID, req.Start, interval, req.Count, req.Points)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]WindowResponse, len(windows))
	for i, window := range windows {
		resp[i] = WindowResponse{
			EventID:       window.EventID,
			CheckinNumber: window.CheckinNumber,
			PointsAwarded: window.PointsAwarded,
			OpensAt:       window.OpensAt.Format(time.RFC3339),
			ClosesAt:      window.ClosesAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CheckinHandler) IssueQR(c *gin.Context) {
	eventID, err := eventIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		respondError(c, errors.New(errors.ErrCodeValidation, "invalid check-in number"))
		return
	}

	payload, err := h.checkins.IssueQRPayload(c.Request.Context(), eventID, number)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, QRPayloadResponse{
		EventID:       payload.EventID,
		CheckinNumber: payload.CheckinNumber,
		SecurityToken: payload.SecurityToken,
		Timestamp:     payload.Timestamp.Format(time.RFC3339),
		QR:            payload.SignedPayload,
	})
}

func (h *CheckinHandler) Checkin(c *gin.Context) {
	var req CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.checkins.Checkin(c.Request.Context(), req.UserID, req.EventID, req.CheckinNumber, req.SecurityToken, req.Timestamp)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CheckinResponse{
		RecordID:      result.RecordID,
		EventID:       result.EventID,
		CheckinNumber: result.CheckinNumber,
		PointsAwarded: result.PointsAwarded,
		BalanceAfter:  result.BalanceAfter,
	})
}
