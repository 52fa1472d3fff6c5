package handlers

import (
	"time"

	"github.com/clubeapp/points-engine/internal/models"
	"github.com/shopspring/decimal"
)

type BalanceResponse struct {
	UserID            int64  `json:"user_id"`
	Balance           int64  `json:"balance"`
	LifetimeEarned    int64  `json:"lifetime_earned"`
	LifetimeSpent     int64  `json:"lifetime_spent"`
	LastTransactionAt string `json:"last_transaction_at,omitempty"`
}

type LedgerEntryResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Amount       int64  `json:"amount"`
	BalanceAfter int64  `json:"balance_after"`
	Source       string `json:"source"`
	SourceID     string `json:"source_id,omitempty"`
	Description  string `json:"description,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func toLedgerEntryResponse(entry *models.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:           entry.ID,
		Type:         entry.Type,
		Amount:       entry.Amount,
		BalanceAfter: entry.BalanceAfter,
		Source:       entry.Source,
		SourceID:     entry.SourceID,
		Description:  entry.Description,
		CreatedAt:    entry.CreatedAt.Format(time.RFC3339),
	}
}

type TransferRequest struct {
	SenderID    int64  `json:"sender_id" binding:"required"`
	RecipientID int64  `json:"recipient_id" binding:"required"`
	Amount      int64  `json:"amount" binding:"required"`
	Message     string `json:"message"`
}

type TransferResponse struct {
	TransactionID      string `json:"transaction_id"`
	Amount             int64  `json:"amount"`
	RecipientID        int64  `json:"recipient_id"`
	SenderBalanceAfter int64  `json:"sender_balance_after"`
}

type AdjustmentRequest struct {
	UserID  int64  `json:"user_id" binding:"required"`
	Amount  int64  `json:"amount" binding:"required"`
	Reason  string `json:"reason" binding:"required"`
	AdminID int64  `json:"admin_id" binding:"required"`
}

type RefundRequest struct {
	EntryID string `json:"entry_id" binding:"required"`
	Reason  string `json:"reason" binding:"required"`
	AdminID int64  `json:"admin_id" binding:"required"`
}

type ScheduleWindowsRequest struct {
	Start           time.Time `json:"start" binding:"required"`
	IntervalMinutes int       `json:"interval_minutes"`
	Count           int       `json:"count" binding:"required"`
	Points          int64     `json:"points" binding:"required"`
}

type WindowResponse struct {
	EventID       int64  `json:"event_id"`
	CheckinNumber int    `json:"checkin_number"`
	PointsAwarded int64  `json:"points_awarded"`
	OpensAt       string `json:"opens_at"`
	ClosesAt      string `json:"closes_at"`
}

type QRPayloadResponse struct {
	EventID       int64  `json:"event_id"`
	CheckinNumber int    `json:"checkin_number"`
	SecurityToken string `json:"security_token"`
	Timestamp     string `json:"timestamp"`
	QR            string `json:"qr"`
}

type CheckinRequest struct {
	UserID        int64     `json:"user_id" binding:"required"`
	EventID       int64     `json:"event_id" binding:"required"`
	CheckinNumber int       `json:"checkin_number" binding:"required"`
	SecurityToken string    `json:"security_token" binding:"required"`
	Timestamp     time.Time `json:"timestamp" binding:"required"`
}

type CheckinResponse struct {
	RecordID      string `json:"record_id"`
	EventID       int64  `json:"event_id"`
	CheckinNumber int    `json:"checkin_number"`
	PointsAwarded int64  `json:"points_awarded"`
	BalanceAfter  int64  `json:"balance_after"`
}

type CreatePdvRequest struct {
	Name         string          `json:"name" binding:"required"`
	CashbackRate decimal.Decimal `json:"cashback_rate"`
}

type PdvResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CashbackRate string `json:"cashback_rate"`
}

type CheckoutItemRequest struct {
	ProductID  int64           `json:"product_id" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required"`
	UnitPoints int64           `json:"unit_points"`
	UnitMoney  decimal.Decimal `json:"unit_money"`
}

type CreateCheckoutRequest struct {
	PdvID int64                 `json:"pdv_id" binding:"required"`
	Items []CheckoutItemRequest `json:"items" binding:"required"`
}

type CheckoutResponse struct {
	Code        string `json:"code"`
	PdvID       int64  `json:"pdv_id"`
	UserID      *int64 `json:"user_id,omitempty"`
	TotalPoints int64  `json:"total_points"`
	TotalMoney  string `json:"total_money"`
	Status      string `json:"status"`
	ExpiresAt   string `json:"expires_at"`
	QR          string `json:"qr,omitempty"`
}

func toCheckoutResponse(checkout *models.PdvCheckout, qr string) CheckoutResponse {
	return CheckoutResponse{
		Code:        checkout.Code,
		PdvID:       checkout.PdvID,
		UserID:      checkout.UserID,
		TotalPoints: checkout.TotalPoints,
		TotalMoney:  checkout.TotalMoney.StringFixed(2),
		Status:      checkout.Status,
		ExpiresAt:   checkout.ExpiresAt.Format(time.RFC3339),
		QR:          qr,
	}
}

type BindRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type PayRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type ConfirmMoneyRequest struct {
	ExternalRef string `json:"external_ref" binding:"required"`
}

type PaymentResponse struct {
	OrderID        string `json:"order_id"`
	Code           string `json:"code"`
	PointsDebited  int64  `json:"points_debited"`
	CashbackPoints int64  `json:"cashback_points"`
	BalanceAfter   int64  `json:"balance_after"`
	AlreadyPaid    bool   `json:"already_paid"`
}
