package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Checkout statuses
const (
	CheckoutStatusOpen      = "OPEN"
	CheckoutStatusReserved  = "RESERVED"
	CheckoutStatusPaid      = "PAID"
	CheckoutStatusExpired   = "EXPIRED"
	CheckoutStatusCancelled = "CANCELLED"
)

// Settlement rails
const (
	PaidWithPoints = "POINTS"
	PaidWithMoney  = "MONEY"
)

// Pdv is a point-of-sale terminal configuration.
type Pdv struct {
	ID           int64           `gorm:"primaryKey"`
	Name         string          `gorm:"type:varchar(255);not null"`
	CashbackRate decimal.Decimal `gorm:"type:numeric(5,4);not null;default:0"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

// CashbackFor returns the cashback points for a cart worth totalPoints,
// floored so the house never over-credits.
func (p *Pdv) CashbackFor(totalPoints int64) int64 {
	if p.CashbackRate.IsZero() || p.CashbackRate.IsNegative() {
		return 0
	}
	return p.CashbackRate.Mul(decimal.NewFromInt(totalPoints)).Floor().IntPart()
}

func (Pdv) TableName() string {
	return "pdvs"
}

// PdvCheckout is an expiring purchase reservation issued by a PDV terminal.
// Prices are captured at creation and immutable thereafter.
type PdvCheckout struct {
	Code        string          `gorm:"type:varchar(16);primaryKey"`
	PdvID       int64           `gorm:"not null;index"`
	UserID      *int64          `gorm:"index"`
	TotalPoints int64           `gorm:"not null"`
	TotalMoney  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status      string          `gorm:"type:varchar(12);not null;default:'OPEN';index"`
	ExpiresAt   time.Time       `gorm:"not null;index"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`

	Items []CheckoutItem `gorm:"foreignKey:CheckoutCode;references:Code"`
}

// IsExpiredAt reports whether the reservation TTL has elapsed. Only OPEN and
// RESERVED checkouts can expire; terminal states stay put.
func (c *PdvCheckout) IsExpiredAt(now time.Time) bool {
	if c.Status != CheckoutStatusOpen && c.Status != CheckoutStatusReserved {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// BoundTo reports whether the checkout is reserved for the given user.
func (c *PdvCheckout) BoundTo(userID int64) bool {
	return c.UserID != nil && *c.UserID == userID
}

func (PdvCheckout) TableName() string {
	return "pdv_checkouts"
}

// CheckoutItem is one priced cart line, captured at reservation time.
type CheckoutItem struct {
	ID           uint            `gorm:"primaryKey"`
	CheckoutCode string          `gorm:"type:varchar(16);not null;index"`
	ProductID    int64           `gorm:"not null"`
	Quantity     int             `gorm:"not null"`
	UnitPoints   int64           `gorm:"not null"`
	UnitMoney    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (CheckoutItem) TableName() string {
	return "checkout_items"
}

// Order is the settlement record produced by the PAID transition.
type Order struct {
	ID             string          `gorm:"type:uuid;primaryKey"`
	CheckoutCode   string          `gorm:"type:varchar(16);not null;uniqueIndex"`
	PdvID          int64           `gorm:"not null;index"`
	UserID         int64           `gorm:"not null;index"`
	TotalPoints    int64           `gorm:"not null"`
	TotalMoney     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaidWith       string          `gorm:"type:varchar(10);not null"`
	CashbackPoints int64           `gorm:"not null;default:0"`
	ExternalRef    string          `gorm:"type:varchar(128)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (Order) TableName() string {
	return "orders"
}
