package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCashbackForFloors(t *testing.T) {
	tests := []struct {
		name        string
		rate        string
		totalPoints int64
		want        int64
	}{
		{"five percent exact", "0.05", 300, 15},
		{"five percent floored", "0.05", 99, 4},
		{"rounds down not up", "0.05", 199, 9},
		{"zero rate", "0", 300, 0},
		{"negative rate ignored", "-0.05", 300, 0},
		{"full rate", "1", 300, 300},
		{"tiny cart", "0.05", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdv := &Pdv{CashbackRate: decimal.RequireFromString(tt.rate)}
			if got := pdv.CashbackFor(tt.totalPoints); got != tt.want {
				t.Errorf("CashbackFor(%d) = %d, want %d", tt.totalPoints, got, tt.want)
			}
		})
	}
}

func TestCheckoutIsExpiredAt(t *testing.T) {
	expiresAt := time.Date(2026, 9, 12, 19, 5, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status string
		now    time.Time
		want   bool
	}{
		{"open before ttl", CheckoutStatusOpen, expiresAt.Add(-time.Minute), false},
		{"open at ttl", CheckoutStatusOpen, expiresAt, true},
		{"open past ttl", CheckoutStatusOpen, expiresAt.Add(time.Minute), true},
		{"reserved past ttl", CheckoutStatusReserved, expiresAt.Add(time.Minute), true},
		{"paid never expires", CheckoutStatusPaid, expiresAt.Add(time.Hour), false},
		{"cancelled never expires", CheckoutStatusCancelled, expiresAt.Add(time.Hour), false},
		{"expired stays expired", CheckoutStatusExpired, expiresAt.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkout := &PdvCheckout{Status: tt.status, ExpiresAt: expiresAt}
			if got := checkout.IsExpiredAt(tt.now); got != tt.want {
				t.Errorf("IsExpiredAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckoutBoundTo(t *testing.T) {
	userID := int64(7)

	unbound := &PdvCheckout{}
	if unbound.BoundTo(7) {
		t.Error("unbound checkout reported as bound")
	}

	bound := &PdvCheckout{UserID: &userID}
	if !bound.BoundTo(7) {
		t.Error("bound checkout not recognized for its owner")
	}
	if bound.BoundTo(8) {
		t.Error("bound checkout recognized for a different user")
	}
}
