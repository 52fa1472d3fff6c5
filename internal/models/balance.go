package models

import (
	"time"
)

// Balance is the per-user point balance. It is never written directly:
// every mutation goes through the ledger repository inside one transaction.
type Balance struct {
	UserID            int64     `gorm:"primaryKey"`
	Balance           int64     `gorm:"not null;default:0"`
	LifetimeEarned    int64     `gorm:"not null;default:0"`
	LifetimeSpent     int64     `gorm:"not null;default:0"`
	LastTransactionAt time.Time `gorm:"default:NULL"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// Consistent reports whether the balance satisfies the ledger invariant.
func (b *Balance) Consistent() bool {
	return b.Balance >= 0 && b.Balance == b.LifetimeEarned-b.LifetimeSpent
}

func (Balance) TableName() string {
	return "balances"
}
