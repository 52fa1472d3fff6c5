package models

import (
	"time"
)

// Entry types
const (
	EntryTypeCredit = "credit"
	EntryTypeDebit  = "debit"
)

// Entry source constants
const (
	SourceEventCheckin      = "EVENT_CHECKIN"
	SourceTransferIn        = "TRANSFER_IN"
	SourceTransferOut       = "TRANSFER_OUT"
	SourcePdvPurchase       = "PDV_PURCHASE"
	SourceCashback          = "CASHBACK"
	SourceAdminCredit       = "ADMIN_CREDIT"
	SourceAdminDebit        = "ADMIN_DEBIT"
	SourceRefund            = "REFUND"
	SourceSubscriptionBonus = "SUBSCRIPTION_BONUS"
)

// LedgerEntry is the immutable record of one balance mutation.
// BalanceAfter snapshots the balance as of immediately after the write.
// Corrections are new REFUND entries, never edits.
type LedgerEntry struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	UserID       int64     `gorm:"not null;index:idx_ledger_user_created,priority:1"`
	Type         string    `gorm:"type:varchar(10);not null"`
	Amount       int64     `gorm:"not null"`
	BalanceAfter int64     `gorm:"not null"`
	Source       string    `gorm:"type:varchar(50);not null;index"`
	SourceID     string    `gorm:"type:varchar(64);index"`
	Description  string    `gorm:"type:text"`
	Metadata     string    `gorm:"type:jsonb;default:'{}'"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_ledger_user_created,priority:2"`
}

// Delta is the signed effect of the entry on the balance.
func (e *LedgerEntry) Delta() int64 {
	if e.Type == EntryTypeDebit {
		return -e.Amount
	}
	return e.Amount
}

// InverseType is the entry type a refund of this entry carries.
func (e *LedgerEntry) InverseType() string {
	if e.Type == EntryTypeDebit {
		return EntryTypeCredit
	}
	return EntryTypeDebit
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
