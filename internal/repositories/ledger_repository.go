package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/clubeapp/points-engine/internal/models"
	"github.com/clubeapp/points-engine/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository is the single choke point for balance mutation. Every
// write locks the balance row, checks sufficiency, updates the lifetime
// counters and appends the entry in one transaction.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ApplyParams describes one balance mutation.
type ApplyParams struct {
	UserID      int64
	Type        string
	Amount      int64
	Source      string
	SourceID    string
	Description string
	Metadata    string
}

// ApplyEntry applies one credit or debit atomically.
func (r *LedgerRepository) ApplyEntry(ctx context.Context, p ApplyParams) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var txErr error
			entry, txErr = applyEntryTx(tx, p)
			return txErr
		})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// applyEntryTx performs the locked mutation inside an open transaction.
// Callers composing multi-step units (transfer, check-in, checkout) reuse it
// so every point movement goes through the same guard.
func applyEntryTx(tx *gorm.DB, p ApplyParams) (*models.LedgerEntry, error) {
	if p.Amount <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidAmount, "amount must be positive")
	}
	if p.Type != models.EntryTypeCredit && p.Type != models.EntryTypeDebit {
		return nil, errors.New(errors.ErrCodeValidation, fmt.Sprintf("unknown entry type %q", p.Type))
	}

	balance, err := lockOrInitBalance(tx, p.UserID)
	if err != nil {
		return nil, err
	}

	if p.Type == models.EntryTypeDebit {
		if balance.Balance < p.Amount {
			return nil, errors.New(errors.ErrCodeInsufficientFunds,
				fmt.Sprintf("insufficient balance: have %d, need %d", balance.Balance, p.Amount))
		}
		balance.Balance -= p.Amount
		balance.LifetimeSpent += p.Amount
	} else {
		balance.Balance += p.Amount
		balance.LifetimeEarned += p.Amount
	}
	balance.LastTransactionAt = time.Now().UTC()

	if err := tx.Model(&models.Balance{}).Where("user_id = ?", p.UserID).Updates(map[string]interface{}{
		"balance":             balance.Balance,
		"lifetime_earned":     balance.LifetimeEarned,
		"lifetime_spent":      balance.LifetimeSpent,
		"last_transaction_at": balance.LastTransactionAt,
	}).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to update balance")
	}

	metadata := p.Metadata
	if metadata == "" {
		metadata = "{}"
	}

	entry := &models.LedgerEntry{
		ID:           uuid.NewString(),
		UserID:       p.UserID,
		Type:         p.Type,
		Amount:       p.Amount,
		BalanceAfter: balance.Balance,
		Source:       p.Source,
		SourceID:     p.SourceID,
		Description:  p.Description,
		Metadata:     metadata,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to create ledger entry")
	}

	return entry, nil
}

// lockOrInitBalance acquires the row lock for one user, creating the zero
// balance row on first contact. The insert itself holds the row lock.
func lockOrInitBalance(tx *gorm.DB, userID int64) (*models.Balance, error) {
	var balance models.Balance
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&balance).Error

	if err == nil {
		return &balance, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to lock balance")
	}

	balance = models.Balance{UserID: userID}
	if createErr := tx.Create(&balance).Error; createErr != nil {
		if isUniqueViolation(createErr) {
			// Lost the init race. The aborted transaction cannot continue, so
			// surface a retryable conflict; the retried transaction sees the
			// committed row.
			return nil, errors.Wrap(createErr, errors.ErrCodeConcurrencyConflict, "balance row init race")
		}
		return nil, errors.Wrap(createErr, errors.ErrCodeInternalError, "failed to create balance")
	}
	return &balance, nil
}

// Transfer moves points between two users in one atomic unit. Both balance
// rows are locked in ascending user id order so concurrent opposite-direction
// transfers cannot deadlock.
func (r *LedgerRepository) Transfer(ctx context.Context, senderID, recipientID, amount int64, transferID, description string) (*models.LedgerEntry, *models.LedgerEntry, error) {
	var debitEntry, creditEntry *models.LedgerEntry
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			first, second := senderID, recipientID
			if second < first {
				first, second = second, first
			}
			if _, err := lockOrInitBalance(tx, first); err != nil {
				return err
			}
			if _, err := lockOrInitBalance(tx, second); err != nil {
				return err
			}

			var txErr error
			debitEntry, txErr = applyEntryTx(tx, ApplyParams{
				UserID:      senderID,
				Type:        models.EntryTypeDebit,
				Amount:      amount,
				Source:      models.SourceTransferOut,
				SourceID:    transferID,
				Description: description,
			})
			if txErr != nil {
				return txErr
			}

			creditEntry, txErr = applyEntryTx(tx, ApplyParams{
				UserID:      recipientID,
				Type:        models.EntryTypeCredit,
				Amount:      amount,
				Source:      models.SourceTransferIn,
				SourceID:    transferID,
				Description: description,
			})
			return txErr
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return debitEntry, creditEntry, nil
}

// Refund applies the inverse of an existing entry, at most once per original.
// The original row is locked so concurrent refunders serialize before the
// duplicate check; without the lock two transactions could both count zero
// existing refunds and each write one.
func (r *LedgerRepository) Refund(ctx context.Context, originalEntryID, reason, metadata string) (*models.LedgerEntry, error) {
	var refund *models.LedgerEntry
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var original models.LedgerEntry
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", originalEntryID).
				First(&original).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return errors.New(errors.ErrCodeNotFound, "original ledger entry not found")
				}
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to load original entry")
			}

			var count int64
			if err := tx.Model(&models.LedgerEntry{}).
				Where("source = ? AND source_id = ?", models.SourceRefund, originalEntryID).
				Count(&count).Error; err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to check existing refunds")
			}
			if count > 0 {
				return errors.New(errors.ErrCodeAlreadyRefunded, "entry already refunded")
			}

			var txErr error
			refund, txErr = applyEntryTx(tx, ApplyParams{
				UserID:      original.UserID,
				Type:        original.InverseType(),
				Amount:      original.Amount,
				Source:      models.SourceRefund,
				SourceID:    originalEntryID,
				Description: reason,
				Metadata:    metadata,
			})
			return txErr
		})
	})
	if err != nil {
		return nil, err
	}
	return refund, nil
}

// GetBalance is an unlocked display read. Users with no ledger activity
// report a zero balance rather than NOT_FOUND.
func (r *LedgerRepository) GetBalance(ctx context.Context, userID int64) (*models.Balance, error) {
	var balance models.Balance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	if err == gorm.ErrRecordNotFound {
		return &models.Balance{UserID: userID}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get balance")
	}
	return &balance, nil
}

// FindEntry retrieves one ledger entry by id.
func (r *LedgerRepository) FindEntry(ctx context.Context, id string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "ledger entry not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get ledger entry")
	}
	return &entry, nil
}

// History returns a user's entries, newest first.
func (r *LedgerRepository) History(ctx context.Context, userID int64, limit, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get ledger history")
	}
	return entries, nil
}
