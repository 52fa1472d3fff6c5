package services

import (
	"context"
	"encoding/json"

	"github.com/clubeapp/points-engine/internal/events"
	"github.com/clubeapp/points-engine/internal/models"
	"github.com/clubeapp/points-engine/internal/repositories"
	"github.com/clubeapp/points-engine/internal/security"
	"github.com/clubeapp/points-engine/pkg/errors"
)

// AdjustmentService covers manual grant/deduct/refund and the subscription
// bonus. Every adjustment records the acting admin in the entry metadata.
type AdjustmentService struct {
	ledger    LedgerStore
	publisher events.Publisher
}

func NewAdjustmentService(ledger LedgerStore, publisher events.Publisher) *AdjustmentService {
	return &AdjustmentService{
		ledger:    ledger,
		publisher: publisher,
	}
}

func adminMetadata(adminID int64) string {
	raw, err := json.Marshal(map[string]int64{"admin_id": adminID})
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func (s *AdjustmentService) apply(ctx context.Context, userID, amount int64, entryType, source, reason string, adminID int64) (*models.LedgerEntry, error) {
	reason = security.SanitizeText(reason)
	if reason == "" {
		return nil, errors.New(errors.ErrCodeValidation, "a reason is required for admin adjustments")
	}

	entry, err := s.ledger.ApplyEntry(ctx, repositories.ApplyParams{
		UserID:      userID,
		Type:        entryType,
		Amount:      amount,
		Source:      source,
		Description: reason,
		Metadata:    adminMetadata(adminID),
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.BalanceChanged(userID, entry.BalanceAfter))
	return entry, nil
}

// Grant credits points to a user with an audit trail.
func (s *AdjustmentService) Grant(ctx context.Context, userID, amount int64, reason string, adminID int64) (*models.LedgerEntry, error) {
	return s.apply(ctx, userID, amount, models.EntryTypeCredit, models.SourceAdminCredit, reason, adminID)
}

// Deduct debits points. It obeys the same non-negative invariant as any
// debit: admins cannot force a balance below zero.
func (s *AdjustmentService) Deduct(ctx context.Context, userID, amount int64, reason string, adminID int64) (*models.LedgerEntry, error) {
	return s.apply(ctx, userID, amount, models.EntryTypeDebit, models.SourceAdminDebit, reason, adminID)
}

// Refund reverses one existing entry, at most once.
func (s *AdjustmentService) Refund(ctx context.Context, originalEntryID, reason string, adminID int64) (*models.LedgerEntry, error) {
	reason = security.SanitizeText(reason)
	if reason == "" {
		return nil, errors.New(errors.ErrCodeValidation, "a reason is required for refunds")
	}

	entry, err := s.ledger.Refund(ctx, originalEntryID, reason, adminMetadata(adminID))
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.BalanceChanged(entry.UserID, entry.BalanceAfter))
	return entry, nil
}

// SubscriptionBonus credits the renewal bonus through the same choke point.
func (s *AdjustmentService) SubscriptionBonus(ctx context.Context, userID, amount int64, subscriptionID string) (*models.LedgerEntry, error) {
	entry, err := s.ledger.ApplyEntry(ctx, repositories.ApplyParams{
		UserID:      userID,
		Type:        models.EntryTypeCredit,
		Amount:      amount,
		Source:      models.SourceSubscriptionBonus,
		SourceID:    subscriptionID,
		Description: "subscription renewal bonus",
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.BalanceChanged(userID, entry.BalanceAfter))
	return entry, nil
}
