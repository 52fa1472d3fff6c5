package services

import (
	"context"

	"github.com/clubeapp/points-engine/internal/events"
	"github.com/clubeapp/points-engine/internal/security"
	"github.com/clubeapp/points-engine/pkg/errors"
	"github.com/google/uuid"
)

// TransferService settles peer-to-peer point movements.
type TransferService struct {
	ledger    LedgerStore
	publisher events.Publisher
}

func NewTransferService(ledger LedgerStore, publisher events.Publisher) *TransferService {
	return &TransferService{
		ledger:    ledger,
		publisher: publisher,
	}
}

type TransferResult struct {
	TransactionID      string
	Amount             int64
	RecipientID        int64
	SenderBalanceAfter int64
}

// Transfer moves points from sender to recipient. Both ledger sides share
// one transfer id and commit together or not at all.
func (s *TransferService) Transfer(ctx context.Context, senderID, recipientID, amount int64, message string) (*TransferResult, error) {
	if senderID == recipientID {
		return nil, errors.New(errors.ErrCodeValidation, "cannot transfer points to yourself")
	}
	if amount <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidAmount, "transfer amount must be positive")
	}

	transferID := uuid.NewString()
	description := security.SanitizeText(message)

	debit, credit, err := s.ledger.Transfer(ctx, senderID, recipientID, amount, transferID, description)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.BalanceChanged(senderID, debit.BalanceAfter))
	s.publisher.Publish(events.BalanceChanged(recipientID, credit.BalanceAfter))

	return &TransferResult{
		TransactionID:      transferID,
		Amount:             amount,
		RecipientID:        recipientID,
		SenderBalanceAfter: debit.BalanceAfter,
	}, nil
}
