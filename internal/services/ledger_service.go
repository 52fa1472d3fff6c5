package services

import (
	"context"

	"github.com/clubeapp/points-engine/internal/models"
)

// LedgerService exposes read access to balances and history.
type LedgerService struct {
	ledger LedgerStore
}

func NewLedgerService(ledger LedgerStore) *LedgerService {
	return &LedgerService{ledger: ledger}
}

func (s *LedgerService) GetBalance(ctx context.Context, userID int64) (*models.Balance, error) {
	return s.ledger.GetBalance(ctx, userID)
}

func (s *LedgerService) History(ctx context.Context, userID int64, limit, offset int) ([]models.LedgerEntry, error) {
	return s.ledger.History(ctx, userID, limit, offset)
}
