package services

import (
	"context"
	"fmt"

	"github.com/clubeapp/points-engine/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const statementSheet = "Statement"

// StatementService exports a user's ledger history as an xlsx workbook for
// the admin console.
type StatementService struct {
	ledger LedgerStore
}

func NewStatementService(ledger LedgerStore) *StatementService {
	return &StatementService{ledger: ledger}
}

// BuildStatement renders the user's balance summary and most recent entries.
func (s *StatementService) BuildStatement(ctx context.Context, userID int64) (*excelize.File, error) {
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.History(ctx, userID, 200, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", statementSheet); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to build statement")
	}

	summary := []interface{}{
		fmt.Sprintf("User %d", userID),
		fmt.Sprintf("Balance %d", balance.Balance),
		fmt.Sprintf("Lifetime earned %d", balance.LifetimeEarned),
		fmt.Sprintf("Lifetime spent %d", balance.LifetimeSpent),
	}
	if err := f.SetSheetRow(statementSheet, "A1", &summary); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to build statement")
	}

	header := []interface{}{"Entry ID", "Type", "Amount", "Balance After", "Source", "Source ID", "Description", "Created At"}
	if err := f.SetSheetRow(statementSheet, "A3", &header); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to build statement")
	}

	for i, entry := range entries {
		cell, cellErr := excelize.CoordinatesToCellName(1, i+4)
		if cellErr != nil {
			return nil, errors.Wrap(cellErr, errors.ErrCodeInternalError, "failed to build statement")
		}
		row := []interface{}{
			entry.ID,
			entry.Type,
			entry.Amount,
			entry.BalanceAfter,
			entry.Source,
			entry.SourceID,
			entry.Description,
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(statementSheet, cell, &row); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to build statement")
		}
	}

	return f, nil
}
