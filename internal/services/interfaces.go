package services

import (
	"context"
	"time"

	"github.com/clubeapp/points-engine/internal/models"
	"github.com/clubeapp/points-engine/internal/repositories"
)

// LedgerStore is the balance-mutation choke point the services write through.
type LedgerStore interface {
	ApplyEntry(ctx context.Context, p repositories.ApplyParams) (*models.LedgerEntry, error)
	Transfer(ctx context.Context, senderID, recipientID, amount int64, transferID, description string) (*models.LedgerEntry, *models.LedgerEntry, error)
	Refund(ctx context.Context, originalEntryID, reason, metadata string) (*models.LedgerEntry, error)
	GetBalance(ctx context.Context, userID int64) (*models.Balance, error)
	FindEntry(ctx context.Context, id string) (*models.LedgerEntry, error)
	History(ctx context.Context, userID int64, limit, offset int) ([]models.LedgerEntry, error)
}

// CheckinStore persists windows and redemptions.
type CheckinStore interface {
	CreateWindows(ctx context.Context, windows []models.CheckinWindow) error
	GetWindow(ctx context.Context, eventID int64, checkinNumber int) (*models.CheckinWindow, error)
	CurrentWindow(ctx context.Context, eventID int64, now time.Time) (*models.CheckinWindow, error)
	HasCheckin(ctx context.Context, eventID, userID int64, checkinNumber int) (bool, error)
	Redeem(ctx context.Context, record *models.CheckinRecord) (*models.LedgerEntry, error)
}

// CheckoutStore persists PDV reservations and settlements.
type CheckoutStore interface {
	GetPdv(ctx context.Context, pdvID int64) (*models.Pdv, error)
	CreatePdv(ctx context.Context, pdv *models.Pdv) error
	CreateCheckout(ctx context.Context, checkout *models.PdvCheckout) error
	GetByCode(ctx context.Context, code string, now time.Time) (*models.PdvCheckout, error)
	Bind(ctx context.Context, code string, userID int64, now time.Time) (*models.PdvCheckout, error)
	Pay(ctx context.Context, p repositories.PayParams) (*repositories.PayOutcome, error)
	Cancel(ctx context.Context, code string, userID int64, now time.Time) (*models.PdvCheckout, error)
	ExpireDue(ctx context.Context, now time.Time) ([]string, error)
}
