package services

import (
	"context"
	"sync"
	"time"

	"github.com/clubeapp/points-engine/internal/events"
	"github.com/clubeapp/points-engine/internal/models"
	"github.com/clubeapp/points-engine/internal/repositories"
	"github.com/stretchr/testify/mock"
)

type mockLedgerStore struct {
	mock.Mock
}

func (m *mockLedgerStore) ApplyEntry(ctx context.Context, p repositories.ApplyParams) (*models.LedgerEntry, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *mockLedgerStore) Transfer(ctx context.Context, senderID, recipientID, amount int64, transferID, description string) (*models.LedgerEntry, *models.LedgerEntry, error) {
	args := m.Called(ctx, senderID, recipientID, amount, transferID, description)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.LedgerEntry), args.Get(1).(*models.LedgerEntry), args.Error(2)
}

func (m *mockLedgerStore) Refund(ctx context.Context, originalEntryID, reason, metadata string) (*models.LedgerEntry, error) {
	args := m.Called(ctx, originalEntryID, reason, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *mockLedgerStore) GetBalance(ctx context.Context, userID int64) (*models.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *mockLedgerStore) FindEntry(ctx context.Context, id string) (*models.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *mockLedgerStore) History(ctx context.Context, userID int64, limit, offset int) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

type mockCheckinStore struct {
	mock.Mock
}

func (m *mockCheckinStore) CreateWindows(ctx context.Context, windows []models.CheckinWindow) error {
	args := m.Called(ctx, windows)
	return args.Error(0)
}

func (m *mockCheckinStore) GetWindow(ctx context.Context, eventID int64, checkinNumber int) (*models.CheckinWindow, error) {
	args := m.Called(ctx, eventID, checkinNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckinWindow), args.Error(1)
}

func (m *mockCheckinStore) CurrentWindow(ctx context.Context, eventID int64, now time.Time) (*models.CheckinWindow, error) {
	args := m.Called(ctx, eventID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckinWindow), args.Error(1)
}

func (m *mockCheckinStore) HasCheckin(ctx context.Context, eventID, userID int64, checkinNumber int) (bool, error) {
	args := m.Called(ctx, eventID, userID, checkinNumber)
	return args.Bool(0), args.Error(1)
}

func (m *mockCheckinStore) Redeem(ctx context.Context, record *models.CheckinRecord) (*models.LedgerEntry, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

type mockCheckoutStore struct {
	mock.Mock
}

func (m *mockCheckoutStore) GetPdv(ctx context.Context, pdvID int64) (*models.Pdv, error) {
	args := m.Called(ctx, pdvID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pdv), args.Error(1)
}

func (m *mockCheckoutStore) CreatePdv(ctx context.Context, pdv *models.Pdv) error {
	args := m.Called(ctx, pdv)
	return args.Error(0)
}

func (m *mockCheckoutStore) CreateCheckout(ctx context.Context, checkout *models.PdvCheckout) error {
	args := m.Called(ctx, checkout)
	return args.Error(0)
}

func (m *mockCheckoutStore) GetByCode(ctx context.Context, code string, now time.Time) (*models.PdvCheckout, error) {
	args := m.Called(ctx, code, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PdvCheckout), args.Error(1)
}

func (m *mockCheckoutStore) Bind(ctx context.Context, code string, userID int64, now time.Time) (*models.PdvCheckout, error) {
	args := m.Called(ctx, code, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PdvCheckout), args.Error(1)
}

func (m *mockCheckoutStore) Pay(ctx context.Context, p repositories.PayParams) (*repositories.PayOutcome, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.PayOutcome), args.Error(1)
}

func (m *mockCheckoutStore) Cancel(ctx context.Context, code string, userID int64, now time.Time) (*models.PdvCheckout, error) {
	args := m.Called(ctx, code, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PdvCheckout), args.Error(1)
}

func (m *mockCheckoutStore) ExpireDue(ctx context.Context, now time.Time) ([]string, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *capturePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.events))
	for i, e := range p.events {
		names[i] = e.Name
	}
	return names
}
