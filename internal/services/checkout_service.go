package services

import (
	"context"
	"time"

	"github.com/clubeapp/points-engine/internal/events"
	"github.com/clubeapp/points-engine/internal/models"
	"github.com/clubeapp/points-engine/internal/repositories"
	"github.com/clubeapp/points-engine/internal/security"
	"github.com/clubeapp/points-engine/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	checkoutCodeLength   = 8
	codeCollisionRetries = 3
)

// CheckoutService drives the PDV reservation lifecycle:
// OPEN -> RESERVED -> PAID, with expiry and cancellation.
type CheckoutService struct {
	repo      CheckoutStore
	publisher events.Publisher
	secret    string
	ttl       time.Duration
}

func NewCheckoutService(repo CheckoutStore, publisher events.Publisher, secret string, ttl time.Duration) *CheckoutService {
	return &CheckoutService{
		repo:      repo,
		publisher: publisher,
		secret:    secret,
		ttl:       ttl,
	}
}

// CheckoutItemParams is one cart line as submitted by the PDV terminal.
type CheckoutItemParams struct {
	ProductID  int64
	Quantity   int
	UnitPoints int64
	UnitMoney  decimal.Decimal
}

type CheckoutResult struct {
	Checkout  *models.PdvCheckout
	QRPayload string
}

type PaymentResult struct {
	OrderID        string
	Code           string
	PointsDebited  int64
	CashbackPoints int64
	BalanceAfter   int64
	AlreadyPaid    bool
}

// CreatePdv registers a point-of-sale terminal. The cashback rate is a
// fraction of the cart's point total, between 0 and 1.
func (s *CheckoutService) CreatePdv(ctx context.Context, name string, cashbackRate decimal.Decimal) (*models.Pdv, error) {
	name = security.SanitizeText(name)
	if name == "" {
		return nil, errors.New(errors.ErrCodeValidation, "pdv name is required")
	}
	if cashbackRate.IsNegative() || cashbackRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, errors.New(errors.ErrCodeValidation, "cashback rate must be between 0 and 1")
	}

	pdv := &models.Pdv{Name: name, CashbackRate: cashbackRate}
	if err := s.repo.CreatePdv(ctx, pdv); err != nil {
		return nil, err
	}
	return pdv, nil
}

// CreateCheckout reserves a priced cart under a fresh short code. Prices are
// captured here and never change afterwards.
func (s *CheckoutService) CreateCheckout(ctx context.Context, pdvID int64, items []CheckoutItemParams) (*CheckoutResult, error) {
	if len(items) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "checkout needs at least one item")
	}

	if _, err := s.repo.GetPdv(ctx, pdvID); err != nil {
		return nil, err
	}

	var totalPoints int64
	totalMoney := decimal.Zero
	lines := make([]models.CheckoutItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, errors.New(errors.ErrCodeValidation, "item quantity must be positive")
		}
		if item.UnitPoints < 0 || item.UnitMoney.IsNegative() {
			return nil, errors.New(errors.ErrCodeInvalidAmount, "item prices cannot be negative")
		}
		totalPoints += item.UnitPoints * int64(item.Quantity)
		totalMoney = totalMoney.Add(item.UnitMoney.Mul(decimal.NewFromInt(int64(item.Quantity))))
		lines = append(lines, models.CheckoutItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPoints: item.UnitPoints,
			UnitMoney:  item.UnitMoney,
		})
	}
	if totalPoints <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidAmount, "checkout total must be positive")
	}

	var checkout *models.PdvCheckout
	var err error
	for attempt := 0; attempt < codeCollisionRetries; attempt++ {
		checkout = &models.PdvCheckout{
			Code:        security.GenerateSecureCode(checkoutCodeLength),
			PdvID:       pdvID,
			TotalPoints: totalPoints,
			TotalMoney:  totalMoney,
			Status:      models.CheckoutStatusOpen,
			ExpiresAt:   time.Now().UTC().Add(s.ttl),
			Items:       lines,
		}
		err = s.repo.CreateCheckout(ctx, checkout)
		if err == nil {
			break
		}
		if !errors.HasCode(err, errors.ErrCodeValidation) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	qr, err := security.SignCheckoutPayload(s.secret, checkout.Code, checkout.ExpiresAt)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to sign checkout payload")
	}

	return &CheckoutResult{Checkout: checkout, QRPayload: qr}, nil
}

// GetCheckout loads a checkout, lazily expiring it if overdue.
func (s *CheckoutService) GetCheckout(ctx context.Context, code string) (*models.PdvCheckout, error) {
	return s.repo.GetByCode(ctx, code, time.Now().UTC())
}

// BindUser reserves an open checkout for the scanning user.
func (s *CheckoutService) BindUser(ctx context.Context, code string, userID int64) (*models.PdvCheckout, error) {
	return s.repo.Bind(ctx, code, userID, time.Now().UTC())
}

// PayWithPoints settles a reserved checkout from the user's balance.
// Retrying after success returns the original result without a second debit.
func (s *CheckoutService) PayWithPoints(ctx context.Context, code string, userID int64) (*PaymentResult, error) {
	outcome, err := s.repo.Pay(ctx, repositories.PayParams{
		Code:     code,
		UserID:   userID,
		OrderID:  uuid.NewString(),
		PaidWith: models.PaidWithPoints,
		Now:      time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	result := paymentResult(outcome)
	if !outcome.AlreadyPaid {
		s.publisher.Publish(events.CheckoutPaid(code, outcome.Order.ID, outcome.Order.UserID))
		s.publisher.Publish(events.BalanceChanged(outcome.Order.UserID, result.BalanceAfter))
	}
	return result, nil
}

// ConfirmMoneyPayment records an external settlement: the PAID transition
// and cashback credit only, no points debit.
func (s *CheckoutService) ConfirmMoneyPayment(ctx context.Context, code, externalRef string) (*PaymentResult, error) {
	outcome, err := s.repo.Pay(ctx, repositories.PayParams{
		Code:        code,
		OrderID:     uuid.NewString(),
		PaidWith:    models.PaidWithMoney,
		ExternalRef: externalRef,
		Now:         time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	result := paymentResult(outcome)
	if !outcome.AlreadyPaid {
		s.publisher.Publish(events.CheckoutPaid(code, outcome.Order.ID, outcome.Order.UserID))
		if outcome.CashbackEntry != nil {
			s.publisher.Publish(events.BalanceChanged(outcome.Order.UserID, outcome.CashbackEntry.BalanceAfter))
		}
	}
	return result, nil
}

// Cancel voids a reserved checkout on the owner's request.
func (s *CheckoutService) Cancel(ctx context.Context, code string, userID int64) (*models.PdvCheckout, error) {
	return s.repo.Cancel(ctx, code, userID, time.Now().UTC())
}

// ExpireDue sweeps overdue checkouts and announces each expiry.
func (s *CheckoutService) ExpireDue(ctx context.Context) (int, error) {
	codes, err := s.repo.ExpireDue(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	for _, code := range codes {
		s.publisher.Publish(events.CheckoutExpired(code))
	}
	return len(codes), nil
}

func paymentResult(outcome *repositories.PayOutcome) *PaymentResult {
	result := &PaymentResult{
		OrderID:        outcome.Order.ID,
		Code:           outcome.Checkout.Code,
		CashbackPoints: outcome.Order.CashbackPoints,
		AlreadyPaid:    outcome.AlreadyPaid,
	}
	if outcome.Order.PaidWith == models.PaidWithPoints {
		result.PointsDebited = outcome.Order.TotalPoints
	}
	switch {
	case outcome.CashbackEntry != nil:
		result.BalanceAfter = outcome.CashbackEntry.BalanceAfter
	case outcome.DebitEntry != nil:
		result.BalanceAfter = outcome.DebitEntry.BalanceAfter
	}
	return result
}
