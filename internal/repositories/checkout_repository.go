package repositories

import (
	"context"
	"time"

	"github.com/clubeapp/points-engine/internal/models"
	"github.com/clubeapp/points-engine/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutRepository struct {
	db *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) *CheckoutRepository {
	return &CheckoutRepository{db: db}
}

// PayOutcome is everything the PAID transition produced. AlreadyPaid marks
// an idempotent replay: the original order is returned, nothing was charged.
type PayOutcome struct {
	Checkout      *models.PdvCheckout
	Order         *models.Order
	DebitEntry    *models.LedgerEntry
	CashbackEntry *models.LedgerEntry
	AlreadyPaid   bool
}

func (r *CheckoutRepository) GetPdv(ctx context.Context, pdvID int64) (*models.Pdv, error) {
	var pdv models.Pdv
	err := r.db.WithContext(ctx).Where("id = ?", pdvID).First(&pdv).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "pdv not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get pdv")
	}
	return &pdv, nil
}

func (r *CheckoutRepository) CreatePdv(ctx context.Context, pdv *models.Pdv) error {
	if err := r.db.WithContext(ctx).Create(pdv).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create pdv")
	}
	return nil
}

// CreateCheckout persists a new OPEN checkout with its priced items.
func (r *CheckoutRepository) CreateCheckout(ctx context.Context, checkout *models.PdvCheckout) error {
	err := r.db.WithContext(ctx).Create(checkout).Error
	if err != nil {
		if isUniqueViolation(err) {
			return errors.New(errors.ErrCodeValidation, "checkout code collision, retry")
		}
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create checkout")
	}
	return nil
}

// GetByCode loads a checkout with items, lazily expiring it if overdue.
func (r *CheckoutRepository) GetByCode(ctx context.Context, code string, now time.Time) (*models.PdvCheckout, error) {
	var checkout models.PdvCheckout
	err := r.db.WithContext(ctx).Preload("Items").Where("code = ?", code).First(&checkout).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "checkout not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get checkout")
	}

	if checkout.IsExpiredAt(now) {
		// Best effort; the guarded WHERE keeps racing writers consistent.
		r.db.WithContext(ctx).Model(&models.PdvCheckout{}).
			Where("code = ? AND status IN ?", code, []string{models.CheckoutStatusOpen, models.CheckoutStatusReserved}).
			Update("status", models.CheckoutStatusExpired)
		checkout.Status = models.CheckoutStatusExpired
	}
	return &checkout, nil
}

// lockCheckout acquires the checkout row inside an open transaction and
// applies the lazy expiry transition before any state check runs.
func lockCheckout(tx *gorm.DB, code string, now time.Time) (*models.PdvCheckout, error) {
	var checkout models.PdvCheckout
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&checkout).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "checkout not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to lock checkout")
	}

	if checkout.IsExpiredAt(now) {
		if err := tx.Model(&models.PdvCheckout{}).
			Where("code = ?", code).
			Update("status", models.CheckoutStatusExpired).Error; err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to expire checkout")
		}
		checkout.Status = models.CheckoutStatusExpired
	}
	return &checkout, nil
}

// Bind reserves an OPEN checkout for the scanning user.
func (r *CheckoutRepository) Bind(ctx context.Context, code string, userID int64, now time.Time) (*models.PdvCheckout, error) {
	var bound *models.PdvCheckout
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			checkout, err := lockCheckout(tx, code, now)
			if err != nil {
				return err
			}

			switch checkout.Status {
			case models.CheckoutStatusExpired:
				return errors.New(errors.ErrCodeCheckoutExpired, "checkout expired")
			case models.CheckoutStatusCancelled:
				return errors.New(errors.ErrCodeValidation, "checkout cancelled")
			case models.CheckoutStatusPaid:
				return errors.New(errors.ErrCodeAlreadyPaid, "checkout already paid")
			case models.CheckoutStatusReserved:
				if checkout.BoundTo(userID) {
					bound = checkout
					return nil
				}
				return errors.New(errors.ErrCodeOwnershipMismatch, "checkout bound to another user")
			}

			if err := tx.Model(&models.PdvCheckout{}).Where("code = ?", code).Updates(map[string]interface{}{
				"user_id": userID,
				"status":  models.CheckoutStatusReserved,
			}).Error; err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to reserve checkout")
			}

			checkout.UserID = &userID
			checkout.Status = models.CheckoutStatusReserved
			bound = checkout
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return bound, nil
}

// PayParams drives the PAID transition.
type PayParams struct {
	Code        string
	UserID      int64
	OrderID     string
	PaidWith    string
	ExternalRef string
	Now         time.Time
}

// Pay settles a RESERVED checkout exactly once. The points rail debits the
// buyer; the money rail only records the external settlement. Both credit
// cashback when the PDV defines a rate. A replayed call against a PAID
// checkout returns the original order without touching the ledger.
func (r *CheckoutRepository) Pay(ctx context.Context, p PayParams) (*PayOutcome, error) {
	var outcome *PayOutcome
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			checkout, err := lockCheckout(tx, p.Code, p.Now)
			if err != nil {
				return err
			}

			switch checkout.Status {
			case models.CheckoutStatusPaid:
				var order models.Order
				if err := tx.Where("checkout_code = ?", p.Code).First(&order).Error; err != nil {
					return errors.Wrap(err, errors.ErrCodeInternalError, "failed to load settled order")
				}
				if p.PaidWith == models.PaidWithPoints && !checkout.BoundTo(p.UserID) {
					return errors.New(errors.ErrCodeAlreadyPaid, "checkout already paid")
				}
				outcome = &PayOutcome{Checkout: checkout, Order: &order, AlreadyPaid: true}

				// A replay must report the original result, so reload the
				// settlement's ledger entries by their correlation id.
				var entries []models.LedgerEntry
				if err := tx.Where("source_id = ? AND source IN ?", p.Code,
					[]string{models.SourcePdvPurchase, models.SourceCashback}).
					Find(&entries).Error; err != nil {
					return errors.Wrap(err, errors.ErrCodeInternalError, "failed to load settlement entries")
				}
				for i := range entries {
					switch entries[i].Source {
					case models.SourcePdvPurchase:
						outcome.DebitEntry = &entries[i]
					case models.SourceCashback:
						outcome.CashbackEntry = &entries[i]
					}
				}
				return nil
			case models.CheckoutStatusExpired:
				return errors.New(errors.ErrCodeCheckoutExpired, "checkout expired")
			case models.CheckoutStatusCancelled:
				return errors.New(errors.ErrCodeValidation, "checkout cancelled")
			case models.CheckoutStatusOpen:
				return errors.New(errors.ErrCodeValidation, "checkout not reserved")
			}

			if checkout.UserID == nil {
				return errors.New(errors.ErrCodeValidation, "checkout has no bound user")
			}
			buyerID := *checkout.UserID
			if p.PaidWith == models.PaidWithPoints && buyerID != p.UserID {
				return errors.New(errors.ErrCodeOwnershipMismatch, "checkout bound to another user")
			}

			var debit *models.LedgerEntry
			if p.PaidWith == models.PaidWithPoints {
				debit, err = applyEntryTx(tx, ApplyParams{
					UserID:   buyerID,
					Type:     models.EntryTypeDebit,
					Amount:   checkout.TotalPoints,
					Source:   models.SourcePdvPurchase,
					SourceID: checkout.Code,
				})
				if err != nil {
					return err
				}
			}

			pdv := &models.Pdv{}
			if err := tx.Where("id = ?", checkout.PdvID).First(pdv).Error; err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to load pdv")
			}

			var cashback *models.LedgerEntry
			if amount := pdv.CashbackFor(checkout.TotalPoints); amount > 0 {
				cashback, err = applyEntryTx(tx, ApplyParams{
					UserID:   buyerID,
					Type:     models.EntryTypeCredit,
					Amount:   amount,
					Source:   models.SourceCashback,
					SourceID: checkout.Code,
				})
				if err != nil {
					return err
				}
			}

			if err := tx.Model(&models.PdvCheckout{}).
				Where("code = ?", p.Code).
				Update("status", models.CheckoutStatusPaid).Error; err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to mark checkout paid")
			}
			checkout.Status = models.CheckoutStatusPaid

			order := &models.Order{
				ID:           p.OrderID,
				CheckoutCode: checkout.Code,
				PdvID:        checkout.PdvID,
				UserID:       buyerID,
				TotalPoints:  checkout.TotalPoints,
				TotalMoney:   checkout.TotalMoney,
				PaidWith:     p.PaidWith,
				ExternalRef:  p.ExternalRef,
			}
			if cashback != nil {
				order.CashbackPoints = cashback.Amount
			}
			if err := tx.Create(order).Error; err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create order")
			}

			outcome = &PayOutcome{
				Checkout:      checkout,
				Order:         order,
				DebitEntry:    debit,
				CashbackEntry: cashback,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// Cancel voids a RESERVED checkout on the owner's request.
func (r *CheckoutRepository) Cancel(ctx context.Context, code string, userID int64, now time.Time) (*models.PdvCheckout, error) {
	var cancelled *models.PdvCheckout
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			checkout, err := lockCheckout(tx, code, now)
			if err != nil {
				return err
			}

			switch checkout.Status {
			case models.CheckoutStatusExpired:
				return errors.New(errors.ErrCodeCheckoutExpired, "checkout expired")
			case models.CheckoutStatusPaid:
				return errors.New(errors.ErrCodeAlreadyPaid, "checkout already paid")
			case models.CheckoutStatusCancelled:
				cancelled = checkout
				return nil
			case models.CheckoutStatusOpen:
				return errors.New(errors.ErrCodeValidation, "checkout not reserved")
			}

			if !checkout.BoundTo(userID) {
				return errors.New(errors.ErrCodeOwnershipMismatch, "checkout bound to another user")
			}

			if err := tx.Model(&models.PdvCheckout{}).
				Where("code = ?", code).
				Update("status", models.CheckoutStatusCancelled).Error; err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to cancel checkout")
			}
			checkout.Status = models.CheckoutStatusCancelled
			cancelled = checkout
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// ExpireDue transitions every overdue OPEN/RESERVED checkout and returns the
// affected codes. No ledger entries are touched: unpaid checkouts never
// moved points.
func (r *CheckoutRepository) ExpireDue(ctx context.Context, now time.Time) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PdvCheckout{}).
			Where("status IN ? AND expires_at <= ?", []string{models.CheckoutStatusOpen, models.CheckoutStatusReserved}, now).
			Pluck("code", &codes).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to list overdue checkouts")
		}
		if len(codes) == 0 {
			return nil
		}
		if err := tx.Model(&models.PdvCheckout{}).
			Where("code IN ? AND status IN ?", codes, []string{models.CheckoutStatusOpen, models.CheckoutStatusReserved}).
			Update("status", models.CheckoutStatusExpired).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to expire checkouts")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}
