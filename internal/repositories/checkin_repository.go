package repositories

import (
	"context"
	"time"

	"github.com/clubeapp/points-engine/internal/models"
	"github.com/clubeapp/points-engine/pkg/errors"
	"gorm.io/gorm"
)

type CheckinRepository struct {
	db *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) *CheckinRepository {
	return &CheckinRepository{db: db}
}

// CreateWindows persists a schedule of windows for one event.
func (r *CheckinRepository) CreateWindows(ctx context.Context, windows []models.CheckinWindow) error {
	if len(windows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&windows).Error
	if err != nil {
		if isUniqueViolation(err) {
			return errors.New(errors.ErrCodeValidation, "event already has windows for those check-in numbers")
		}
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create check-in windows")
	}
	return nil
}

// GetWindow retrieves one window by event and check-in number.
func (r *CheckinRepository) GetWindow(ctx context.Context, eventID int64, checkinNumber int) (*models.CheckinWindow, error) {
	var window models.CheckinWindow
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND checkin_number = ?", eventID, checkinNumber).
		First(&window).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "check-in window not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get check-in window")
	}
	return &window, nil
}

// CurrentWindow returns the event's window that is open right now, if any.
func (r *CheckinRepository) CurrentWindow(ctx context.Context, eventID int64, now time.Time) (*models.CheckinWindow, error) {
	var window models.CheckinWindow
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND opens_at <= ? AND closes_at > ?", eventID, now, now).
		Order("checkin_number ASC").
		First(&window).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeWindowClosed, "no open check-in window")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get current window")
	}
	return &window, nil
}

// HasCheckin reports whether the user already redeemed this window.
func (r *CheckinRepository) HasCheckin(ctx context.Context, eventID, userID int64, checkinNumber int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CheckinRecord{}).
		Where("event_id = ? AND user_id = ? AND checkin_number = ?", eventID, userID, checkinNumber).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to check existing check-in")
	}
	return count > 0, nil
}

// Redeem writes the check-in record and the point credit in one transaction,
// so a credited point is never granted without a record and vice versa. The
// composite unique index backstops concurrent duplicate scans.
func (r *CheckinRepository) Redeem(ctx context.Context, record *models.CheckinRecord) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(record).Error; err != nil {
				if isUniqueViolation(err) {
					return errors.New(errors.ErrCodeAlreadyCheckedIn, "already checked in for this window")
				}
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create check-in record")
			}

			var txErr error
			entry, txErr = applyEntryTx(tx, ApplyParams{
				UserID:   record.UserID,
				Type:     models.EntryTypeCredit,
				Amount:   record.PointsAwarded,
				Source:   models.SourceEventCheckin,
				SourceID: record.ID,
			})
			return txErr
		})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
