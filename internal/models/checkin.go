package models

import (
	"time"
)

// Window states, derived from the wall clock rather than stored.
// A window's token is only scannable while the window is OPEN, so opening
// the next window retires the previous QR code implicitly.
const (
	WindowStatePending = "PENDING"
	WindowStateOpen    = "OPEN"
	WindowStateClosed  = "CLOSED"
)

// CheckinWindow is one check-in number of an event: the time span and the
// rotating security token during which that number can be redeemed.
type CheckinWindow struct {
	ID            uint      `gorm:"primaryKey"`
	EventID       int64     `gorm:"not null;uniqueIndex:idx_window_event_number,priority:1"`
	CheckinNumber int       `gorm:"not null;uniqueIndex:idx_window_event_number,priority:2"`
	PointsAwarded int64     `gorm:"not null"`
	OpensAt       time.Time `gorm:"not null;index"`
	ClosesAt      time.Time `gorm:"not null"`
	SecurityToken string    `gorm:"type:varchar(64);not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

// StateAt derives the window state at the given instant.
func (w *CheckinWindow) StateAt(now time.Time) string {
	switch {
	case now.Before(w.OpensAt):
		return WindowStatePending
	case now.Before(w.ClosesAt):
		return WindowStateOpen
	default:
		return WindowStateClosed
	}
}

// IsOpenAt reports whether the window accepts scans at the given instant.
func (w *CheckinWindow) IsOpenAt(now time.Time) bool {
	return w.StateAt(now) == WindowStateOpen
}

func (CheckinWindow) TableName() string {
	return "checkin_windows"
}

// CheckinRecord is the source of truth for a redeemed check-in. The unique
// index on (event_id, user_id, checkin_number) is what makes redemption
// idempotent; the ledger credit is derivative.
type CheckinRecord struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	EventID       int64     `gorm:"not null;uniqueIndex:idx_checkin_event_user_number,priority:1"`
	UserID        int64     `gorm:"not null;uniqueIndex:idx_checkin_event_user_number,priority:2"`
	CheckinNumber int       `gorm:"not null;uniqueIndex:idx_checkin_event_user_number,priority:3"`
	PointsAwarded int64     `gorm:"not null"`
	CheckedInAt   time.Time `gorm:"autoCreateTime"`
}

func (CheckinRecord) TableName() string {
	return "checkin_records"
}
