package services

import (
	"context"
	"time"

	"github.com/clubeapp/points-engine/internal/events"
	"github.com/clubeapp/points-engine/internal/models"
	"github.com/clubeapp/points-engine/internal/security"
	"github.com/clubeapp/points-engine/pkg/errors"
	"github.com/google/uuid"
)

// CheckinService drives the per-event check-in state machine: scheduling
// windows, issuing rotating QR payloads and redeeming scans.
type CheckinService struct {
	repo      CheckinStore
	publisher events.Publisher
	secret    string
	skew      time.Duration
}

func NewCheckinService(repo CheckinStore, publisher events.Publisher, secret string, skew time.Duration) *CheckinService {
	return &CheckinService{
		repo:      repo,
		publisher: publisher,
		secret:    secret,
		skew:      skew,
	}
}

// QRPayload is what the venue display renders for the currently open window.
type QRPayload struct {
	EventID       int64
	CheckinNumber int
	SecurityToken string
	Timestamp     time.Time
	SignedPayload string
}

type CheckinResult struct {
	RecordID      string
	EventID       int64
	CheckinNumber int
	PointsAwarded int64
	BalanceAfter  int64
}

// ScheduleWindows derives count contiguous windows from the event start.
// Each window gets its own HMAC-derived token, so rotating to the next
// window retires the previous QR code immediately.
func (s *CheckinService) ScheduleWindows(ctx context.Context, eventID int64, start time.Time, interval time.Duration, count int, points int64) ([]models.CheckinWindow, error) {
	if count <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "window count must be positive")
	}
	if interval <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "check-in interval must be positive")
	}
	if points <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidAmount, "points awarded must be positive")
	}

	windows := make([]models.CheckinWindow, count)
	for i := 0; i < count; i++ {
		opensAt := start.Add(time.Duration(i) * interval)
		closesAt := opensAt.Add(interval)
		windows[i] = models.CheckinWindow{
			EventID:       eventID,
			CheckinNumber: i + 1,
			PointsAwarded: points,
			OpensAt:       opensAt,
			ClosesAt:      closesAt,
			SecurityToken: security.WindowToken(s.secret, eventID, i+1, opensAt),
		}
	}

	if err := s.repo.CreateWindows(ctx, windows); err != nil {
		return nil, err
	}
	return windows, nil
}

// IssueQRPayload returns the rotating payload for one window, only while
// that window is open.
func (s *CheckinService) IssueQRPayload(ctx context.Context, eventID int64, checkinNumber int) (*QRPayload, error) {
	window, err := s.repo.GetWindow(ctx, eventID, checkinNumber)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !window.IsOpenAt(now) {
		return nil, errors.New(errors.ErrCodeWindowClosed, "check-in window is not open")
	}

	signed, err := security.SignQRPayload(s.secret, eventID, checkinNumber, window.SecurityToken, now, window.ClosesAt)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to sign qr payload")
	}

	return &QRPayload{
		EventID:       eventID,
		CheckinNumber: checkinNumber,
		SecurityToken: window.SecurityToken,
		Timestamp:     now,
		SignedPayload: signed,
	}, nil
}

// Checkin validates a scanned payload and credits the award exactly once
// per (event, user, check-in number).
func (s *CheckinService) Checkin(ctx context.Context, userID, eventID int64, checkinNumber int, securityToken string, timestamp time.Time) (*CheckinResult, error) {
	window, err := s.repo.GetWindow(ctx, eventID, checkinNumber)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !window.IsOpenAt(now) {
		return nil, errors.New(errors.ErrCodeWindowClosed, "check-in window is not open")
	}
	// Covers both expired and tampered QR codes; the previous window's token
	// stops matching the moment the next window opens.
	if !security.TokensEqual(window.SecurityToken, securityToken) {
		return nil, errors.New(errors.ErrCodeWindowClosed, "security token does not match the open window")
	}

	if skew := now.Sub(timestamp); skew > s.skew || skew < -s.skew {
		return nil, errors.New(errors.ErrCodeTimestampSkew, "scan timestamp outside tolerance")
	}

	exists, err := s.repo.HasCheckin(ctx, eventID, userID, checkinNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.New(errors.ErrCodeAlreadyCheckedIn, "already checked in for this window")
	}

	record := &models.CheckinRecord{
		ID:            uuid.NewString(),
		EventID:       eventID,
		UserID:        userID,
		CheckinNumber: checkinNumber,
		PointsAwarded: window.PointsAwarded,
	}

	entry, err := s.repo.Redeem(ctx, record)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.CheckinConfirmed(eventID, checkinNumber, userID))
	s.publisher.Publish(events.BalanceChanged(userID, entry.BalanceAfter))

	return &CheckinResult{
		RecordID:      record.ID,
		EventID:       eventID,
		CheckinNumber: checkinNumber,
		PointsAwarded: window.PointsAwarded,
		BalanceAfter:  entry.BalanceAfter,
	}, nil
}
