package services

import (
	"context"
	"testing"
	"time"

	"github.com/clubeapp/points-engine/internal/events"
	"github.com/clubeapp/points-engine/internal/models"
	"github.com/clubeapp/points-engine/internal/security"
	"github.com/clubeapp/points-engine/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_minimum_32_chars_long!!"

func openWindow(eventID int64, number int, points int64) *models.CheckinWindow {
	now := time.Now().UTC()
	opensAt := now.Add(-5 * time.Minute)
	return &models.CheckinWindow{
		EventID:       eventID,
		CheckinNumber: number,
		PointsAwarded: points,
		OpensAt:       opensAt,
		ClosesAt:      now.Add(25 * time.Minute),
		SecurityToken: security.WindowToken(testSecret, eventID, number, opensAt),
	}
}

func TestScheduleWindowsDerivesContiguousWindows(t *testing.T) {
	repo := new(mockCheckinStore)
	svc := NewCheckinService(repo, &capturePublisher{}, testSecret, 90*time.Second)

	var gotWindows []models.CheckinWindow
	repo.On("CreateWindows", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotWindows = args.Get(1).([]models.CheckinWindow)
		}).
		Return(nil)

	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)
	windows, err := svc.ScheduleWindows(context.Background(), 42, start, 30*time.Minute, 4, 100)

	require.NoError(t, err)
	require.Len(t, windows, 4)
	require.Len(t, gotWindows, 4)

	for i, window := range windows {
		assert.Equal(t, i+1, window.CheckinNumber)
		assert.Equal(t, int64(100), window.PointsAwarded)
		wantOpen := start.Add(time.Duration(i) * 30 * time.Minute)
		assert.True(t, window.OpensAt.Equal(wantOpen))
		assert.True(t, window.ClosesAt.Equal(wantOpen.Add(30*time.Minute)))
		assert.Equal(t, security.WindowToken(testSecret, 42, i+1, wantOpen), window.SecurityToken)
	}

	// Contiguous: each window opens exactly when the previous closes.
	for i := 1; i < len(windows); i++ {
		assert.True(t, windows[i].OpensAt.Equal(windows[i-1].ClosesAt))
	}
	// Tokens differ per window.
	assert.NotEqual(t, windows[0].SecurityToken, windows[1].SecurityToken)
}

func TestScheduleWindowsValidation(t *testing.T) {
	repo := new(mockCheckinStore)
	svc := NewCheckinService(repo, &capturePublisher{}, testSecret, 90*time.Second)
	start := time.Now().UTC()

	tests := []struct {
		name     string
		interval time.Duration
		count    int
		points   int64
		wantCode string
	}{
		{"zero count", 30 * time.Minute, 0, 100, errors.ErrCodeValidation},
		{"negative count", 30 * time.Minute, -1, 100, errors.ErrCodeValidation},
		{"zero interval", 0, 3, 100, errors.ErrCodeValidation},
		{"zero points", 30 * time.Minute, 3, 0, errors.ErrCodeInvalidAmount},
		{"negative points", 30 * time.Minute, 3, -10, errors.ErrCodeInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ScheduleWindows(context.Background(), 42, start, tt.interval, tt.count, tt.points)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
		})
	}
	repo.AssertNotCalled(t, "CreateWindows")
}

func TestIssueQRPayloadOnlyWhileOpen(t *testing.T) {
	repo := new(mockCheckinStore)
	svc := NewCheckinService(repo, &capturePublisher{}, testSecret, 90*time.Second)

	closed := openWindow(42, 1, 100)
	closed.OpensAt = time.Now().UTC().Add(time.Hour)
	closed.ClosesAt = closed.OpensAt.Add(30 * time.Minute)
	repo.On("GetWindow", mock.Anything, int64(42), 1).Return(closed, nil)

	_, err := svc.IssueQRPayload(context.Background(), 42, 1)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWindowClosed, errors.CodeOf(err))
}

func TestIssueQRPayloadSignsOpenWindow(t *testing.T) {
	repo := new(mockCheckinStore)
	svc := NewCheckinService(repo, &capturePublisher{}, testSecret, 90*time.Second)

	window := openWindow(42, 2, 100)
	repo.On("GetWindow", mock.Anything, int64(42), 2).Return(window, nil)

	payload, err := svc.IssueQRPayload(context.Background(), 42, 2)

	require.NoError(t, err)
	assert.Equal(t, window.SecurityToken, payload.SecurityToken)

	claims, err := security.ParseQRPayload(payload.SignedPayload, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.EventID)
	assert.Equal(t, 2, claims.CheckinNumber)
	assert.Equal(t, window.SecurityToken, claims.SecurityToken)
}

func TestCheckinHappyPath(t *testing.T) {
	repo := new(mockCheckinStore)
	publisher := &capturePublisher{}
	svc := NewCheckinService(repo, publisher, testSecret, 90*time.Second)

	window := openWindow(42, 1, 100)
	repo.On("GetWindow", mock.Anything, int64(42), 1).Return(window, nil)
	repo.On("HasCheckin", mock.Anything, int64(42), int64(7), 1).Return(false, nil)

	var gotRecord *models.CheckinRecord
	entry := &models.LedgerEntry{UserID: 7, Type: models.EntryTypeCredit, Amount: 100, BalanceAfter: 250}
	repo.On("Redeem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotRecord = args.Get(1).(*models.CheckinRecord)
		}).
		Return(entry, nil)

	result, err := svc.Checkin(context.Background(), 7, 42, 1, window.SecurityToken, time.Now().UTC())

	require.NoError(t, err)
	assert.Equal(t, int64(100), result.PointsAwarded)
	assert.Equal(t, int64(250), result.BalanceAfter)
	require.NotNil(t, gotRecord)
	assert.Equal(t, int64(7), gotRecord.UserID)
	assert.Equal(t, int64(100), gotRecord.PointsAwarded)
	assert.NotEmpty(t, gotRecord.ID)

	assert.Equal(t, []string{events.EventCheckinConfirmed, events.EventBalanceChanged}, publisher.names())
}

func TestCheckinRejectsClosedWindow(t *testing.T) {
	repo := new(mockCheckinStore)
	svc := NewCheckinService(repo, &capturePublisher{}, testSecret, 90*time.Second)

	window := openWindow(42, 1, 100)
	window.OpensAt = time.Now().UTC().Add(-time.Hour)
	window.ClosesAt = time.Now().UTC().Add(-30 * time.Minute)
	repo.On("GetWindow", mock.Anything, int64(42), 1).Return(window, nil)

	_, err := svc.Checkin(context.Background(), 7, 42, 1, window.SecurityToken, time.Now().UTC())

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWindowClosed, errors.CodeOf(err))
	repo.AssertNotCalled(t, "Redeem")
}

func TestCheckinRejectsStaleToken(t *testing.T) {
	repo := new(mockCheckinStore)
	svc := NewCheckinService(repo, &capturePublisher{}, testSecret, 90*time.Second)

	window := openWindow(42, 2, 100)
	repo.On("GetWindow", mock.Anything, int64(42), 2).Return(window, nil)

	// Token derived for window 1 must not redeem window 2.
	staleToken := security.WindowToken(testSecret, 42, 1, window.OpensAt.Add(-30*time.Minute))
	_, err := svc.Checkin(context.Background(), 7, 42, 2, staleToken, time.Now().UTC())

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWindowClosed, errors.CodeOf(err))
	repo.AssertNotCalled(t, "Redeem")
}

func TestCheckinRejectsTimestampSkew(t *testing.T) {
	repo := new(mockCheckinStore)
	svc := NewCheckinService(repo, &capturePublisher{}, testSecret, 90*time.Second)

	window := openWindow(42, 1, 100)
	repo.On("GetWindow", mock.Anything, int64(42), 1).Return(window, nil)

	for _, stamp := range []time.Time{
		time.Now().UTC().Add(-3 * time.Minute),
		time.Now().UTC().Add(3 * time.Minute),
	} {
		_, err := svc.Checkin(context.Background(), 7, 42, 1, window.SecurityToken, stamp)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeTimestampSkew, errors.CodeOf(err))
	}
	repo.AssertNotCalled(t, "Redeem")
}

func TestCheckinIdempotentPerWindow(t *testing.T) {
	repo := new(mockCheckinStore)
	publisher := &capturePublisher{}
	svc := NewCheckinService(repo, publisher, testSecret, 90*time.Second)

	window := openWindow(42, 1, 100)
	repo.On("GetWindow", mock.Anything, int64(42), 1).Return(window, nil)
	repo.On("HasCheckin", mock.Anything, int64(42), int64(7), 1).Return(true, nil)

	_, err := svc.Checkin(context.Background(), 7, 42, 1, window.SecurityToken, time.Now().UTC())

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlreadyCheckedIn, errors.CodeOf(err))
	repo.AssertNotCalled(t, "Redeem")
	assert.Empty(t, publisher.published())
}
