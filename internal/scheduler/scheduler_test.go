package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockResets struct{ mock.Mock }

func (m *mockResets) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockNotifications struct{ mock.Mock }

func (m *mockNotifications) PurgeRead(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func TestRunOncePurgesAll(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	resets := new(mockResets)
	notifications := new(mockNotifications)
	resets.On("PurgeExpired", mock.Anything, now).Return(int64(3), nil)
	notifications.On("PurgeRead", mock.Anything, now.AddDate(0, 0, -90)).Return(int64(12), nil)
	events := new(mockEvents)
	events.On("PurgeBefore", mock.Anything, now.AddDate(0, 0, -180)).Return(int64(0), nil)

	s := New("@every 1h", resets, notifications, events)
	s.now = func() time.Time { return now }
	s.RunOnce(context.Background())

	resets.AssertExpectations(t)
	notifications.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	resets := new(mockResets)
	notifications := new(mockNotifications)
	resets.On("PurgeExpired", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))
	notifications.On("PurgeRead", mock.Anything, mock.Anything).Return(int64(0), nil)

	New("@every 1h", resets, notifications, nil).RunOnce(context.Background())

	notifications.AssertNumberOfCalls(t, "PurgeRead", 1)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New("every so often", nil, nil, nil)
	assert.Error(t, s.Start(context.Background()))
}

func TestStartAndStop(t *testing.T) {
	s := New("@every 1h", nil, nil, nil)
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
