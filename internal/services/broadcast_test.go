package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/westmarinwhales/whale-alerts/internal/storage"
)

// MockMessenger is a mock implementation of Messenger
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendSMS(ctx context.Context, to, body string, attachCard bool) error {
	args := m.Called(ctx, to, body, attachCard)
	return args.Error(0)
}

func seedSubscribers(t *testing.T, store *storage.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	for _, phone := range []string{"+1001", "+1002", "+1003"} {
		_, err := store.CreateSubscriber(ctx, phone, "", true)
		require.NoError(t, err)
	}
	weekender, err := store.CreateSubscriber(ctx, "+1004", "", true)
	require.NoError(t, err)
	weekender.WeekendOnly = true
	require.NoError(t, store.UpdateSubscriber(ctx, weekender))
	_, err = store.CreateSubscriber(ctx, "+1005", "Reporter", false)
	require.NoError(t, err)
}

func TestBroadcaster_WeekendFilter(t *testing.T) {
	store := storage.NewMemoryStore()
	seedSubscribers(t, store)
	b := NewBroadcaster(store, &recordingMessenger{}, pacific, 0)

	b.now = func() time.Time { return wednesdayAt(12, 0) }
	weekday, err := b.Recipients(context.Background())
	require.NoError(t, err)
	assert.Len(t, weekday, 3)

	// Friday 23:30 in California is already Saturday in UTC
	b.now = func() time.Time { return time.Date(2024, time.June, 15, 9, 0, 0, 0, pacific) }
	saturday, err := b.Recipients(context.Background())
	require.NoError(t, err)
	assert.Len(t, saturday, 4)

	b.now = func() time.Time { return time.Date(2024, time.June, 14, 23, 30, 0, 0, pacific) }
	fridayNight, err := b.Recipients(context.Background())
	require.NoError(t, err)
	assert.Len(t, fridayNight, 3)
}

func TestBroadcaster_FailedSendDoesNotStopOthers(t *testing.T) {
	store := storage.NewMemoryStore()
	seedSubscribers(t, store)

	messenger := &MockMessenger{}
	messenger.On("SendSMS", mock.Anything, "+1001", "alert", false).Return(nil)
	messenger.On("SendSMS", mock.Anything, "+1002", "alert", false).Return(errors.New("invalid number"))
	messenger.On("SendSMS", mock.Anything, "+1003", "alert", false).Return(nil)

	b := NewBroadcaster(store, messenger, pacific, time.Millisecond)
	b.now = func() time.Time { return wednesdayAt(12, 0) }

	result, err := b.Send(context.Background(), "alert")
	require.NoError(t, err)
	assert.Equal(t, BroadcastResult{Recipients: 3, Sent: 2, Failed: 1}, result)
	messenger.AssertNumberOfCalls(t, "SendSMS", 3)
	messenger.AssertExpectations(t)
}

func TestBroadcaster_ThrottlesBetweenSends(t *testing.T) {
	store := storage.NewMemoryStore()
	seedSubscribers(t, store)
	b := NewBroadcaster(store, &recordingMessenger{}, pacific, 20*time.Millisecond)
	b.now = func() time.Time { return wednesdayAt(12, 0) }

	start := time.Now()
	result, err := b.Send(context.Background(), "alert")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Sent)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond, "two pauses for three sends")
}

func TestBroadcaster_StopsWhenContextCancelled(t *testing.T) {
	store := storage.NewMemoryStore()
	seedSubscribers(t, store)
	messenger := &recordingMessenger{}
	b := NewBroadcaster(store, messenger, pacific, time.Hour)
	b.now = func() time.Time { return wednesdayAt(12, 0) }

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	result, err := b.Send(ctx, "alert")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, result.Sent)
}

func TestBroadcaster_DispatchDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := storage.NewMemoryStore()
	seedSubscribers(t, store)
	messenger := &recordingMessenger{}
	b := NewBroadcaster(store, messenger, pacific, 0)
	b.now = func() time.Time { return wednesdayAt(12, 0) }

	b.Dispatch("first")
	b.Dispatch("second")
	b.Wait()

	assert.Len(t, messenger.sent, 6)
}

func TestBroadcaster_SightingAlertUsesRegionTime(t *testing.T) {
	b := NewBroadcaster(storage.NewMemoryStore(), &recordingMessenger{}, pacific, 0)
	when := time.Date(2024, time.June, 12, 21, 5, 0, 0, time.UTC) // 2:05pm PDT

	assert.Equal(t, "Ahoy! Sam spotted a whale: “off the pier” (2:05pm)", b.SightingAlert("Sam", "off the pier", when))
}
