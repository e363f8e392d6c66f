package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westmarinwhales/whale-alerts/internal/models"
	"github.com/westmarinwhales/whale-alerts/internal/storage"
)

func newTestSessions(now time.Time) (*SessionManager, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	sessions := NewSessionManager(store, time.Hour)
	sessions.now = func() time.Time { return now }
	return sessions, store
}

func TestSession_SetIsStagedUntilSave(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newTestSessions(time.Now())

	session, err := sessions.Load(ctx, reporterPhone)
	require.NoError(t, err)
	assert.Equal(t, FlowIdle, session.FlowState())

	session.SetFlowState(FlowWaitingForName)
	session.Set(KeyPendingDetails, "Off the point")

	reloaded, err := sessions.Load(ctx, reporterPhone)
	require.NoError(t, err)
	assert.Equal(t, FlowIdle, reloaded.FlowState(), "nothing is visible before Save")

	require.NoError(t, session.Save(ctx))
	reloaded, err = sessions.Load(ctx, reporterPhone)
	require.NoError(t, err)
	assert.Equal(t, FlowWaitingForName, reloaded.FlowState())
	assert.Equal(t, "Off the point", reloaded.PendingDetails())
}

func TestSession_ClearRemovesEveryKey(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 12, 17, 0, 0, 123456789, time.UTC)
	sessions, store := newTestSessions(now)

	session, err := sessions.Load(ctx, reporterPhone)
	require.NoError(t, err)
	session.SetFlowState(FlowWaitingForDetails)
	session.Set(KeyPendingDetails, "by the rocks")
	session.SetReportStartTime(now)
	require.NoError(t, session.Save(ctx))

	started, ok := session.ReportStartTime()
	require.True(t, ok)
	assert.True(t, started.Equal(now), "start time keeps full precision")

	require.NoError(t, session.Clear(ctx))
	_, err = store.GetConversation(ctx, reporterPhone)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	reloaded, err := sessions.Load(ctx, reporterPhone)
	require.NoError(t, err)
	assert.Equal(t, FlowIdle, reloaded.FlowState())
	assert.Empty(t, reloaded.PendingDetails())
	_, ok = reloaded.ReportStartTime()
	assert.False(t, ok)
}

func TestSession_ExpiredAndCorruptSessionsLoadEmpty(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	sessions, store := newTestSessions(now)

	require.NoError(t, store.SaveConversation(ctx, &models.ConversationSession{
		PhoneNumber: reporterPhone,
		Context:     `{"flow-state":"waiting-for-name"}`,
		ExpiresAt:   now.Add(-time.Second),
	}))
	require.NoError(t, store.SaveConversation(ctx, &models.ConversationSession{
		PhoneNumber: otherPhone,
		Context:     `not json`,
		ExpiresAt:   now.Add(time.Hour),
	}))

	expired, err := sessions.Load(ctx, reporterPhone)
	require.NoError(t, err)
	assert.Equal(t, FlowIdle, expired.FlowState())

	corrupt, err := sessions.Load(ctx, otherPhone)
	require.NoError(t, err)
	assert.Equal(t, FlowIdle, corrupt.FlowState())

	deleted, err := sessions.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
