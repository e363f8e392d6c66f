package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/westmarinwhales/whale-alerts/internal/models"
	"github.com/westmarinwhales/whale-alerts/internal/storage"
)

// FlowState is where a sender is in the reporting conversation
type FlowState string

const (
	FlowIdle                     FlowState = ""
	FlowWaitingForDetails        FlowState = "waiting-for-details"
	FlowWaitingForName           FlowState = "waiting-for-name"
	FlowWaitingForDifferentWhale FlowState = "waiting-for-different-whale"
	FlowPromptedForSubscription  FlowState = "prompted-subscription"
)

// Session keys
const (
	KeyFlowState       = "flow-state"
	KeyPendingDetails  = "pending-details"
	KeyReportStartTime = "report-start-time"
)

var sessionKeys = []string{KeyFlowState, KeyPendingDetails, KeyReportStartTime}

// Session is the key/value conversation context of one sender.
// Set only stages a change; Save commits every staged change at once.
type Session struct {
	phone   string
	values  map[string]string
	manager *SessionManager
}

// SessionManager loads and persists sessions through the store
type SessionManager struct {
	store      storage.Store
	sessionTTL time.Duration
	now        func() time.Time
}

// NewSessionManager creates a new session manager
func NewSessionManager(store storage.Store, sessionTTL time.Duration) *SessionManager {
	return &SessionManager{
		store:      store,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Load returns the sender's session; missing or expired sessions start empty
func (sm *SessionManager) Load(ctx context.Context, phone string) (*Session, error) {
	session := &Session{phone: phone, values: make(map[string]string), manager: sm}

	stored, err := sm.store.GetConversation(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		return session, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session for %s: %w", phone, err)
	}

	if sm.now().After(stored.ExpiresAt) {
		logrus.Debugf("Session for %s expired at %s", phone, stored.ExpiresAt.Format(time.RFC3339))
		return session, nil
	}

	if stored.Context != "" {
		if err := json.Unmarshal([]byte(stored.Context), &session.values); err != nil {
			// A corrupt context is treated like no context at all
			logrus.WithError(err).Warnf("Discarding unreadable session for %s", phone)
			session.values = make(map[string]string)
		}
	}
	return session, nil
}

// Get returns the value for key and whether it is present
func (s *Session) Get(key string) (string, bool) {
	value, ok := s.values[key]
	return value, ok
}

// Set stages a value; an empty value removes the key
func (s *Session) Set(key, value string) {
	if value == "" {
		delete(s.values, key)
		return
	}
	s.values[key] = value
}

// Save commits all staged changes
func (s *Session) Save(ctx context.Context) error {
	sm := s.manager
	if len(s.values) == 0 {
		return sm.store.DeleteConversation(ctx, s.phone)
	}

	encoded, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to encode session for %s: %w", s.phone, err)
	}
	return sm.store.SaveConversation(ctx, &models.ConversationSession{
		PhoneNumber: s.phone,
		Context:     string(encoded),
		ExpiresAt:   sm.now().Add(sm.sessionTTL),
	})
}

// Clear resets every session key and commits in one step
func (s *Session) Clear(ctx context.Context) error {
	for _, key := range sessionKeys {
		delete(s.values, key)
	}
	return s.Save(ctx)
}

// FlowState returns the current flow state, FlowIdle when unset
func (s *Session) FlowState() FlowState {
	value, _ := s.Get(KeyFlowState)
	return FlowState(value)
}

// SetFlowState stages a flow state change
func (s *Session) SetFlowState(state FlowState) {
	s.Set(KeyFlowState, string(state))
}

// PendingDetails returns details captured before the reporter's name
func (s *Session) PendingDetails() string {
	value, _ := s.Get(KeyPendingDetails)
	return value
}

// ReportStartTime returns when the current report began
func (s *Session) ReportStartTime() (time.Time, bool) {
	value, ok := s.Get(KeyReportStartTime)
	if !ok {
		return time.Time{}, false
	}
	started, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false
	}
	return started, true
}

// SetReportStartTime stages the report start time
func (s *Session) SetReportStartTime(t time.Time) {
	s.Set(KeyReportStartTime, t.UTC().Format(time.RFC3339Nano))
}

// CleanupExpired purges sessions past their TTL
func (sm *SessionManager) CleanupExpired(ctx context.Context) (int64, error) {
	return sm.store.DeleteExpiredConversations(ctx, sm.now())
}
