package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/westmarinwhales/whale-alerts/internal/models"
)

// MemoryStore holds all data in memory for local development and tests
type MemoryStore struct {
	subscribers   map[string]*models.Subscriber // keyed by phone number
	sightings     []*models.Sighting
	conversations map[string]*models.ConversationSession

	// Mutexes for thread safety
	subscriberMu   sync.RWMutex
	sightingMu     sync.RWMutex
	conversationMu sync.RWMutex

	// Counters for ID generation
	subscriberCounter uint
	sightingCounter   uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers:   make(map[string]*models.Subscriber),
		conversations: make(map[string]*models.ConversationSession),
	}
}

// Subscriber operations
func (m *MemoryStore) GetSubscriberByPhone(ctx context.Context, phone string) (*models.Subscriber, error) {
	m.subscriberMu.RLock()
	defer m.subscriberMu.RUnlock()

	subscriber, exists := m.subscribers[phone]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *subscriber
	return &copied, nil
}

func (m *MemoryStore) CreateSubscriber(ctx context.Context, phone, name string, subscribed bool) (*models.Subscriber, error) {
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()

	if _, exists := m.subscribers[phone]; exists {
		return nil, fmt.Errorf("failed to create subscriber: %s already exists", phone)
	}

	m.subscriberCounter++
	now := time.Now()
	subscriber := &models.Subscriber{
		PhoneNumber: phone,
		Name:        name,
		Subscribed:  subscribed,
	}
	subscriber.ID = m.subscriberCounter
	subscriber.CreatedAt = now
	subscriber.UpdatedAt = now

	m.subscribers[phone] = subscriber
	copied := *subscriber
	return &copied, nil
}

func (m *MemoryStore) UpdateSubscriber(ctx context.Context, subscriber *models.Subscriber) error {
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()

	if _, exists := m.subscribers[subscriber.PhoneNumber]; !exists {
		return ErrNotFound
	}
	copied := *subscriber
	copied.UpdatedAt = time.Now()
	m.subscribers[subscriber.PhoneNumber] = &copied
	return nil
}

func (m *MemoryStore) DeleteSubscriber(ctx context.Context, subscriber *models.Subscriber) error {
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()

	delete(m.subscribers, subscriber.PhoneNumber)
	return nil
}

func (m *MemoryStore) ListActiveSubscribers(ctx context.Context, excludeWeekendOnly bool) ([]*models.Subscriber, error) {
	m.subscriberMu.RLock()
	defer m.subscriberMu.RUnlock()

	var subscribers []*models.Subscriber
	for _, subscriber := range m.subscribers {
		if !subscriber.Subscribed {
			continue
		}
		if excludeWeekendOnly && subscriber.WeekendOnly {
			continue
		}
		copied := *subscriber
		subscribers = append(subscribers, &copied)
	}
	sort.Slice(subscribers, func(i, j int) bool { return subscribers[i].ID < subscribers[j].ID })
	return subscribers, nil
}

// Sighting operations
func (m *MemoryStore) CreateSighting(ctx context.Context, sighting *models.Sighting) (*models.Sighting, error) {
	m.sightingMu.Lock()
	defer m.sightingMu.Unlock()

	m.sightingCounter++
	sighting.ID = m.sightingCounter
	if sighting.SightingID == "" {
		sighting.SightingID = uuid.NewString()
	}
	sighting.CreatedAt = time.Now()
	sighting.UpdatedAt = sighting.CreatedAt

	copied := *sighting
	m.sightings = append(m.sightings, &copied)
	return sighting, nil
}

func (m *MemoryStore) GetMostRecentSighting(ctx context.Context) (*models.Sighting, error) {
	m.sightingMu.RLock()
	defer m.sightingMu.RUnlock()

	var latest *models.Sighting
	for _, sighting := range m.sightings {
		if latest == nil || !sighting.ReportedAt.Before(latest.ReportedAt) {
			latest = sighting
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (m *MemoryStore) MarkSightingNotified(ctx context.Context, id uint) (bool, error) {
	m.sightingMu.Lock()
	defer m.sightingMu.Unlock()

	for _, sighting := range m.sightings {
		if sighting.ID != id {
			continue
		}
		if sighting.Notified {
			return false, nil
		}
		sighting.Notified = true
		sighting.UpdatedAt = time.Now()
		return true, nil
	}
	return false, ErrNotFound
}

// SightingCount returns how many sightings have been recorded
func (m *MemoryStore) SightingCount() int {
	m.sightingMu.RLock()
	defer m.sightingMu.RUnlock()
	return len(m.sightings)
}

// Conversation session operations
func (m *MemoryStore) GetConversation(ctx context.Context, phone string) (*models.ConversationSession, error) {
	m.conversationMu.RLock()
	defer m.conversationMu.RUnlock()

	session, exists := m.conversations[phone]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *MemoryStore) SaveConversation(ctx context.Context, session *models.ConversationSession) error {
	m.conversationMu.Lock()
	defer m.conversationMu.Unlock()

	copied := *session
	copied.UpdatedAt = time.Now()
	m.conversations[session.PhoneNumber] = &copied
	return nil
}

func (m *MemoryStore) DeleteConversation(ctx context.Context, phone string) error {
	m.conversationMu.Lock()
	defer m.conversationMu.Unlock()

	delete(m.conversations, phone)
	return nil
}

func (m *MemoryStore) DeleteExpiredConversations(ctx context.Context, now time.Time) (int64, error) {
	m.conversationMu.Lock()
	defer m.conversationMu.Unlock()

	var deleted int64
	for phone, session := range m.conversations {
		if session.ExpiresAt.Before(now) {
			delete(m.conversations, phone)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
