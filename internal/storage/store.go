package storage

import (
	"context"
	"errors"
	"time"

	"github.com/westmarinwhales/whale-alerts/internal/models"
)

// ErrNotFound is returned when a subscriber, sighting or session does not exist
var ErrNotFound = errors.New("record not found")

// Store defines the interface for storage operations
type Store interface {
	// Subscriber operations
	GetSubscriberByPhone(ctx context.Context, phone string) (*models.Subscriber, error)
	CreateSubscriber(ctx context.Context, phone, name string, subscribed bool) (*models.Subscriber, error)
	UpdateSubscriber(ctx context.Context, subscriber *models.Subscriber) error
	DeleteSubscriber(ctx context.Context, subscriber *models.Subscriber) error
	// ListActiveSubscribers returns subscribed members; weekend-only members
	// are left out when excludeWeekendOnly is set.
	ListActiveSubscribers(ctx context.Context, excludeWeekendOnly bool) ([]*models.Subscriber, error)

	// Sighting operations
	CreateSighting(ctx context.Context, sighting *models.Sighting) (*models.Sighting, error)
	GetMostRecentSighting(ctx context.Context) (*models.Sighting, error)
	// MarkSightingNotified sets notified=true only if it is still false and
	// reports whether this call made the change.
	MarkSightingNotified(ctx context.Context, id uint) (bool, error)

	// Conversation session operations
	GetConversation(ctx context.Context, phone string) (*models.ConversationSession, error)
	SaveConversation(ctx context.Context, session *models.ConversationSession) error
	DeleteConversation(ctx context.Context, phone string) error
	DeleteExpiredConversations(ctx context.Context, now time.Time) (int64, error)

	Ping(ctx context.Context) error
}
