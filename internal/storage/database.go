package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/westmarinwhales/whale-alerts/internal/models"
)

// DatabaseStore implements Store on top of gorm
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by an open gorm connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Migrate creates or updates the tables this store needs
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Subscriber{},
		&models.Sighting{},
		&models.ConversationSession{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Subscriber operations
func (d *DatabaseStore) GetSubscriberByPhone(ctx context.Context, phone string) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := d.db.WithContext(ctx).Where("phone_number = ?", phone).First(&subscriber).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &subscriber, nil
}

func (d *DatabaseStore) CreateSubscriber(ctx context.Context, phone, name string, subscribed bool) (*models.Subscriber, error) {
	subscriber := &models.Subscriber{
		PhoneNumber: phone,
		Name:        name,
		Subscribed:  subscribed,
	}
	if err := d.db.WithContext(ctx).Create(subscriber).Error; err != nil {
		return nil, fmt.Errorf("failed to create subscriber: %w", err)
	}
	return subscriber, nil
}

func (d *DatabaseStore) UpdateSubscriber(ctx context.Context, subscriber *models.Subscriber) error {
	if err := d.db.WithContext(ctx).Save(subscriber).Error; err != nil {
		return fmt.Errorf("failed to update subscriber %s: %w", subscriber.PhoneNumber, err)
	}
	return nil
}

func (d *DatabaseStore) DeleteSubscriber(ctx context.Context, subscriber *models.Subscriber) error {
	// Hard delete so the phone number can sign up again
	err := d.db.WithContext(ctx).Unscoped().
		Where("phone_number = ?", subscriber.PhoneNumber).
		Delete(&models.Subscriber{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete subscriber %s: %w", subscriber.PhoneNumber, err)
	}
	return nil
}

func (d *DatabaseStore) ListActiveSubscribers(ctx context.Context, excludeWeekendOnly bool) ([]*models.Subscriber, error) {
	query := d.db.WithContext(ctx).Where("subscribed = ?", true)
	if excludeWeekendOnly {
		query = query.Where("weekend_only = ?", false)
	}

	var subscribers []*models.Subscriber
	if err := query.Order("id").Find(&subscribers).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return subscribers, nil
}

// Sighting operations
func (d *DatabaseStore) CreateSighting(ctx context.Context, sighting *models.Sighting) (*models.Sighting, error) {
	if err := d.db.WithContext(ctx).Create(sighting).Error; err != nil {
		return nil, fmt.Errorf("failed to create sighting: %w", err)
	}
	return sighting, nil
}

func (d *DatabaseStore) GetMostRecentSighting(ctx context.Context) (*models.Sighting, error) {
	var sighting models.Sighting
	err := d.db.WithContext(ctx).Order("reported_at DESC").Order("id DESC").First(&sighting).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &sighting, nil
}

func (d *DatabaseStore) MarkSightingNotified(ctx context.Context, id uint) (bool, error) {
	res := d.db.WithContext(ctx).Model(&models.Sighting{}).
		Where("id = ? AND notified = ?", id, false).
		Update("notified", true)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark sighting %d notified: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Conversation session operations
func (d *DatabaseStore) GetConversation(ctx context.Context, phone string) (*models.ConversationSession, error) {
	var session models.ConversationSession
	err := d.db.WithContext(ctx).Where("phone_number = ?", phone).First(&session).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

func (d *DatabaseStore) SaveConversation(ctx context.Context, session *models.ConversationSession) error {
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"context", "expires_at", "updated_at"}),
	}).Create(session).Error
	if err != nil {
		return fmt.Errorf("failed to save conversation for %s: %w", session.PhoneNumber, err)
	}
	return nil
}

func (d *DatabaseStore) DeleteConversation(ctx context.Context, phone string) error {
	err := d.db.WithContext(ctx).Where("phone_number = ?", phone).Delete(&models.ConversationSession{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete conversation for %s: %w", phone, err)
	}
	return nil
}

func (d *DatabaseStore) DeleteExpiredConversations(ctx context.Context, now time.Time) (int64, error) {
	res := d.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.ConversationSession{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired conversations: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (d *DatabaseStore) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
