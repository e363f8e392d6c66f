package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/westmarinwhales/whale-alerts/internal/models"
	"github.com/westmarinwhales/whale-alerts/internal/storage"
)

// BroadcastResult summarises one fan-out
type BroadcastResult struct {
	Recipients int `json:"recipients"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}

// Broadcaster fans an alert out to every eligible subscriber, one text at a
// time with a fixed pause between sends
type Broadcaster struct {
	store     storage.Store
	messenger Messenger
	location  *time.Location
	sendDelay time.Duration
	now       func() time.Time

	wg sync.WaitGroup
}

// NewBroadcaster creates a broadcaster for the alert region
func NewBroadcaster(store storage.Store, messenger Messenger, location *time.Location, sendDelay time.Duration) *Broadcaster {
	return &Broadcaster{
		store:     store,
		messenger: messenger,
		location:  location,
		sendDelay: sendDelay,
		now:       time.Now,
	}
}

// IsWeekend reports whether t falls on Saturday or Sunday in the alert region
func (b *Broadcaster) IsWeekend(t time.Time) bool {
	switch t.In(b.location).Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}

// Recipients lists subscribers who should get an alert right now.
// Weekend-only subscribers are skipped on weekdays.
func (b *Broadcaster) Recipients(ctx context.Context) ([]*models.Subscriber, error) {
	return b.store.ListActiveSubscribers(ctx, !b.IsWeekend(b.now()))
}

// SightingAlert renders the broadcast text for a sighting
func (b *Broadcaster) SightingAlert(fromName, details string, when time.Time) string {
	return AlertText(fromName, details, when.In(b.location).Format("3:04pm"))
}

// Send delivers body to every recipient. A failed send is logged and
// does not stop the remaining sends.
func (b *Broadcaster) Send(ctx context.Context, body string) (BroadcastResult, error) {
	recipients, err := b.Recipients(ctx)
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("failed to load recipients: %w", err)
	}

	result := BroadcastResult{Recipients: len(recipients)}
	logrus.Infof("📣 Broadcasting alert to %d subscribers", len(recipients))

	for i, subscriber := range recipients {
		if i > 0 && b.sendDelay > 0 {
			select {
			case <-ctx.Done():
				logrus.Warnf("Broadcast interrupted after %d of %d sends", i, len(recipients))
				return result, ctx.Err()
			case <-time.After(b.sendDelay):
			}
		}

		logrus.Debugf("Notifying %s", subscriber.PhoneNumber)
		if err := b.messenger.SendSMS(ctx, subscriber.PhoneNumber, body, false); err != nil {
			result.Failed++
			logrus.WithError(err).Errorf("❌ Failed to notify %s", subscriber.PhoneNumber)
			continue
		}
		result.Sent++
	}

	logrus.WithFields(logrus.Fields{
		"recipients": result.Recipients,
		"sent":       result.Sent,
		"failed":     result.Failed,
	}).Info("Broadcast finished")
	return result, nil
}

// Dispatch runs Send in the background so the webhook can answer Twilio
// right away. Wait blocks until every dispatched broadcast is done.
func (b *Broadcaster) Dispatch(body string) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if _, err := b.Send(context.Background(), body); err != nil {
			logrus.WithError(err).Error("Broadcast failed")
		}
	}()
}

// Wait blocks until all dispatched broadcasts finish
func (b *Broadcaster) Wait() {
	b.wg.Wait()
}
