package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// handleAdminConfirmation releases the broadcast for the most recent sighting
// when an admin replies with its keyword. The notified flag is claimed before
// anything is sent, so a repeated reply gets "already sent" instead of a
// second broadcast.
func (s *AlertService) handleAdminConfirmation(ctx context.Context, msg *inboundMessage) (Reply, error) {
	recent, err := s.mostRecentSighting(ctx)
	if err != nil {
		return Reply{}, err
	}
	if recent == nil || !strings.EqualFold(strings.TrimSpace(recent.Keyword), msg.Lower) {
		return text(TextAdminMessageError), nil
	}
	if recent.Notified {
		return text(TextAdminMessageAlreadySent), nil
	}

	claimed, err := s.store.MarkSightingNotified(ctx, recent.ID)
	if err != nil {
		return Reply{}, err
	}
	if !claimed {
		return text(TextAdminMessageAlreadySent), nil
	}

	logrus.WithFields(logrus.Fields{
		"admin":    msg.Phone,
		"sighting": recent.SightingID,
	}).Info("✅ Sighting approved, notifying subscribers")
	s.broadcaster.Dispatch(s.broadcaster.SightingAlert(recent.Name, recent.Details, recent.ReportedAt))

	return text(TextAdminMessageSent), nil
}
