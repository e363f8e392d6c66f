package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/westmarinwhales/whale-alerts/internal/models"
)

// finalizeReport records the sighting and asks admins to approve it, unless
// someone else's sighting landed after this report started. The most recent
// sighting is read again here rather than trusted from the start of the
// conversation, so only the first of two racing reports goes to the admins.
func (s *AlertService) finalizeReport(ctx context.Context, session *Session, reporter *models.Subscriber,
	details string, started time.Time) (Reply, error) {
	// make sure we're not about to broadcast a stray command or a filtered word
	if looksLikeSubscriptionCommand(strings.ToLower(details)) {
		return s.rejectDetails(ctx, session, TextDidntUnderstand)
	}
	if s.filter.Matches(details) {
		return s.rejectDetails(ctx, session, TextWordFilterMatched)
	}

	recent, err := s.mostRecentSighting(ctx)
	if err != nil {
		return Reply{}, err
	}

	if recent != nil && !recent.ReportedAt.Before(started) {
		if err := session.Clear(ctx); err != nil {
			return Reply{}, err
		}
		other := recent.Name
		if other == "" {
			other = "someone else"
		}
		logrus.Infof("Report from %s lost the race to sighting %s", reporter.PhoneNumber, recent.SightingID)
		return text(SomeoneAlreadyReportedText(other)), nil
	}

	keyword := s.keywords.RandomWord(keywordMaxLength)
	sighting, err := s.store.CreateSighting(ctx, &models.Sighting{
		PhoneNumber: reporter.PhoneNumber,
		Name:        reporter.Name,
		Details:     details,
		Keyword:     keyword,
		ReportedAt:  s.now(),
	})
	if err != nil {
		return Reply{}, err
	}
	logrus.WithFields(logrus.Fields{
		"sighting": sighting.SightingID,
		"reporter": reporter.PhoneNumber,
	}).Info("🐋 Sighting recorded, waiting for admin approval")

	s.notifyAdmins(ctx, AdminConfirmationText(reporter.Name, details, keyword))

	if err := session.Clear(ctx); err != nil {
		return Reply{}, err
	}

	body := TextSightingConfirmation
	if !reporter.Subscribed {
		body += "\n\n" + TextWantToSubscribe
		session.SetFlowState(FlowPromptedForSubscription)
		if err := session.Save(ctx); err != nil {
			logrus.WithError(err).Warnf("Failed to mark %s as prompted for subscription", reporter.PhoneNumber)
		}
	}
	return text(body), nil
}

// rejectDetails drops unusable details and waits for new ones. The report
// keeps its start time so the race check still applies.
func (s *AlertService) rejectDetails(ctx context.Context, session *Session, body string) (Reply, error) {
	session.SetFlowState(FlowWaitingForDetails)
	session.Set(KeyPendingDetails, "")
	if err := session.Save(ctx); err != nil {
		return Reply{}, err
	}
	return text(body), nil
}
