package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/westmarinwhales/whale-alerts/internal/config"
	"github.com/westmarinwhales/whale-alerts/internal/models"
	"github.com/westmarinwhales/whale-alerts/internal/storage"
)

// keywordMaxLength bounds the admin confirmation word
const keywordMaxLength = 5

// inboundMessage is one text being handled
type inboundMessage struct {
	Phone   string
	Text    string // trimmed
	Lower   string // trimmed and lower-cased
	Session *Session
}

type handlerFunc func(ctx context.Context, msg *inboundMessage) (Reply, error)

// AlertService runs the SMS conversation: it classifies each inbound text,
// moves the sender through the reporting flow and gates broadcasts on
// admin confirmation
type AlertService struct {
	store       storage.Store
	sessions    *SessionManager
	messenger   Messenger
	broadcaster *Broadcaster
	filter      WordFilter
	keywords    KeywordGenerator

	adminPhones []string
	admins      map[string]bool
	location    *time.Location
	openHour    int
	closeHour   int
	rateLimit   time.Duration
	now         func() time.Time

	handlers map[Intent]handlerFunc
}

// NewAlertService wires the conversation handlers
func NewAlertService(cfg *config.Config, store storage.Store, sessions *SessionManager, messenger Messenger,
	broadcaster *Broadcaster, filter WordFilter, keywords KeywordGenerator) *AlertService {
	s := &AlertService{
		store:       store,
		sessions:    sessions,
		messenger:   messenger,
		broadcaster: broadcaster,
		filter:      filter,
		keywords:    keywords,
		adminPhones: cfg.AdminPhoneNumbers,
		admins:      make(map[string]bool, len(cfg.AdminPhoneNumbers)),
		location:    cfg.Location(),
		openHour:    cfg.ReportOpenHour,
		closeHour:   cfg.ReportCloseHour,
		rateLimit:   cfg.SightingRateLimit,
		now:         time.Now,
	}
	for _, phone := range cfg.AdminPhoneNumbers {
		s.admins[phone] = true
	}

	s.handlers = map[Intent]handlerFunc{
		IntentReset:             s.handleReset,
		IntentContactCard:       s.handleContactCard,
		IntentPreference:        s.handlePreference,
		IntentCancel:            s.handleCancel,
		IntentDetails:           s.handleSightingDetails,
		IntentName:              s.handleSetName,
		IntentDifferentWhale:    s.handleDifferentWhale,
		IntentUnsubscribe:       s.handleUnsubscribe,
		IntentSubscribe:         s.handleSubscribe,
		IntentSighting:          s.handleSighting,
		IntentThanks:            s.handleThankYou,
		IntentHelp:              s.handleHelp,
		IntentAdminConfirmation: s.handleAdminConfirmation,
		IntentNotUnderstood:     s.handleNotUnderstood,
	}
	return s
}

// IsAdmin reports whether phone may approve broadcasts
func (s *AlertService) IsAdmin(phone string) bool {
	return s.admins[phone]
}

// ProcessMessage handles one inbound text and returns the reply.
// Collaborator failures are logged and turned into a retry-later reply.
func (s *AlertService) ProcessMessage(ctx context.Context, from, body string) Reply {
	trimmed := strings.TrimSpace(body)
	msg := &inboundMessage{
		Phone: from,
		Text:  trimmed,
		Lower: strings.ToLower(trimmed),
	}

	session, err := s.sessions.Load(ctx, from)
	if err != nil {
		logrus.WithError(err).Errorf("Failed to load session for %s", from)
		return text(TextTrouble)
	}
	msg.Session = session

	intent := Classify(msg.Lower, session.FlowState(), s.IsAdmin(from))
	logrus.WithFields(logrus.Fields{
		"from":   from,
		"state":  string(session.FlowState()),
		"intent": intent.String(),
	}).Infof("📱 Handling incoming message: %s", trimmed)

	reply, err := s.handlers[intent](ctx, msg)
	if err != nil {
		logrus.WithError(err).WithField("intent", intent.String()).Errorf("Error processing message from %s", from)
		return text(TextTrouble)
	}
	return reply
}

func (s *AlertService) findSubscriber(ctx context.Context, phone string) (*models.Subscriber, error) {
	subscriber, err := s.store.GetSubscriberByPhone(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return subscriber, err
}

func (s *AlertService) mostRecentSighting(ctx context.Context) (*models.Sighting, error) {
	sighting, err := s.store.GetMostRecentSighting(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return sighting, err
}

// notifyAdmins texts every admin; a failed send is only logged
func (s *AlertService) notifyAdmins(ctx context.Context, body string) {
	var g errgroup.Group
	for _, phone := range s.adminPhones {
		phone := phone
		g.Go(func() error {
			if err := s.messenger.SendSMS(ctx, phone, body, false); err != nil {
				logrus.WithError(err).Errorf("Failed to notify admin %s", phone)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *AlertService) handleReset(ctx context.Context, msg *inboundMessage) (Reply, error) {
	if err := msg.Session.Clear(ctx); err != nil {
		return Reply{}, err
	}
	subscriber, err := s.findSubscriber(ctx, msg.Phone)
	if err != nil {
		return Reply{}, err
	}
	if subscriber != nil {
		if err := s.store.DeleteSubscriber(ctx, subscriber); err != nil {
			return Reply{}, err
		}
		logrus.Infof("Deleted subscriber %s on reset", msg.Phone)
	}
	return text(TextStateReset), nil
}

func (s *AlertService) handleContactCard(ctx context.Context, msg *inboundMessage) (Reply, error) {
	return withCard(TextContactCard), nil
}

func (s *AlertService) handlePreference(ctx context.Context, msg *inboundMessage) (Reply, error) {
	weekendOnly := patternWeekend.MatchString(msg.Lower)

	subscriber, err := s.findSubscriber(ctx, msg.Phone)
	if err != nil {
		return Reply{}, err
	}
	if subscriber == nil {
		// Remember the preference for when they subscribe
		if subscriber, err = s.store.CreateSubscriber(ctx, msg.Phone, "", false); err != nil {
			return Reply{}, err
		}
	}
	subscriber.WeekendOnly = weekendOnly
	if err := s.store.UpdateSubscriber(ctx, subscriber); err != nil {
		return Reply{}, err
	}

	if weekendOnly {
		return text(TextWeekendPreference), nil
	}
	return text(TextAnytimePreference), nil
}

func (s *AlertService) handleCancel(ctx context.Context, msg *inboundMessage) (Reply, error) {
	if err := msg.Session.Clear(ctx); err != nil {
		return Reply{}, err
	}
	return text(TextCancelSighting), nil
}

func (s *AlertService) handleUnsubscribe(ctx context.Context, msg *inboundMessage) (Reply, error) {
	subscriber, err := s.findSubscriber(ctx, msg.Phone)
	if err != nil {
		return Reply{}, err
	}
	if subscriber != nil {
		subscriber.Subscribed = false
		if err := s.store.UpdateSubscriber(ctx, subscriber); err != nil {
			return Reply{}, err
		}
	}
	return text(TextUnsubscribeConfirmation), nil
}

func (s *AlertService) handleSubscribe(ctx context.Context, msg *inboundMessage) (Reply, error) {
	subscriber, err := s.findSubscriber(ctx, msg.Phone)
	if err != nil {
		return Reply{}, err
	}

	switch {
	case subscriber == nil:
		if _, err := s.store.CreateSubscriber(ctx, msg.Phone, "", true); err != nil {
			return Reply{}, err
		}
	case subscriber.Subscribed:
		return text(TextAlreadySubscribed), nil
	default:
		subscriber.Subscribed = true
		if err := s.store.UpdateSubscriber(ctx, subscriber); err != nil {
			return Reply{}, err
		}
	}
	logrus.Infof("🐋 New subscriber %s", msg.Phone)
	return withCard(TextWelcome), nil
}

// handleSighting gates a new report on operating hours and the rate limit
func (s *AlertService) handleSighting(ctx context.Context, msg *inboundMessage) (Reply, error) {
	now := s.now()
	hour := now.In(s.location).Hour()
	if hour < s.openHour || hour >= s.closeHour {
		return text(TextOffHours), nil
	}

	recent, err := s.mostRecentSighting(ctx)
	if err != nil {
		return Reply{}, err
	}
	if recent != nil && recent.ReportedAt.After(now.Add(-s.rateLimit)) {
		return text(TooSoonText(formatAgo(now.Sub(recent.ReportedAt)))), nil
	}

	s.notifyAdmins(ctx, TextAdminHeadsUp)
	return s.requestSightingDetails(ctx, msg)
}

// handleDifferentWhale resumes a report without the hours and rate checks
func (s *AlertService) handleDifferentWhale(ctx context.Context, msg *inboundMessage) (Reply, error) {
	return s.requestSightingDetails(ctx, msg)
}

func (s *AlertService) requestSightingDetails(ctx context.Context, msg *inboundMessage) (Reply, error) {
	msg.Session.SetFlowState(FlowWaitingForDetails)
	msg.Session.Set(KeyPendingDetails, "")
	msg.Session.SetReportStartTime(s.now())
	if err := msg.Session.Save(ctx); err != nil {
		return Reply{}, err
	}
	return text(TextSightingDetails), nil
}

func (s *AlertService) handleSightingDetails(ctx context.Context, msg *inboundMessage) (Reply, error) {
	subscriber, err := s.findSubscriber(ctx, msg.Phone)
	if err != nil {
		return Reply{}, err
	}

	if !subscriber.HasName() {
		// a photo with no caption arrives with an empty body
		if msg.Text == "" {
			return text(TextSightingDetails), nil
		}
		msg.Session.SetFlowState(FlowWaitingForName)
		msg.Session.Set(KeyPendingDetails, msg.Text)
		if err := msg.Session.Save(ctx); err != nil {
			return Reply{}, err
		}
		return text(TextAskForName), nil
	}

	details := msg.Session.PendingDetails()
	if details == "" {
		details = msg.Text
	}
	if details == "" {
		return text(TextSightingDetails), nil
	}

	started, _ := msg.Session.ReportStartTime()
	return s.finalizeReport(ctx, msg.Session, subscriber, details, started)
}

func (s *AlertService) handleSetName(ctx context.Context, msg *inboundMessage) (Reply, error) {
	if msg.Text == "" {
		return text(TextAskForName), nil
	}
	if s.filter.Matches(msg.Text) {
		return text(TextWordFilterMatched), nil
	}

	subscriber, err := s.findSubscriber(ctx, msg.Phone)
	if err != nil {
		return Reply{}, err
	}
	if subscriber == nil {
		if subscriber, err = s.store.CreateSubscriber(ctx, msg.Phone, msg.Text, false); err != nil {
			return Reply{}, err
		}
	} else {
		subscriber.Name = msg.Text
		if err := s.store.UpdateSubscriber(ctx, subscriber); err != nil {
			return Reply{}, err
		}
	}

	details := msg.Session.PendingDetails()
	started, _ := msg.Session.ReportStartTime()
	return s.finalizeReport(ctx, msg.Session, subscriber, details, started)
}

func (s *AlertService) handleThankYou(ctx context.Context, msg *inboundMessage) (Reply, error) {
	return text(TextYoureWelcome), nil
}

func (s *AlertService) handleHelp(ctx context.Context, msg *inboundMessage) (Reply, error) {
	return Reply{}, nil
}

func (s *AlertService) handleNotUnderstood(ctx context.Context, msg *inboundMessage) (Reply, error) {
	return text(TextDidntUnderstand), nil
}

// formatAgo renders elapsed time the way the too-soon reply quotes it
func formatAgo(elapsed time.Duration) string {
	minutes := int(elapsed / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("%d minutes ago", minutes)
	}
	hours := minutes / 60
	if hours == 1 {
		return "1 hour ago"
	}
	return fmt.Sprintf("%d hours ago", hours)
}
