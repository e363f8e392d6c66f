package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/westmarinwhales/whale-alerts/internal/config"
)

// Messenger sends outbound texts
type Messenger interface {
	SendSMS(ctx context.Context, to, body string, attachCard bool) error
}

// TwilioService sends SMS through the Twilio REST API
type TwilioService struct {
	client           *twilio.RestClient
	messagingService string // preferred sender when set
	from             string // fallback sender number
	contactCardURL   string
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(cfg *config.Config) (*TwilioService, error) {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}
	if cfg.TwilioMessagingService == "" && cfg.TwilioPhoneNumber == "" {
		return nil, fmt.Errorf("missing Twilio sender: set TWILIO_MESSAGING_SERVICE or TWILIO_PHONE_NUMBER")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &TwilioService{
		client:           client,
		messagingService: cfg.TwilioMessagingService,
		from:             cfg.TwilioPhoneNumber,
		contactCardURL:   cfg.ContactCardURL,
	}, nil
}

// SendSMS sends a text, optionally with the contact card attached
func (t *TwilioService) SendSMS(ctx context.Context, to, body string, attachCard bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	if t.messagingService != "" {
		params.SetMessagingServiceSid(t.messagingService)
	} else {
		params.SetFrom(t.from)
	}
	params.SetTo(to)
	params.SetBody(body)
	if attachCard && t.contactCardURL != "" {
		params.SetMediaUrl([]string{t.contactCardURL})
	}

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS to %s: %w", to, err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		return fmt.Errorf("twilio error %d sending to %s", *resp.ErrorCode, to)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	logrus.WithFields(logrus.Fields{"to": to, "sid": sid}).Info("✅ SMS sent")
	return nil
}

// LogMessenger only logs outbound texts. Used in development when Twilio
// credentials are not configured.
type LogMessenger struct{}

func (LogMessenger) SendSMS(ctx context.Context, to, body string, attachCard bool) error {
	logrus.WithFields(logrus.Fields{"to": to, "card": attachCard}).Infof("📤 SMS (not sent - Twilio not configured): %s", body)
	return nil
}
