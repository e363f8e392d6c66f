package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go/twiml"

	"github.com/westmarinwhales/whale-alerts/internal/services"
)

// MessageProcessor turns one inbound text into the reply for its sender
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, from, body string) services.Reply
}

// SMSHandler answers Twilio's inbound message webhook
type SMSHandler struct {
	processor      MessageProcessor
	contactCardURL string
}

// NewSMSHandler creates a new SMS webhook handler
func NewSMSHandler(processor MessageProcessor, contactCardURL string) *SMSHandler {
	return &SMSHandler{
		processor:      processor,
		contactCardURL: contactCardURL,
	}
}

// IncomingSMS is the subset of Twilio's webhook form we read
type IncomingSMS struct {
	MessageSid string `form:"MessageSid"`
	From       string `form:"From"`
	To         string `form:"To"`
	Body       string `form:"Body"`
}

// HandleIncoming processes an inbound text and replies with TwiML
func (h *SMSHandler) HandleIncoming(c *fiber.Ctx) error {
	var payload IncomingSMS
	if err := c.BodyParser(&payload); err != nil {
		logrus.WithError(err).Warn("Error parsing webhook")
		return fiber.NewError(fiber.StatusBadRequest, "Invalid webhook payload")
	}

	from := strings.TrimSpace(payload.From)
	if from == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing From")
	}

	logrus.WithFields(logrus.Fields{
		"from": from,
		"sid":  payload.MessageSid,
	}).Infof("📱 SMS received: %s", payload.Body)

	reply := h.processor.ProcessMessage(c.UserContext(), from, payload.Body)
	return h.writeTwiML(c, reply)
}

// writeTwiML renders the reply as a MessagingResponse. The contact card goes
// in its own message so carriers that drop MMS still deliver the text.
func (h *SMSHandler) writeTwiML(c *fiber.Ctx, reply services.Reply) error {
	var verbs []twiml.Element
	if reply.Body != "" {
		verbs = append(verbs, &twiml.MessagingMessage{Body: reply.Body})
	}
	if reply.AttachCard && h.contactCardURL != "" {
		verbs = append(verbs, &twiml.MessagingMessage{
			InnerElements: []twiml.Element{&twiml.MessagingMedia{Url: h.contactCardURL}},
		})
	}

	doc, err := twiml.Messages(verbs)
	if err != nil {
		logrus.WithError(err).Error("❌ Failed to render TwiML")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to render reply")
	}

	c.Set(fiber.HeaderContentType, "text/xml")
	return c.SendString(doc)
}
