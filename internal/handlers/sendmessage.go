package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/westmarinwhales/whale-alerts/internal/middleware"
	"github.com/westmarinwhales/whale-alerts/internal/models"
)

// AlertBroadcaster is what the manual send endpoint needs from the broadcaster
type AlertBroadcaster interface {
	Recipients(ctx context.Context) ([]*models.Subscriber, error)
	SightingAlert(fromName, details string, when time.Time) string
	Dispatch(body string)
}

// SendMessageHandler lets an operator broadcast a sighting by hand
type SendMessageHandler struct {
	broadcaster AlertBroadcaster
	secret      string
}

// NewSendMessageHandler creates a new manual send handler
func NewSendMessageHandler(broadcaster AlertBroadcaster, secret string) *SendMessageHandler {
	return &SendMessageHandler{
		broadcaster: broadcaster,
		secret:      secret,
	}
}

// SendMessageRequest is the manual send payload. When is unix milliseconds.
type SendMessageRequest struct {
	Secret     string `json:"secret"`
	FromName   string `json:"fromName"`
	Details    string `json:"details"`
	When       int64  `json:"when"`
	ReallySend bool   `json:"reallySend"`
}

// Send broadcasts an alert, or with reallySend=false reports what would be sent
func (h *SendMessageHandler) Send(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
	}

	if !middleware.SecretMatches(h.secret, req.Secret) {
		logrus.Warn("Manual send rejected: invalid secret")
		return c.Status(fiber.StatusBadRequest).SendString("Invalid secret")
	}
	if req.FromName == "" || req.Details == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing parameters")
	}

	when := time.Now()
	if req.When > 0 {
		when = time.UnixMilli(req.When)
	}

	recipients, err := h.broadcaster.Recipients(c.UserContext())
	if err != nil {
		logrus.WithError(err).Error("❌ Failed to load recipients")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load subscribers")
	}

	body := h.broadcaster.SightingAlert(req.FromName, req.Details, when)
	if !req.ReallySend {
		logrus.Infof("Would have sent %q to %d subscribers", body, len(recipients))
		return c.JSON(fiber.Map{
			"status":     "dry-run",
			"message":    body,
			"recipients": len(recipients),
		})
	}

	logrus.Infof("📣 Manual broadcast to %d subscribers", len(recipients))
	h.broadcaster.Dispatch(body)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":     "sent",
		"message":    body,
		"recipients": len(recipients),
	})
}
