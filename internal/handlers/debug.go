package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/westmarinwhales/whale-alerts/internal/storage"
)

// DebugHandler shows operators what the bot currently believes
type DebugHandler struct {
	store      storage.Store
	adminPhone string
}

// NewDebugHandler creates a debug handler; adminPhone is the number whose
// subscriber record is shown
func NewDebugHandler(store storage.Store, adminPhone string) *DebugHandler {
	return &DebugHandler{
		store:      store,
		adminPhone: adminPhone,
	}
}

// Show reports the latest sighting, the active subscriber count and the admin record
func (h *DebugHandler) Show(c *fiber.Ctx) error {
	ctx := c.UserContext()

	recent, err := h.store.GetMostRecentSighting(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logrus.WithError(err).Error("Debug: failed to load most recent sighting")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load sighting")
	}

	subscribers, err := h.store.ListActiveSubscribers(ctx, false)
	if err != nil {
		logrus.WithError(err).Error("Debug: failed to list subscribers")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load subscribers")
	}

	response := fiber.Map{
		"most_recent":        recent,
		"active_subscribers": len(subscribers),
		"admin":              nil,
	}

	if h.adminPhone != "" {
		admin, err := h.store.GetSubscriberByPhone(ctx, h.adminPhone)
		switch {
		case err == nil:
			response["admin"] = admin
		case !errors.Is(err, storage.ErrNotFound):
			logrus.WithError(err).Error("Debug: failed to load admin record")
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load admin")
		}
	}

	return c.JSON(response)
}
