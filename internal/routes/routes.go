package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/westmarinwhales/whale-alerts/internal/config"
	"github.com/westmarinwhales/whale-alerts/internal/handlers"
	"github.com/westmarinwhales/whale-alerts/internal/middleware"
)

// Handlers bundles everything the route table mounts
type Handlers struct {
	Health      *handlers.HealthHandler
	SMS         *handlers.SMSHandler
	SendMessage *handlers.SendMessageHandler
	Debug       *handlers.DebugHandler
}

// SetupRoutes configures all routes
func SetupRoutes(app *fiber.App, cfg *config.Config, h Handlers) {
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.Check)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")
	if cfg.IsDevelopment() || cfg.DisableWebhookValidation {
		logrus.Warn("⚠️  SMS webhook signature validation DISABLED")
		webhooks.Post("/sms", h.SMS.HandleIncoming)
	} else {
		webhooks.Post("/sms", middleware.ValidateTwilioSignature(cfg.TwilioAuthToken, cfg.PublicURL), h.SMS.HandleIncoming)
	}

	// ========== OPERATOR ROUTES ==========
	api := app.Group("/api")
	api.Post("/sendmessage", h.SendMessage.Send)
	api.Get("/debug/:secret", middleware.RequireParamSecret("secret", cfg.DebugURLSecret), h.Debug.Show)
}
