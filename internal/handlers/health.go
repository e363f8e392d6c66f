package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	Version          string
	Storage          string
	store            Pinger
	twilioConfigured bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, storageType string, store Pinger, twilioConfigured bool) *HealthHandler {
	return &HealthHandler{
		Version:          version,
		Storage:          storageType,
		store:            store,
		twilioConfigured: twilioConfigured,
	}
}

// Root describes the service
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "West Marin Whale Alerts",
		"version": h.Version,
		"storage": h.Storage,
		"endpoints": fiber.Map{
			"health":  "/health",
			"webhook": "/webhook/sms",
			"send":    "/api/sendmessage",
			"debug":   "/api/debug/:secret",
		},
	})
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "healthy"
	statusCode := fiber.StatusOK
	dbHealthy := true
	if err := h.store.Ping(ctx); err != nil {
		status = "unhealthy"
		statusCode = fiber.StatusServiceUnavailable
		dbHealthy = false
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"version": h.Version,
		"services": fiber.Map{
			"database": dbHealthy,
			"twilio":   h.twilioConfigured,
		},
	})
}
