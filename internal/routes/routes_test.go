package routes

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westmarinwhales/whale-alerts/internal/config"
	"github.com/westmarinwhales/whale-alerts/internal/handlers"
	"github.com/westmarinwhales/whale-alerts/internal/services"
	"github.com/westmarinwhales/whale-alerts/internal/storage"
)

func newTestApp(t *testing.T, environment string) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		Environment:       environment,
		TwilioAuthToken:   "token",
		PublicURL:         "https://whales.example.org",
		AdminPhoneNumbers: []string{"+14155550100"},
		TimeZone:          "America/Los_Angeles",
		ReportOpenHour:    8,
		ReportCloseHour:   20,
		SightingRateLimit: 4 * time.Hour,
		SessionTTL:        time.Hour,
		SendMessageSecret: "send",
		DebugURLSecret:    "peek",
	}

	store := storage.NewMemoryStore()
	messenger := &services.LogMessenger{}
	sessions := services.NewSessionManager(store, cfg.SessionTTL)
	broadcaster := services.NewBroadcaster(store, messenger, cfg.Location(), 0)
	alerts := services.NewAlertService(cfg, store, sessions, messenger, broadcaster, services.NewWordFilter(nil), services.WordListGenerator{})
	t.Cleanup(broadcaster.Wait)

	app := fiber.New()
	SetupRoutes(app, cfg, Handlers{
		Health:      handlers.NewHealthHandler("test", "memory", store, false),
		SMS:         handlers.NewSMSHandler(alerts, ""),
		SendMessage: handlers.NewSendMessageHandler(broadcaster, cfg.SendMessageSecret),
		Debug:       handlers.NewDebugHandler(store, cfg.AdminPhoneNumbers[0]),
	})
	return app
}

func smsRequest() *http.Request {
	form := url.Values{"From": {"+14155550123"}, "Body": {"subscribe"}}
	req := httptest.NewRequest(http.MethodPost, "/webhook/sms", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestWebhookRequiresSignatureInProduction(t *testing.T) {
	app := newTestApp(t, "production")

	resp, err := app.Test(smsRequest())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebhookOpenInDevelopment(t *testing.T) {
	app := newTestApp(t, "development")

	resp, err := app.Test(smsRequest())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDebugRouteChecksSecret(t *testing.T) {
	app := newTestApp(t, "development")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/debug/guess", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/debug/peek", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthRoutes(t *testing.T) {
	app := newTestApp(t, "development")

	for _, path := range []string{"/", "/health"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
