package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAuthToken = "12345"
	testPublicURL = "https://whales.example.org"
)

// sign computes the X-Twilio-Signature Twilio sends for a form POST
func sign(t *testing.T, fullURL string, form url.Values) string {
	t.Helper()
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(form.Get(k))
	}

	mac := hmac.New(sha1.New, []byte(testAuthToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newWebhookApp() *fiber.App {
	app := fiber.New()
	app.Post("/webhook/sms", ValidateTwilioSignature(testAuthToken, testPublicURL), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func webhookRequest(form url.Values, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhook/sms", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if signature != "" {
		req.Header.Set("X-Twilio-Signature", signature)
	}
	return req
}

func TestValidateTwilioSignature(t *testing.T) {
	form := url.Values{
		"From": {"+14155550123"},
		"To":   {"+14155550000"},
		"Body": {"whale!"},
	}
	valid := sign(t, testPublicURL+"/webhook/sms", form)

	tests := []struct {
		name      string
		signature string
		form      url.Values
		want      int
	}{
		{name: "valid signature", signature: valid, form: form, want: http.StatusOK},
		{name: "missing signature", signature: "", form: form, want: http.StatusUnauthorized},
		{name: "signed for another url", signature: sign(t, "https://evil.example.com/webhook/sms", form), form: form, want: http.StatusUnauthorized},
		{name: "tampered body", signature: valid, form: url.Values{"From": {"+14155550123"}, "To": {"+14155550000"}, "Body": {"stop"}}, want: http.StatusUnauthorized},
	}

	app := newWebhookApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(webhookRequest(tt.form, tt.signature))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestSecretMatches(t *testing.T) {
	assert.True(t, SecretMatches("s3cret", "s3cret"))
	assert.False(t, SecretMatches("s3cret", "S3cret"))
	assert.False(t, SecretMatches("s3cret", ""))
	assert.False(t, SecretMatches("", ""), "an unset secret never matches")
}

func TestRequireParamSecret(t *testing.T) {
	app := fiber.New()
	app.Get("/debug/:secret", RequireParamSecret("secret", "peek"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/debug/peek", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/debug/guess", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
