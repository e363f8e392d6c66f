package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// SecretMatches compares a supplied secret in constant time. An unset
// expected secret never matches, so an unconfigured endpoint stays closed.
func SecretMatches(expected, supplied string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}

// RequireParamSecret guards a route whose path carries a shared secret
func RequireParamSecret(param, expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !SecretMatches(expected, c.Params(param)) {
			return c.Status(fiber.StatusForbidden).SendString("Invalid.")
		}
		return c.Next()
	}
}
