package middleware

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// AdminTokenHeader carries the pre-shared admin credential.
const AdminTokenHeader = "X-Admin-Token"

// RequireAdminToken rejects any request whose credential header does not
// exactly match the configured secret, before any state access happens. An
// empty configured secret rejects everything.
func RequireAdminToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get(AdminTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			slog.Warn("Admin request rejected", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		return c.Next()
	}
}
