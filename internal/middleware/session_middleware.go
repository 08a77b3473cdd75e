package middleware

import (
	"taskboard/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "taskboard_session"

// AuthRequired is a Fiber middleware that validates the session cookie.
// Unauthenticated callers are redirected to the login page before the
// handler body runs; stale cookies are cleared on the way out.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			return c.Redirect("/login")
		}

		userID, err := authService.ValidateSession(tokenString)
		if err != nil {
			c.ClearCookie(SessionCookie)
			return c.Redirect("/login")
		}

		// Store the authenticated user id for subsequent handlers
		c.Locals("user_id", userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id set by AuthRequired, or zero when
// the request is unauthenticated.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("user_id").(uint)
	return id
}
