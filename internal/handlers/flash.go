package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Flash is a one-shot message shown on the next rendered page. Category is
// one of "success", "info", "warning", "danger" and maps to a CSS class.
type Flash struct {
	Category string
	Message  string
}

const flashCookie = "taskboard_flash"

// setFlash stores a flash message in a cookie to survive the redirect that
// follows a mutation.
func setFlash(c *fiber.Ctx, category, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(category + "|" + message),
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// popFlashes returns any pending flash message and clears the cookie.
func popFlashes(c *fiber.Ctx) []Flash {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	parts := strings.SplitN(decoded, "|", 2)
	if len(parts) != 2 {
		return nil
	}
	return []Flash{{Category: parts[0], Message: parts[1]}}
}
