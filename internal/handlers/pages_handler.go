package handlers

import "github.com/gofiber/fiber/v2"

// PagesHandler serves the static informational pages.
type PagesHandler struct{}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// RegisterRoutes registers the static page routes. None require a session.
func (h *PagesHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/about", h.HandleAbout)
	router.Get("/privacy", h.HandlePrivacy)
	router.Get("/terms", h.HandleTerms)
}

func (h *PagesHandler) HandleAbout(c *fiber.Ctx) error {
	return c.Render("about", fiber.Map{})
}

func (h *PagesHandler) HandlePrivacy(c *fiber.Ctx) error {
	return c.Render("privacy", fiber.Map{})
}

func (h *PagesHandler) HandleTerms(c *fiber.Ctx) error {
	return c.Render("terms", fiber.Map{})
}
