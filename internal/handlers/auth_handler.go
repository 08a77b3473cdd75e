package handlers

import (
	"errors"
	"log"
	"time"

	"taskboard/internal/middleware"
	"taskboard/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles the signup, login and logout pages.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
	router.Get("/signup", h.HandleSignupForm)
	router.Post("/signup", h.HandleSignup)
	router.Get("/login", h.HandleLoginForm)
	router.Post("/login", h.HandleLogin)
}

// RegisterProtectedRoutes registers the routes that require a session.
func (h *AuthHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Get("/logout", h.HandleLogout)
}

// isAuthenticated reports whether the request carries a valid session cookie.
func (h *AuthHandler) isAuthenticated(c *fiber.Ctx) bool {
	tokenString := c.Cookies(middleware.SessionCookie)
	if tokenString == "" {
		return false
	}
	_, err := h.authService.ValidateSession(tokenString)
	return err == nil
}

// setSessionCookie establishes the session for a freshly issued token.
func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// HandleHome sends authenticated users to their task list and everyone else
// to the signup page.
func (h *AuthHandler) HandleHome(c *fiber.Ctx) error {
	if h.isAuthenticated(c) {
		return c.Redirect("/tasks")
	}
	return c.Redirect("/signup")
}

// SignupForm represents the signup form fields.
type SignupForm struct {
	Username string `form:"username" validate:"required,min=3,max=80"`
	Email    string `form:"email" validate:"required,email,max=120"`
	Password string `form:"password" validate:"required,min=8"`
}

// HandleSignupForm renders the signup page.
func (h *AuthHandler) HandleSignupForm(c *fiber.Ctx) error {
	if h.isAuthenticated(c) {
		return c.Redirect("/tasks")
	}
	return c.Render("signup", fiber.Map{
		"Flashes": popFlashes(c),
	})
}

// HandleSignup creates a new account and logs it in.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	if h.isAuthenticated(c) {
		return c.Redirect("/tasks")
	}

	var form SignupForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("signup", fiber.Map{
			"Error": "Invalid form submission.",
		})
	}

	if err := h.validate.Struct(form); err != nil {
		message := "Please fill in all fields correctly."
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, e := range validationErrors {
				if e.Field() == "Password" && e.Tag() == "min" {
					message = "Password must be at least 8 characters long."
				}
			}
		}
		return c.Status(fiber.StatusBadRequest).Render("signup", fiber.Map{
			"Error": message,
		})
	}

	user, err := h.authService.Register(form.Username, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateUser) {
			return c.Status(fiber.StatusConflict).Render("signup", fiber.Map{
				"Error": "Username or Email already taken.",
			})
		}
		log.Printf("Error registering user: %v", err)
		return c.Status(fiber.StatusInternalServerError).Render("signup", fiber.Map{
			"Error": "An unexpected error occurred during signup.",
		})
	}

	token, err := h.authService.IssueSession(user)
	if err != nil {
		log.Printf("Error issuing session after signup: %v", err)
		setFlash(c, "success", "Signup successful! Please log in.")
		return c.Redirect("/login")
	}

	setSessionCookie(c, token)
	setFlash(c, "success", "Signup successful! Welcome!")
	return c.Redirect("/tasks")
}

// LoginForm represents the login form fields.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// HandleLoginForm renders the login page.
func (h *AuthHandler) HandleLoginForm(c *fiber.Ctx) error {
	if h.isAuthenticated(c) {
		return c.Redirect("/tasks")
	}
	return c.Render("login", fiber.Map{
		"Flashes": popFlashes(c),
	})
}

// HandleLogin authenticates a user and establishes a session. Unknown email
// and wrong password produce the same message.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	if h.isAuthenticated(c) {
		return c.Redirect("/tasks")
	}

	var form LoginForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("login", fiber.Map{
			"Error": "Invalid form submission.",
		})
	}
	if err := h.validate.Struct(form); err != nil {
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
			"Error": "Login failed. Check email and password.",
		})
	}

	user, err := h.authService.Login(form.Email, form.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
				"Error": "Login failed. Check email and password.",
			})
		}
		log.Printf("Error during login: %v", err)
		return c.Status(fiber.StatusInternalServerError).Render("login", fiber.Map{
			"Error": "An unexpected error occurred. Please try again.",
		})
	}

	token, err := h.authService.IssueSession(user)
	if err != nil {
		log.Printf("Error issuing session: %v", err)
		return c.Status(fiber.StatusInternalServerError).Render("login", fiber.Map{
			"Error": "An unexpected error occurred. Please try again.",
		})
	}

	setSessionCookie(c, token)
	return c.Redirect("/tasks")
}

// HandleLogout tears down the session and returns to the login page.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	setFlash(c, "success", "You have been logged out.")
	return c.Redirect("/login")
}
