package handlers

import (
	"log/slog"

	"inventory/internal/apperrors"
	"inventory/internal/middleware"
	"inventory/internal/models"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	log         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes. The router is expected
// to already carry the store check.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/federated", h.HandleFederated)

	authRoutes.Get("/me", middleware.AuthRequired(h.authService), h.HandleMe)
	authRoutes.Post("/logout", middleware.AuthRequired(h.authService), h.HandleLogout)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var in models.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return apperrors.InvalidArgument("Invalid request body")
	}

	result, err := h.authService.Register(c.UserContext(), in)
	if err != nil {
		// A taken email is reported as a bad request, not a conflict.
		if apperrors.KindOf(err) == apperrors.KindConflict {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": apperrors.MessageOf(err)})
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   result.Token,
		"user":    result.User,
	})
}

// HandleLogin handles password login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var in models.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return apperrors.InvalidArgument("Invalid request body")
	}

	result, err := h.authService.Login(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

// HandleFederated signs in with a federated identity, linking or creating the
// local account as needed.
func (h *AuthHandler) HandleFederated(c *fiber.Ctx) error {
	var in models.FederatedInput
	if err := c.BodyParser(&in); err != nil {
		return apperrors.InvalidArgument("Invalid request body")
	}

	result, created, err := h.authService.LoginFederated(c.UserContext(), in)
	if err != nil {
		return err
	}

	if !created {
		return c.JSON(fiber.Map{
			"message": "Login successful",
			"token":   result.Token,
			"user":    result.User,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Federated authentication successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

// HandleMe returns the caller's public profile.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user.Public()})
}

// HandleLogout acknowledges a logout. Tokens are stateless; the client
// discards its copy.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if user, err := middleware.CurrentUser(c); err == nil {
		h.log.Debug("user logged out", "user_id", user.ID)
	}
	return c.JSON(fiber.Map{"message": "Logout successful"})
}
