package middleware

import (
	"context"
	"strings"

	"inventory/internal/apperrors"
	"inventory/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	localUser   = "user"
	localUserID = "user_id"
)

// Authenticator resolves a bearer token to its owner.
type Authenticator interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// AuthRequired is a Fiber middleware that rejects requests without a valid
// bearer token and stores the token owner in the request locals.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c.UserContext(), bearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			return err
		}

		c.Locals(localUser, user)
		c.Locals(localUserID, user.ID)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(localUser).(*models.User)
	if !ok || user == nil {
		return nil, apperrors.Unauthorized("Access token required")
	}
	return user, nil
}

// bearerToken extracts the token from "Bearer <token>". Anything else yields "".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
