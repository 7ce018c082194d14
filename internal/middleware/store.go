package middleware

import (
	"inventory/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// StoreHealth reports whether the backing store is reachable.
type StoreHealth interface {
	Available() bool
}

// RequireStore short-circuits with StoreUnavailable while the store is offline,
// before any handler touches it.
func RequireStore(health StoreHealth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !health.Available() {
			return apperrors.StoreUnavailable()
		}
		return c.Next()
	}
}
