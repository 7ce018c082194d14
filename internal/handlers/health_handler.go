package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// StoreState is the store-health view the health endpoint reports.
type StoreState interface {
	Available() bool
	Label() string
}

// HealthHandler answers liveness probes. It never touches the store.
type HealthHandler struct {
	store StoreState
	now   func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store StoreState) *HealthHandler {
	return &HealthHandler{store: store, now: time.Now}
}

// RegisterRoutes registers the health route on router.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth always answers 200 with the current store state.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"database":  h.store.Label(),
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}
