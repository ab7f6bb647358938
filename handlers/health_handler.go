package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports process and database liveness
type HealthHandler struct {
	Check func(ctx context.Context) error
}

func NewHealthHandler(check func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{Check: check}
}

func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	if h.Check != nil {
		if err := h.Check(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":    "degraded",
				"error":     err.Error(),
				"timestamp": time.Now().Unix(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}
