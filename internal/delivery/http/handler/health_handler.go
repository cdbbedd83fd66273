package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"knot-api/internal/config"
	"knot-api/internal/domain/entity"
)

type HealthHandler struct {
	config *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{config: cfg}
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Root godoc
// @Summary Service identity
// @Tags health
// @Produce json
// @Success 200 {object} entity.ServiceInfo
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(entity.ServiceInfo{
		Message: h.config.App.Name,
		Version: h.config.App.Version,
	})
}

// Health godoc
// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   h.config.App.Version,
	})
}
