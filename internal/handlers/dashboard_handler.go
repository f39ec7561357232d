package handlers

import (
	"log"

	"gerai/internal/services"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the staff dashboard metrics.
type DashboardHandler struct {
	service *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// RegisterRoutes registers the dashboard route; the caller mounts it behind
// the staff middleware.
func (h *DashboardHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleStats)
}

// HandleStats returns the aggregated store metrics.
func (h *DashboardHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats()
	if err != nil {
		log.Printf("Error building dashboard stats: %v", err)
		return errorResponse(c, err, "Could not build dashboard")
	}
	return c.JSON(stats)
}
