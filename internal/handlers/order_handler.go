package handlers

import (
	"log"

	"gerai/internal/models"
	"gerai/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	auth    *services.AuthService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, auth *services.AuthService) *OrderHandler {
	return &OrderHandler{
		service: service,
		auth:    auth,
	}
}

// RegisterRoutes registers the order routes; all require authentication.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
}

// RegisterStaffRoutes registers order administration routes; the caller
// mounts them behind the staff middleware.
func (h *OrderHandler) RegisterStaffRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetAllOrders)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleGetOrders lists the current user's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetOrdersForUser(currentUserID(c))
	if err != nil {
		log.Printf("Error getting orders: %v", err)
		return errorResponse(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetAllOrders lists every order (staff view).
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return errorResponse(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves one order with its tracking steps. The step
// sequence is display-only; no transition graph is enforced on status.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	user, err := h.auth.GetUser(currentUserID(c))
	if err != nil {
		return errorResponse(c, err, "Could not retrieve order")
	}

	order, err := h.service.GetOrder(c.Params("id"), user)
	if err != nil {
		log.Printf("Error getting order %s: %v", c.Params("id"), err)
		return errorResponse(c, err, "Could not retrieve order")
	}

	return c.JSON(fiber.Map{
		"order":      order,
		"item_count": order.ItemCount(),
		"steps":      models.StatusSteps,
	})
}

// HandleUpdateOrderStatus moves an order to any of the fixed statuses.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status models.OrderStatus `json:"status"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	if err := h.service.UpdateOrderStatus(orderID, updateData.Status); err != nil {
		log.Printf("Error updating order status for order %s: %v", orderID, err)
		return errorResponse(c, err, "Could not update order status")
	}

	return c.JSON(fiber.Map{
		"message": "Order status updated successfully",
		"status":  updateData.Status,
	})
}
