package handlers

import (
	"log"

	"gerai/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles the checkout endpoint.
type CheckoutHandler struct {
	checkout *services.CheckoutService
	auth     *services.AuthService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout *services.CheckoutService, auth *services.AuthService) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		auth:     auth,
	}
}

// RegisterRoutes registers the checkout route; requires authentication.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
}

// HandleCheckout runs the cart-to-order transition for the current user.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	user, err := h.auth.GetUser(currentUserID(c))
	if err != nil {
		log.Printf("Error loading user for checkout: %v", err)
		return errorResponse(c, err, "Could not complete checkout")
	}

	result, err := h.checkout.Checkout(user, req)
	if err != nil {
		log.Printf("Checkout failed for user %s: %v", user.ID, err)
		return errorResponse(c, err, "Could not complete checkout")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Checkout successful",
		"order":    result.Order,
		"warnings": result.Warnings,
	})
}
