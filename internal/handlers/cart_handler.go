package handlers

import (
	"log"

	"gerai/internal/models"
	"gerai/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the shopping cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes; all require authentication.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id/quantity", h.HandleUpdateQuantity)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
}

func cartResponse(cart *models.Cart) fiber.Map {
	return fiber.Map{
		"cart":                  cart,
		"total":                 cart.Total(),
		"total_before_discount": cart.TotalBeforeDiscount(),
		"discount_total":        cart.DiscountTotal(),
		"item_count":            cart.ItemCount(),
	}
}

// HandleGetCart returns the cart with its display totals. A user without a
// cart sees an empty cart with zero totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(currentUserID(c))
	if err != nil {
		log.Printf("Error getting cart: %v", err)
		return errorResponse(c, err, "Could not retrieve cart")
	}
	return c.JSON(cartResponse(cart))
}

// HandleAddItem adds a product to the cart, freezing its price.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var input services.AddItemInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if input.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "product_id is required",
		})
	}

	item, err := h.service.AddItem(currentUserID(c), input)
	if err != nil {
		log.Printf("Error adding to cart: %v", err)
		return errorResponse(c, err, "Could not add item to cart")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateQuantity increments or decrements one line's quantity and
// returns the refreshed cart totals.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var body struct {
		Action string `json:"action"` // "increase" or "decrease"
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	cart, err := h.service.UpdateQuantity(currentUserID(c), c.Params("id"), body.Action)
	if err != nil {
		log.Printf("Error updating cart quantity: %v", err)
		return errorResponse(c, err, "Could not update cart")
	}
	return c.JSON(cartResponse(cart))
}

// HandleRemoveItem deletes one line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if err := h.service.RemoveItem(currentUserID(c), c.Params("id")); err != nil {
		log.Printf("Error removing cart item: %v", err)
		return errorResponse(c, err, "Could not remove item from cart")
	}
	return c.JSON(fiber.Map{
		"message": "Item removed from cart",
	})
}
