package handlers

import (
	"log"

	"gerai/internal/models"
	"gerai/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AddressHandler handles the account delivery-address endpoints.
type AddressHandler struct {
	service *services.AddressService
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{
		service: service,
	}
}

// RegisterRoutes registers the address routes; all require authentication.
func (h *AddressHandler) RegisterRoutes(router fiber.Router) {
	addressRoutes := router.Group("/addresses")
	addressRoutes.Get("/", h.HandleGetAddresses)
	addressRoutes.Get("/default", h.HandleGetDefault)
	addressRoutes.Put("/default", h.HandleSaveDefault)
}

// HandleGetAddresses lists the user's addresses, default first.
func (h *AddressHandler) HandleGetAddresses(c *fiber.Ctx) error {
	addresses, err := h.service.GetAddresses(currentUserID(c))
	if err != nil {
		log.Printf("Error getting addresses: %v", err)
		return errorResponse(c, err, "Could not retrieve addresses")
	}
	return c.JSON(addresses)
}

// HandleGetDefault returns the user's default delivery address.
func (h *AddressHandler) HandleGetDefault(c *fiber.Ctx) error {
	address, err := h.service.GetDefaultAddress(currentUserID(c))
	if err != nil {
		log.Printf("Error getting default address: %v", err)
		return errorResponse(c, err, "Could not retrieve address")
	}
	return c.JSON(address)
}

// HandleSaveDefault creates or updates the user's default address.
func (h *AddressHandler) HandleSaveDefault(c *fiber.Ctx) error {
	var address models.DeliveryAddress
	if err := c.BodyParser(&address); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	saved, err := h.service.SaveDefaultAddress(currentUserID(c), &address)
	if err != nil {
		log.Printf("Error saving default address: %v", err)
		return errorResponse(c, err, "Could not save address")
	}
	return c.JSON(saved)
}
