package handlers

import (
	"errors"

	"gerai/internal/repositories"
	"gerai/internal/services"

	"github.com/gofiber/fiber/v2"
)

// errorResponse maps service/repository errors onto HTTP statuses:
// validation 400, not found 404, conflict 409, everything else 500 with a
// generic message.
func errorResponse(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, repositories.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": fallback,
			"error":   err.Error(),
		})
	}
}

// currentUserID reads the authenticated user's ID set by the JWT middleware.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
