package repositories

import (
	"gerai/internal/models"
)

// AddressRepository defines the interface for delivery address data access.
// Save enforces the single-default invariant: persisting an address with
// IsDefault set unsets the flag on the user's other addresses atomically.
type AddressRepository interface {
	GetDefault(userID string) (*models.DeliveryAddress, error)
	GetByUser(userID string) ([]models.DeliveryAddress, error)
	Save(address *models.DeliveryAddress) error
}
