package services

import (
	"fmt"

	"gerai/internal/models"
	"gerai/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// AddressService handles the account-page address flows.
type AddressService struct {
	repo     repositories.AddressRepository
	validate *validator.Validate
}

// NewAddressService creates a new AddressService.
func NewAddressService(repo repositories.AddressRepository) *AddressService {
	return &AddressService{
		repo:     repo,
		validate: validator.New(),
	}
}

// GetDefaultAddress returns the user's default delivery address.
func (s *AddressService) GetDefaultAddress(userID string) (*models.DeliveryAddress, error) {
	return s.repo.GetDefault(userID)
}

// GetAddresses returns all of the user's addresses, default first.
func (s *AddressService) GetAddresses(userID string) ([]models.DeliveryAddress, error) {
	return s.repo.GetByUser(userID)
}

// SaveDefaultAddress creates or updates the user's default address. The
// repository unsets the flag on siblings, keeping exactly one default.
func (s *AddressService) SaveDefaultAddress(userID string, address *models.DeliveryAddress) (*models.DeliveryAddress, error) {
	address.UserID = userID
	address.IsDefault = true
	if err := s.validate.Struct(address); err != nil {
		return nil, fmt.Errorf("%w: please fill in all required fields", ErrValidation)
	}

	// Edit-in-place of the existing default when one exists.
	if address.ID == "" {
		if existing, err := s.repo.GetDefault(userID); err == nil {
			address.ID = existing.ID
			address.CreatedAt = existing.CreatedAt
		}
	}

	if err := s.repo.Save(address); err != nil {
		return nil, err
	}
	return address, nil
}
