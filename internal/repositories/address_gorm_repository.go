package repositories

import (
	"errors"
	"fmt"

	"gerai/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{
		db: db,
	}
}

// saveAddress persists an address inside tx, unsetting the default flag on
// the user's other addresses first when this one claims it. Shared with the
// checkout transaction in GORMOrderRepository.
func saveAddress(tx *gorm.DB, address *models.DeliveryAddress) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	if address.IsDefault {
		err := tx.Model(&models.DeliveryAddress{}).
			Where("user_id = ? AND id <> ?", address.UserID, address.ID).
			Update("is_default", false).Error
		if err != nil {
			return err
		}
	}
	return tx.Save(address).Error
}

// GetDefault retrieves the user's default delivery address.
func (r *GORMAddressRepository) GetDefault(userID string) (*models.DeliveryAddress, error) {
	var address models.DeliveryAddress
	err := r.db.First(&address, "user_id = ? AND is_default = ?", userID, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("default address for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get default address for user %s: %w", userID, err)
	}
	return &address, nil
}

// GetByUser retrieves all of a user's addresses, default first.
func (r *GORMAddressRepository) GetByUser(userID string) ([]models.DeliveryAddress, error) {
	var addresses []models.DeliveryAddress
	err := r.db.Order("is_default DESC, updated_at DESC").Find(&addresses, "user_id = ?", userID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses for user %s: %w", userID, err)
	}
	return addresses, nil
}

// Save creates or updates an address, keeping at most one default per user.
func (r *GORMAddressRepository) Save(address *models.DeliveryAddress) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return saveAddress(tx, address)
	})
	if err != nil {
		return fmt.Errorf("failed to save address: %w", err)
	}
	return nil
}
