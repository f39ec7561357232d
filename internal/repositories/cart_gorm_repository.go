package repositories

import (
	"errors"
	"fmt"

	"gerai/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUser retrieves a user's cart with its items, products and prices.
func (r *GORMCartRepository) GetByUser(userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items.Product.Prices").First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart, creating an empty one if none exists.
func (r *GORMCartRepository) GetOrCreate(userID string) (*models.Cart, error) {
	cart, err := r.GetByUser(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	cart = &models.Cart{ID: uuid.New().String(), UserID: userID}
	if err := r.db.Create(cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart for user %s: %w", userID, err)
	}
	return cart, nil
}

// FindItem looks up a cart line by product and package tier.
func (r *GORMCartRepository) FindItem(cartID, productID string, pkg models.PriceTier) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Preload("Product.Prices").
		First(&item, "cart_id = ? AND product_id = ? AND package = ?", cartID, productID, pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item for product %s: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &item, nil
}

// GetItem retrieves one cart line by its ID.
func (r *GORMCartRepository) GetItem(itemID string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Preload("Product.Prices").First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart item %s: %w", itemID, err)
	}
	return &item, nil
}

// CreateItem adds a new line to a cart.
func (r *GORMCartRepository) CreateItem(item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Omit("Product").Create(item).Error; err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

// UpdateItem saves changes to an existing cart line.
func (r *GORMCartRepository) UpdateItem(item *models.CartItem) error {
	res := r.db.Omit("Product").Save(item)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", item.ID, ErrNotFound)
	}
	return nil
}

// DeleteItem removes one line from a cart.
func (r *GORMCartRepository) DeleteItem(itemID string) error {
	res := r.db.Delete(&models.CartItem{}, "id = ?", itemID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

// Clear deletes all of a cart's items, then the cart itself.
func (r *GORMCartRepository) Clear(cartID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cart{}, "id = ?", cartID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", cartID, err)
	}
	return nil
}
