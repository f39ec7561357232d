package repositories

import (
	"gerai/internal/models"
)

// CartRepository defines the interface for cart data access. Items returned
// by GetByUser and GetOrCreate carry their product and its tier prices so
// line calculations can run without further loads.
type CartRepository interface {
	GetByUser(userID string) (*models.Cart, error)
	GetOrCreate(userID string) (*models.Cart, error)
	FindItem(cartID, productID string, pkg models.PriceTier) (*models.CartItem, error)
	GetItem(itemID string) (*models.CartItem, error)
	CreateItem(item *models.CartItem) error
	UpdateItem(item *models.CartItem) error
	DeleteItem(itemID string) error
	Clear(cartID string) error
}
