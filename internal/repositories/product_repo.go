package repositories

import (
	"gerai/internal/models"
)

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Category      string
	Search        string
	AvailableOnly bool
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(filter ProductFilter) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	Count() (int64, error)
}
