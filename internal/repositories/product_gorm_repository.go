package repositories

import (
	"errors"
	"fmt"

	"gerai/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves products matching the filter, newest first.
func (r *GORMProductRepository) GetAll(filter ProductFilter) ([]models.Product, error) {
	query := r.db.Preload("Prices").Order("created_at DESC")
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product with its tier prices.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Prices").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetBySlug retrieves a single product by its slug.
func (r *GORMProductRepository) GetBySlug(slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Prices").First(&product, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by slug %s: %w", slug, err)
	}
	return &product, nil
}

// Create creates a new product and its tier price rows.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	for i := range product.Prices {
		product.Prices[i].ProductID = product.ID
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product, replacing its tier price rows so that
// price pairs removed in memory disappear from the store as well.
func (r *GORMProductRepository) Update(product *models.Product) error {
	for i := range product.Prices {
		product.Prices[i].ProductID = product.ID
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Omit("Prices").Save(product)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.TierPrice{}).Error; err != nil {
			return err
		}
		if len(product.Prices) == 0 {
			return nil
		}
		for i := range product.Prices {
			product.Prices[i].ID = 0
		}
		return tx.Create(&product.Prices).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete deletes a product by its ID.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Select("Prices").Delete(&models.Product{ID: id})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the number of products in the store.
func (r *GORMProductRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
