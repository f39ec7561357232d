package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gerai/internal/models"
	"gerai/internal/repositories"

	"github.com/shopspring/decimal"
)

// ProductService handles business logic related to products, in particular
// the save-time pricing rules: slug assignment, previous-price tracking for
// the active tier and discount percentage recomputation.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves products matching the filter.
func (s *ProductService) GetAllProducts(filter repositories.ProductFilter) ([]models.Product, error) {
	return s.repo.GetAll(filter)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// GetProductBySlug retrieves a single product by its slug.
func (s *ProductService) GetProductBySlug(slug string) (*models.Product, error) {
	return s.repo.GetBySlug(slug)
}

// CreateProduct persists a new product. A slug is derived from the name when
// absent and the discount percentage is recomputed before the write. No
// previous-price snapshot happens on first creation.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if !product.ActiveTier.Valid() {
		return fmt.Errorf("%w: unknown price tier %q", ErrValidation, product.ActiveTier)
	}
	if product.Slug == "" {
		slug, err := s.uniqueSlug(slugify(product.Name), product.ID)
		if err != nil {
			return err
		}
		product.Slug = slug
	}
	product.DiscountPercent = discountPercent(product)
	return s.repo.Create(product)
}

// UpdateProduct persists changes to an existing product. When the active
// tier's current price differs from the previously persisted one, the old
// value becomes that tier's previous price. Prices of inactive tiers are
// never snapshotted, even if they changed; discount tracking only follows
// the currently selling tier.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if !product.ActiveTier.Valid() {
		return fmt.Errorf("%w: unknown price tier %q", ErrValidation, product.ActiveTier)
	}

	previous, err := s.repo.GetByID(product.ID)
	if err != nil {
		return err
	}

	tier := product.ActiveTier
	prevPrice, hadPrev := previous.PriceFor(tier)
	newPrice, hasNew := product.PriceFor(tier)
	if hadPrev && hasNew && !prevPrice.Equal(newPrice) {
		product.SetOldPrice(tier, prevPrice)
	}

	if product.Slug == "" {
		slug, err := s.uniqueSlug(slugify(product.Name), product.ID)
		if err != nil {
			return err
		}
		product.Slug = slug
	}

	product.DiscountPercent = discountPercent(product)
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// uniqueSlug suffixes base with a counter until no other product claims it.
func (s *ProductService) uniqueSlug(base, selfID string) (string, error) {
	if base == "" {
		base = "product"
	}
	slug := base
	for i := 2; ; i++ {
		existing, err := s.repo.GetBySlug(slug)
		if errors.Is(err, repositories.ErrNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", err
		}
		if existing.ID == selfID {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// slugify lowercases the name and folds runs of non-alphanumerics into
// single dashes.
func slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

var oneHundred = decimal.NewFromInt(100)

// discountPercent derives the stored percentage from the active tier's
// price pair: round((old-current)/old*100), clamped to [0, 100], and zero
// unless old > current > 0.
func discountPercent(product *models.Product) int {
	current, okCurrent := product.CurrentPrice()
	old, okOld := product.OldPrice()
	if !okCurrent || !okOld || !current.LessThan(old) {
		return 0
	}
	percent := old.Sub(current).Mul(oneHundred).Div(old).Round(0).IntPart()
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	return int(percent)
}
