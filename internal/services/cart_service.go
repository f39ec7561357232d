package services

import (
	"errors"
	"fmt"

	"gerai/internal/models"
	"gerai/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartService handles business logic for a user's shopping cart.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
	}
}

// AddItemInput describes one add-to-cart request. SelectedPrice is the price
// the buyer saw when choosing the package; when absent the product's tier
// price is resolved instead. Either way the result is frozen on the line.
type AddItemInput struct {
	ProductID     string           `json:"product_id" validate:"required"`
	Package       models.PriceTier `json:"package"`
	Quantity      int              `json:"quantity"`
	SelectedPrice *decimal.Decimal `json:"selected_price"`
}

// GetCart returns the user's cart. A user without a cart gets an empty one
// (not persisted) so totals read as zero.
func (s *CartService) GetCart(userID string) (*models.Cart, error) {
	cart, err := s.carts.GetByUser(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &models.Cart{UserID: userID}, nil
		}
		return nil, err
	}
	return cart, nil
}

// AddItem puts a product into the user's cart, freezing the unit price at
// this moment. Adding the same product and package again increments the
// quantity and refreshes the frozen price.
func (s *CartService) AddItem(userID string, input AddItemInput) (*models.CartItem, error) {
	if input.Package != "" && !input.Package.Valid() {
		return nil, fmt.Errorf("%w: unknown package %q", ErrValidation, input.Package)
	}
	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.products.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}

	frozen := s.resolveUnitPrice(product, input)

	cart, err := s.carts.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	item, err := s.carts.FindItem(cart.ID, product.ID, input.Package)
	if err == nil {
		item.Quantity += quantity
		item.CustomPrice = frozen
		if err := s.carts.UpdateItem(item); err != nil {
			return nil, err
		}
		item.Product = *product
		return item, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	item = &models.CartItem{
		CartID:      cart.ID,
		ProductID:   product.ID,
		Quantity:    quantity,
		Package:     input.Package,
		CustomPrice: frozen,
	}
	if err := s.carts.CreateItem(item); err != nil {
		return nil, err
	}
	item.Product = *product
	return item, nil
}

// resolveUnitPrice picks the price to freeze: the buyer-selected price when
// given, else the package tier price, else the product's active-tier price.
func (s *CartService) resolveUnitPrice(product *models.Product, input AddItemInput) decimal.NullDecimal {
	if input.SelectedPrice != nil && input.SelectedPrice.IsPositive() {
		return decimal.NullDecimal{Decimal: *input.SelectedPrice, Valid: true}
	}
	if input.Package != "" {
		if price, ok := product.PriceFor(input.Package); ok {
			return decimal.NullDecimal{Decimal: price, Valid: true}
		}
	}
	if price, ok := product.CurrentPrice(); ok {
		return decimal.NullDecimal{Decimal: price, Valid: true}
	}
	return decimal.NullDecimal{}
}

// UpdateQuantity increments or decrements a line's quantity. Decrementing
// stops at one; removal is explicit via RemoveItem.
func (s *CartService) UpdateQuantity(userID, itemID, action string) (*models.Cart, error) {
	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	switch action {
	case "increase":
		item.Quantity++
	case "decrease":
		if item.Quantity > 1 {
			item.Quantity--
		}
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}

	if err := s.carts.UpdateItem(item); err != nil {
		return nil, err
	}
	return s.carts.GetByUser(userID)
}

// RemoveItem deletes one line from the user's cart.
func (s *CartService) RemoveItem(userID, itemID string) error {
	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return err
	}
	return s.carts.DeleteItem(item.ID)
}

// ownedItem loads a cart line and verifies it belongs to the user's cart.
// Foreign items read as not found so cart contents cannot be probed.
func (s *CartService) ownedItem(userID, itemID string) (*models.CartItem, error) {
	cart, err := s.carts.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	item, err := s.carts.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.CartID != cart.ID {
		return nil, fmt.Errorf("cart item %s: %w", itemID, repositories.ErrNotFound)
	}
	return item, nil
}
