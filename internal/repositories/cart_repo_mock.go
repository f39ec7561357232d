package repositories

import (
	"fmt"
	"sync"

	"gerai/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string]models.Cart     // keyed by cart ID
	items map[string]models.CartItem // keyed by item ID
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
		items: make(map[string]models.CartItem),
	}
}

func (r *MockCartRepository) cartWithItems(cart models.Cart) *models.Cart {
	cart.Items = nil
	for _, item := range r.items {
		if item.CartID == cart.ID {
			cart.Items = append(cart.Items, item)
		}
	}
	return &cart
}

// GetByUser returns a user's cart with its items.
func (r *MockCartRepository) GetByUser(userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cart := range r.carts {
		if cart.UserID == userID {
			return r.cartWithItems(cart), nil
		}
	}
	return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
}

// GetOrCreate returns the user's cart, creating one if none exists.
func (r *MockCartRepository) GetOrCreate(userID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cart := range r.carts {
		if cart.UserID == userID {
			return r.cartWithItems(cart), nil
		}
	}
	cart := models.Cart{ID: uuid.New().String(), UserID: userID}
	r.carts[cart.ID] = cart
	return r.cartWithItems(cart), nil
}

// FindItem looks up a cart line by product and package tier.
func (r *MockCartRepository) FindItem(cartID, productID string, pkg models.PriceTier) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.CartID == cartID && item.ProductID == productID && item.Package == pkg {
			found := item
			return &found, nil
		}
	}
	return nil, fmt.Errorf("cart item for product %s: %w", productID, ErrNotFound)
}

// GetItem returns one cart line by its ID.
func (r *MockCartRepository) GetItem(itemID string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return nil, fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
	}
	return &item, nil
}

// CreateItem adds a new line to a cart.
func (r *MockCartRepository) CreateItem(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.items[item.ID] = *item
	return nil
}

// UpdateItem modifies an existing cart line.
func (r *MockCartRepository) UpdateItem(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("cart item %s: %w", item.ID, ErrNotFound)
	}
	r.items[item.ID] = *item
	return nil
}

// DeleteItem removes one line from a cart.
func (r *MockCartRepository) DeleteItem(itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[itemID]; !ok {
		return fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
	}
	delete(r.items, itemID)
	return nil
}

// Clear deletes a cart and all of its items.
func (r *MockCartRepository) Clear(cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		if item.CartID == cartID {
			delete(r.items, id)
		}
	}
	delete(r.carts, cartID)
	return nil
}
