package repositories

import (
	"fmt"
	"sort"
	"sync"

	"gerai/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders    map[string]models.Order
	addresses map[string]models.DeliveryAddress
	seq       []string // insertion order, newest last
	mu        sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders:    make(map[string]models.Order),
		addresses: make(map[string]models.DeliveryAddress),
	}
}

// GetAll returns all orders, newest first.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for i := len(r.seq) - 1; i >= 0; i-- {
		orderList = append(orderList, r.orders[r.seq[i]])
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// GetByUser returns a user's orders, newest first.
func (r *MockOrderRepository) GetByUser(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for i := len(r.seq) - 1; i >= 0; i-- {
		if order := r.orders[r.seq[i]]; order.UserID == userID {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// Recent returns the most recently placed orders.
func (r *MockOrderRepository) Recent(limit int) ([]models.Order, error) {
	all, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// PlaceOrder stores the address, order and items together. The reference
// code uniqueness constraint is enforced as it would be by the database.
func (r *MockOrderRepository) PlaceOrder(address *models.DeliveryAddress, order *models.Order, items []models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.orders {
		if existing.ReferenceCode == order.ReferenceCode {
			return fmt.Errorf("order reference %s: %w", order.ReferenceCode, ErrConflict)
		}
	}

	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	if address.IsDefault {
		for id, other := range r.addresses {
			if other.UserID == address.UserID && other.ID != address.ID {
				other.IsDefault = false
				r.addresses[id] = other
			}
		}
	}
	r.addresses[address.ID] = *address

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		items[i].OrderID = order.ID
	}
	order.Items = items
	r.orders[order.ID] = *order
	r.seq = append(r.seq, order.ID)
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	order.Status = status
	r.orders[id] = order
	return nil
}

// ReferenceExists reports whether any stored order carries the code.
func (r *MockOrderRepository) ReferenceExists(code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.ReferenceCode == code {
			return true, nil
		}
	}
	return false, nil
}

// Metrics aggregates the stored orders.
func (r *MockOrderRepository) Metrics() (*OrderMetrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metrics := &OrderMetrics{
		TotalRevenue: decimal.Zero,
		StatusCounts: make(map[models.OrderStatus]int64),
	}
	sales := make(map[string]*ProductSales)
	for _, order := range r.orders {
		metrics.TotalOrders++
		metrics.TotalRevenue = metrics.TotalRevenue.Add(order.TotalPrice)
		metrics.StatusCounts[order.Status]++
		for i := range order.Items {
			item := &order.Items[i]
			entry, ok := sales[item.ProductID]
			if !ok {
				entry = &ProductSales{ProductID: item.ProductID, Name: item.Product.Name, Revenue: decimal.Zero}
				sales[item.ProductID] = entry
			}
			entry.UnitsSold += int64(item.Quantity)
			entry.Revenue = entry.Revenue.Add(item.Subtotal())
		}
	}
	for _, entry := range sales {
		metrics.TopProducts = append(metrics.TopProducts, *entry)
	}
	sort.Slice(metrics.TopProducts, func(i, j int) bool {
		return metrics.TopProducts[i].UnitsSold > metrics.TopProducts[j].UnitsSold
	})
	if len(metrics.TopProducts) > 10 {
		metrics.TopProducts = metrics.TopProducts[:10]
	}
	return metrics, nil
}
