package repositories

import (
	"errors"
	"fmt"

	"gerai/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items.Product").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items.Product").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByUser retrieves a user's orders, newest first.
func (r *GORMOrderRepository) GetByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items.Product").Order("created_at DESC").
		Find(&orders, "user_id = ?", userID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// Recent retrieves the most recently placed orders.
func (r *GORMOrderRepository) Recent(limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent orders: %w", err)
	}
	return orders, nil
}

// PlaceOrder persists the delivery address, order and order items in one
// transaction. If the address is flagged default, the user's other addresses
// lose the flag inside the same transaction.
func (r *GORMOrderRepository) PlaceOrder(address *models.DeliveryAddress, order *models.Order, items []models.OrderItem) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		items[i].OrderID = order.ID
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := saveAddress(tx, address); err != nil {
			return err
		}
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Omit("Product").Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("order reference %s: %w", order.ReferenceCode, ErrConflict)
		}
		return fmt.Errorf("failed to place order: %w", err)
	}
	order.Items = items
	return nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}

// ReferenceExists reports whether any order carries the given reference code.
func (r *GORMOrderRepository) ReferenceExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("reference_code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check reference %s: %w", code, err)
	}
	return count > 0, nil
}

// Metrics aggregates order counts, revenue, status breakdown and top
// products for the admin dashboard.
func (r *GORMOrderRepository) Metrics() (*OrderMetrics, error) {
	metrics := &OrderMetrics{
		TotalRevenue: decimal.Zero,
		StatusCounts: make(map[models.OrderStatus]int64),
	}

	if err := r.db.Model(&models.Order{}).Count(&metrics.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	row := r.db.Model(&models.Order{}).Select("COALESCE(SUM(total_price), 0)").Row()
	if err := row.Scan(&metrics.TotalRevenue); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	var statusRows []struct {
		Status models.OrderStatus
		Count  int64
	}
	err := r.db.Model(&models.Order{}).Select("status, COUNT(*) AS count").
		Group("status").Scan(&statusRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to break down statuses: %w", err)
	}
	for _, row := range statusRows {
		metrics.StatusCounts[row.Status] = row.Count
	}

	err = r.db.Model(&models.OrderItem{}).
		Select("order_items.product_id, products.name, SUM(order_items.quantity) AS units_sold, SUM(order_items.price * order_items.quantity) AS revenue").
		Joins("JOIN products ON products.id = order_items.product_id").
		Group("order_items.product_id, products.name").
		Order("units_sold DESC").
		Limit(10).
		Scan(&metrics.TopProducts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}

	return metrics, nil
}
