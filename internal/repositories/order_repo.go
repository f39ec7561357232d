package repositories

import (
	"gerai/internal/models"

	"github.com/shopspring/decimal"
)

// ProductSales is one row of the top-products dashboard listing.
type ProductSales struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitsSold int64           `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// OrderMetrics aggregates order data for the admin dashboard.
type OrderMetrics struct {
	TotalOrders  int64                        `json:"total_orders"`
	TotalRevenue decimal.Decimal              `json:"total_revenue"`
	StatusCounts map[models.OrderStatus]int64 `json:"status_counts"`
	TopProducts  []ProductSales               `json:"top_products"`
}

// OrderRepository defines the interface for order data access. PlaceOrder
// writes the delivery address, the order and its items in one transaction:
// either all rows land or none do.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUser(userID string) ([]models.Order, error)
	Recent(limit int) ([]models.Order, error)
	PlaceOrder(address *models.DeliveryAddress, order *models.Order, items []models.OrderItem) error
	UpdateStatus(id string, status models.OrderStatus) error
	ReferenceExists(code string) (bool, error)
	Metrics() (*OrderMetrics, error)
}
