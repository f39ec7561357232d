package services

import (
	"gerai/internal/models"
	"gerai/internal/repositories"
)

// DashboardStats is the staff dashboard summary.
type DashboardStats struct {
	Metrics        *repositories.OrderMetrics `json:"metrics"`
	TotalCustomers int64                      `json:"total_customers"`
	TotalProducts  int64                      `json:"total_products"`
	RecentOrders   []models.Order             `json:"recent_orders"`
}

// DashboardService assembles administrative metrics across aggregates.
type DashboardService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	users repositories.UserRepository,
) *DashboardService {
	return &DashboardService{
		orders:   orders,
		products: products,
		users:    users,
	}
}

// Stats gathers order metrics, customer/product counts and recent orders.
func (s *DashboardService) Stats() (*DashboardStats, error) {
	metrics, err := s.orders.Metrics()
	if err != nil {
		return nil, err
	}
	customers, err := s.users.Count()
	if err != nil {
		return nil, err
	}
	products, err := s.products.Count()
	if err != nil {
		return nil, err
	}
	recent, err := s.orders.Recent(10)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		Metrics:        metrics,
		TotalCustomers: customers,
		TotalProducts:  products,
		RecentOrders:   recent,
	}, nil
}
