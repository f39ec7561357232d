package services

import (
	"fmt"

	"gerai/internal/models"
	"gerai/internal/repositories"
)

// OrderService handles order retrieval and status tracking. Orders are
// created by CheckoutService only; here they are read and their status
// moved between the fixed states by administrative action.
type OrderService struct {
	repo repositories.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(repo repositories.OrderRepository) *OrderService {
	return &OrderService{
		repo: repo,
	}
}

// GetAllOrders retrieves all orders (administrative view).
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.repo.GetAll()
}

// GetOrdersForUser retrieves a user's orders, newest first.
func (s *OrderService) GetOrdersForUser(userID string) ([]models.Order, error) {
	return s.repo.GetByUser(userID)
}

// GetOrder retrieves one order for the requesting user. Staff see any
// order; everyone else sees only their own, other orders read as not found.
func (s *OrderService) GetOrder(id string, requester *models.User) (*models.Order, error) {
	order, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !requester.IsStaff && order.UserID != requester.ID {
		return nil, fmt.Errorf("order %s: %w", id, repositories.ErrNotFound)
	}
	return order, nil
}

// UpdateOrderStatus moves an order to any of the fixed statuses. No
// transition graph is enforced.
func (s *OrderService) UpdateOrderStatus(id string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: invalid order status %q", ErrValidation, status)
	}
	if err := s.repo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return nil
}
