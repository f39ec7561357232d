package services

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gerai/internal/models"
	"gerai/internal/repositories"
	"gerai/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Notifier delivers an outbound notification to one recipient. Failures are
// never fatal to the operation that triggered the send.
type Notifier interface {
	Send(recipient, subject, body string) error
}

// EventPublisher publishes a message to a named queue.
type EventPublisher interface {
	Publish(queue string, body []byte) error
}

// referenceAttempts bounds regeneration on reference code collisions before
// the checkout gives up with a conflict.
const referenceAttempts = 5

// CheckoutConfig carries the tunables of the checkout transition.
type CheckoutConfig struct {
	// ReferencePrefix starts every order reference code.
	ReferencePrefix string
	// AdminEmail receives the internal new-order notification.
	AdminEmail string
}

// CheckoutService turns a cart into an order. The transition is: validate
// the address fields, require a non-empty cart, write address + order +
// item snapshots atomically, notify best-effort, then destroy the cart.
// A per-user mutex serializes concurrent checkouts of the same cart.
type CheckoutService struct {
	carts    repositories.CartRepository
	orders   repositories.OrderRepository
	notifier Notifier
	events   EventPublisher
	config   CheckoutConfig
	validate *validator.Validate
	locks    sync.Map // user ID -> *sync.Mutex
}

// NewCheckoutService creates a new CheckoutService. notifier and events may
// be nil; the corresponding sends are skipped with a log line.
func NewCheckoutService(
	carts repositories.CartRepository,
	orders repositories.OrderRepository,
	notifier Notifier,
	events EventPublisher,
	config CheckoutConfig,
) *CheckoutService {
	if config.ReferencePrefix == "" {
		config.ReferencePrefix = "FB"
	}
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		notifier: notifier,
		events:   events,
		config:   config,
		validate: validator.New(),
	}
}

// CheckoutRequest is the delivery information collected on the checkout page.
type CheckoutRequest struct {
	ContactName   string `json:"contact_name" validate:"required"`
	ContactPhone  string `json:"contact_phone" validate:"required"`
	AddressLine1  string `json:"address_line_1" validate:"required"`
	AddressLine2  string `json:"address_line_2"`
	City          string `json:"city" validate:"required"`
	State         string `json:"state" validate:"required"`
	PostalZipCode string `json:"postal_zip_code" validate:"required"`
	Country       string `json:"country" validate:"required"`
	IsDefault     bool   `json:"is_default"`
}

func (r *CheckoutRequest) trim() {
	r.ContactName = strings.TrimSpace(r.ContactName)
	r.ContactPhone = strings.TrimSpace(r.ContactPhone)
	r.AddressLine1 = strings.TrimSpace(r.AddressLine1)
	r.AddressLine2 = strings.TrimSpace(r.AddressLine2)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.PostalZipCode = strings.TrimSpace(r.PostalZipCode)
	r.Country = strings.TrimSpace(r.Country)
}

// CheckoutResult reports a completed checkout. Warnings carry non-fatal
// problems (notification or cart-cleanup failures); the order stands
// regardless.
type CheckoutResult struct {
	Order    *models.Order `json:"order"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Checkout runs the cart-to-order transition for one user.
func (s *CheckoutService) Checkout(user *models.User, req CheckoutRequest) (*CheckoutResult, error) {
	req.trim()
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: please fill in all required fields", ErrValidation)
	}

	lock := s.lockFor(user.ID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.carts.GetByUser(user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: your cart is empty", ErrValidation)
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: your cart is empty", ErrValidation)
	}

	// Total is fixed here, before any mutation.
	total := cart.Total()

	reference, err := s.generateReference()
	if err != nil {
		return nil, err
	}

	address := &models.DeliveryAddress{
		ID:            uuid.New().String(),
		UserID:        user.ID,
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		AddressLine1:  req.AddressLine1,
		AddressLine2:  req.AddressLine2,
		City:          req.City,
		State:         req.State,
		PostalZipCode: req.PostalZipCode,
		Country:       req.Country,
		IsDefault:     req.IsDefault,
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		UserID:        user.ID,
		TotalPrice:    total,
		Status:        models.StatusPending,
		ReferenceCode: reference,
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for i := range cart.Items {
		line := &cart.Items[i]
		items = append(items, models.OrderItem{
			ID:        uuid.New().String(),
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice(),
			Package:   line.Package,
		})
	}

	if err := s.orders.PlaceOrder(address, order, items); err != nil {
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	result := &CheckoutResult{Order: order}
	s.sendNotifications(user, order, cart, req, result)
	s.publishOrderCreated(order)

	if err := s.carts.Clear(cart.ID); err != nil {
		// The order is durable; a surviving cart is a known retry gap.
		log.Printf("Warning: order %s placed but cart %s was not cleared: %v", order.ReferenceCode, cart.ID, err)
		result.Warnings = append(result.Warnings, "order placed, but your cart could not be cleared")
	}

	return result, nil
}

func (s *CheckoutService) lockFor(userID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// generateReference produces a date-prefixed random code, regenerating on
// collision up to referenceAttempts times.
func (s *CheckoutService) generateReference() (string, error) {
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		entropy := uuid.New()
		code := fmt.Sprintf("%s-%s-%s",
			s.config.ReferencePrefix,
			time.Now().Format("20060102"),
			strings.ToUpper(hex.EncodeToString(entropy[:3])))

		exists, err := s.orders.ReferenceExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique order reference: %w", repositories.ErrConflict)
}

// sendNotifications delivers the customer confirmation and the internal
// notification. Failures downgrade to warnings; the order already stands.
func (s *CheckoutService) sendNotifications(user *models.User, order *models.Order, cart *models.Cart, req CheckoutRequest, result *CheckoutResult) {
	if s.notifier == nil {
		log.Println("Notifier is not configured. Skipping order notifications.")
		return
	}

	subject := fmt.Sprintf("Order Confirmation #%s - Thank you for your purchase!", order.ReferenceCode)
	if err := s.notifier.Send(user.Email, subject, confirmationBody(order, cart, req)); err != nil {
		log.Printf("Warning: failed to send confirmation for order %s: %v", order.ReferenceCode, err)
		result.Warnings = append(result.Warnings, "order placed, but the confirmation email could not be sent")
	}

	if s.config.AdminEmail == "" {
		return
	}
	adminSubject := fmt.Sprintf("New Order #%s from %s", order.ReferenceCode, req.ContactName)
	if err := s.notifier.Send(s.config.AdminEmail, adminSubject, adminBody(user, order, cart, req)); err != nil {
		log.Printf("Warning: failed to notify admin for order %s: %v", order.ReferenceCode, err)
	}
}

// publishOrderCreated emits an order.created event, best-effort.
func (s *CheckoutService) publishOrderCreated(order *models.Order) {
	if s.events == nil {
		log.Println("Event publisher is not configured. Skipping order event.")
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event":     "order.created",
		"orderID":   order.ID,
		"reference": order.ReferenceCode,
		"userID":    order.UserID,
		"status":    order.Status,
		"total":     order.TotalPrice,
	})
	if err != nil {
		log.Printf("Warning: failed to marshal order event for %s: %v", order.ReferenceCode, err)
		return
	}
	if err := s.events.Publish(rabbitmq.OrderEventsQueue, payload); err != nil {
		log.Printf("Warning: failed to publish order created event for %s: %v", order.ReferenceCode, err)
	}
}

func itemLines(b *strings.Builder, cart *models.Cart) {
	for i := range cart.Items {
		line := &cart.Items[i]
		pkg := string(line.Package)
		if pkg == "" {
			pkg = "N/A"
		}
		fmt.Fprintf(b, "  %d x %s (%s) @ %s = %s\n",
			line.Quantity, line.Product.Name, pkg,
			line.UnitPrice().StringFixed(2), line.Subtotal().StringFixed(2))
	}
}

func confirmationBody(order *models.Order, cart *models.Cart, req CheckoutRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your order %s.\n\nItems:\n", req.ContactName, order.ReferenceCode)
	itemLines(&b, cart)
	fmt.Fprintf(&b, "\nTotal: %s\n\nDelivery to:\n%s\n", order.TotalPrice.StringFixed(2), formatAddress(req))
	return b.String()
}

func adminBody(user *models.User, order *models.Order, cart *models.Cart, req CheckoutRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s\n\nCustomer: %s\nEmail: %s\nPhone: %s\n\nItems:\n",
		order.ReferenceCode, req.ContactName, user.Email, req.ContactPhone)
	itemLines(&b, cart)
	fmt.Fprintf(&b, "\nTotal: %s\n\nShip to:\n%s\n", order.TotalPrice.StringFixed(2), formatAddress(req))
	return b.String()
}

func formatAddress(req CheckoutRequest) string {
	lines := []string{req.AddressLine1}
	if req.AddressLine2 != "" {
		lines = append(lines, req.AddressLine2)
	}
	lines = append(lines, fmt.Sprintf("%s, %s %s", req.City, req.State, req.PostalZipCode), req.Country)
	return strings.Join(lines, "\n")
}
