package services_test

import (
	"errors"
	"sync"
	"testing"

	"gerai/internal/models"
	"gerai/internal/repositories"
	"gerai/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type sentMessage struct {
	Recipient string
	Subject   string
	Body      string
}

type recordingNotifier struct {
	mu    sync.Mutex
	sends []sentMessage
	err   error
}

func (n *recordingNotifier) Send(recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sends = append(n.sends, sentMessage{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	queues []string
	bodies [][]byte
	err    error
}

func (p *recordingPublisher) Publish(queue string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.queues = append(p.queues, queue)
	p.bodies = append(p.bodies, body)
	return nil
}

type failingOrderRepo struct {
	*repositories.MockOrderRepository
	placeErr error
}

func (r *failingOrderRepo) PlaceOrder(address *models.DeliveryAddress, order *models.Order, items []models.OrderItem) error {
	if r.placeErr != nil {
		return r.placeErr
	}
	return r.MockOrderRepository.PlaceOrder(address, order, items)
}

type collidingOrderRepo struct {
	*repositories.MockOrderRepository
	checks int
}

func (r *collidingOrderRepo) ReferenceExists(code string) (bool, error) {
	r.checks++
	return true, nil
}

type uncleanCartRepo struct {
	*repositories.MockCartRepository
}

func (r *uncleanCartRepo) Clear(cartID string) error {
	return errors.New("cart table locked")
}

func seedCart(t *testing.T, carts repositories.CartRepository, userID string, lines ...models.CartItem) *models.Cart {
	t.Helper()
	cart, err := carts.GetOrCreate(userID)
	assert.NoError(t, err)
	for i := range lines {
		lines[i].CartID = cart.ID
		assert.NoError(t, carts.CreateItem(&lines[i]))
	}
	cart, err = carts.GetByUser(userID)
	assert.NoError(t, err)
	return cart
}

func frozenLine(productID string, qty int, price int64) models.CartItem {
	return models.CartItem{
		ProductID:   productID,
		Quantity:    qty,
		Package:     models.TierPerBag,
		CustomPrice: decimal.NullDecimal{Decimal: dec(price), Valid: true},
	}
}

func validCheckoutRequest() services.CheckoutRequest {
	return services.CheckoutRequest{
		ContactName:   "Ama Mensah",
		ContactPhone:  "+233201234567",
		AddressLine1:  "12 Ring Road",
		City:          "Accra",
		State:         "Greater Accra",
		PostalZipCode: "GA-145",
		Country:       "Ghana",
		IsDefault:     true,
	}
}

func checkoutUser() *models.User {
	return &models.User{ID: "user-1", Email: "ama@example.com", Username: "ama"}
}

func TestCheckoutService_Success(t *testing.T) {
	carts := repositories.NewMockCartRepository()
	orders := repositories.NewMockOrderRepository()
	notifier := &recordingNotifier{}
	events := &recordingPublisher{}
	service := services.NewCheckoutService(carts, orders, notifier, events, services.CheckoutConfig{
		AdminEmail: "orders@example.com",
	})

	seedCart(t, carts, "user-1",
		frozenLine("prod-1", 3, 80),
		frozenLine("prod-2", 1, 50),
	)

	result, err := service.Checkout(checkoutUser(), validCheckoutRequest())
	assert.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.True(t, result.Order.TotalPrice.Equal(dec(290)))
	assert.Equal(t, models.StatusPending, result.Order.Status)
	assert.Regexp(t, `^FB-\d{8}-[0-9A-F]{6}$`, result.Order.ReferenceCode)

	// Exactly one order, with per-line price snapshots.
	all, err := orders.GetAll()
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, all[0].Items, 2)
	assert.True(t, all[0].Items[0].Price.Equal(dec(80)))

	// The cart is destroyed.
	_, err = carts.GetByUser("user-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// Customer confirmation plus the internal notification.
	assert.Len(t, notifier.sends, 2)
	assert.Equal(t, "ama@example.com", notifier.sends[0].Recipient)
	assert.Contains(t, notifier.sends[0].Subject, result.Order.ReferenceCode)
	assert.Equal(t, "orders@example.com", notifier.sends[1].Recipient)

	// One order.created event.
	assert.Equal(t, []string{"order_events"}, events.queues)
	assert.Contains(t, string(events.bodies[0]), result.Order.ReferenceCode)
}

func TestCheckoutService_EmptyCartRejected(t *testing.T) {
	carts := repositories.NewMockCartRepository()
	orders := repositories.NewMockOrderRepository()
	service := services.NewCheckoutService(carts, orders, nil, nil, services.CheckoutConfig{})

	// No cart at all.
	_, err := service.Checkout(checkoutUser(), validCheckoutRequest())
	assert.ErrorIs(t, err, services.ErrValidation)

	// A cart with zero lines.
	_, cartErr := carts.GetOrCreate("user-1")
	assert.NoError(t, cartErr)
	_, err = service.Checkout(checkoutUser(), validCheckoutRequest())
	assert.ErrorIs(t, err, services.ErrValidation)

	all, err := orders.GetAll()
	assert.NoError(t, err)
	assert.Empty(t, all)
}

func TestCheckoutService_MissingFieldsRejectedWithoutSideEffects(t *testing.T) {
	carts := repositories.NewMockCartRepository()
	orders := repositories.NewMockOrderRepository()
	service := services.NewCheckoutService(carts, orders, nil, nil, services.CheckoutConfig{})

	seedCart(t, carts, "user-1", frozenLine("prod-1", 1, 80))

	req := validCheckoutRequest()
	req.City = "   " // whitespace trims to empty
	_, err := service.Checkout(checkoutUser(), req)
	assert.ErrorIs(t, err, services.ErrValidation)

	all, err := orders.GetAll()
	assert.NoError(t, err)
	assert.Empty(t, all)

	cart, err := carts.GetByUser("user-1")
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCheckoutService_PlaceOrderFailureKeepsCart(t *testing.T) {
	carts := repositories.NewMockCartRepository()
	orders := &failingOrderRepo{
		MockOrderRepository: repositories.NewMockOrderRepository(),
		placeErr:            errors.New("connection reset"),
	}
	notifier := &recordingNotifier{}
	service := services.NewCheckoutService(carts, orders, notifier, nil, services.CheckoutConfig{})

	seedCart(t, carts, "user-1", frozenLine("prod-1", 2, 40))

	_, err := service.Checkout(checkoutUser(), validCheckoutRequest())
	assert.Error(t, err)

	// Nothing was sent and the cart survives for a retry.
	assert.Empty(t, notifier.sends)
	cart, err := carts.GetByUser("user-1")
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCheckoutService_ReferenceCollisionGivesUp(t *testing.T) {
	carts := repositories.NewMockCartRepository()
	orders := &collidingOrderRepo{MockOrderRepository: repositories.NewMockOrderRepository()}
	service := services.NewCheckoutService(carts, orders, nil, nil, services.CheckoutConfig{})

	seedCart(t, carts, "user-1", frozenLine("prod-1", 1, 10))

	_, err := service.Checkout(checkoutUser(), validCheckoutRequest())
	assert.ErrorIs(t, err, repositories.ErrConflict)
	assert.Equal(t, 5, orders.checks)

	cart, err := carts.GetByUser("user-1")
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCheckoutService_NotificationFailureIsWarningOnly(t *testing.T) {
	carts := repositories.NewMockCartRepository()
	orders := repositories.NewMockOrderRepository()
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	service := services.NewCheckoutService(carts, orders, notifier, nil, services.CheckoutConfig{
		AdminEmail: "orders@example.com",
	})

	seedCart(t, carts, "user-1", frozenLine("prod-1", 1, 80))

	result, err := service.Checkout(checkoutUser(), validCheckoutRequest())
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Warnings)

	all, err := orders.GetAll()
	assert.NoError(t, err)
	assert.Len(t, all, 1)

	// The cart is still cleared.
	_, err = carts.GetByUser("user-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCheckoutService_CartClearFailureIsWarningOnly(t *testing.T) {
	carts := &uncleanCartRepo{MockCartRepository: repositories.NewMockCartRepository()}
	orders := repositories.NewMockOrderRepository()
	service := services.NewCheckoutService(carts, orders, nil, nil, services.CheckoutConfig{})

	seedCart(t, carts, "user-1", frozenLine("prod-1", 1, 80))

	result, err := service.Checkout(checkoutUser(), validCheckoutRequest())
	assert.NoError(t, err)
	assert.Len(t, result.Warnings, 1)

	all, err := orders.GetAll()
	assert.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCheckoutService_CustomReferencePrefix(t *testing.T) {
	carts := repositories.NewMockCartRepository()
	orders := repositories.NewMockOrderRepository()
	service := services.NewCheckoutService(carts, orders, nil, nil, services.CheckoutConfig{
		ReferencePrefix: "ORD",
	})

	seedCart(t, carts, "user-1", frozenLine("prod-1", 1, 10))

	result, err := service.Checkout(checkoutUser(), validCheckoutRequest())
	assert.NoError(t, err)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{6}$`, result.Order.ReferenceCode)
}

func TestCheckoutService_DoubleSubmitPlacesOneOrder(t *testing.T) {
	carts := repositories.NewMockCartRepository()
	orders := repositories.NewMockOrderRepository()
	service := services.NewCheckoutService(carts, orders, nil, nil, services.CheckoutConfig{})

	seedCart(t, carts, "user-1", frozenLine("prod-1", 2, 80))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, rejected int
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Checkout(checkoutUser(), validCheckoutRequest())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(t, err, services.ErrValidation)
			rejected++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 3, rejected)

	all, err := orders.GetAll()
	assert.NoError(t, err)
	assert.Len(t, all, 1)
}
