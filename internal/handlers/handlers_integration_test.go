package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gerai/internal/handlers"
	"gerai/internal/middleware"
	"gerai/internal/models"
	"gerai/internal/repositories"
	"gerai/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// setupApp wires the full application against an in-memory database, with
// notifications and events disabled.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.TierPrice{},
		&models.Cart{},
		&models.CartItem{},
		&models.DeliveryAddress{},
		&models.Order{},
		&models.OrderItem{},
	)
	require.NoError(t, err)

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	addressRepo := repositories.NewGORMAddressRepository(db)

	authService := services.NewAuthService(userRepo, "test-secret")
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	checkoutService := services.NewCheckoutService(cartRepo, orderRepo, nil, nil, services.CheckoutConfig{})
	orderService := services.NewOrderService(orderRepo)
	addressService := services.NewAddressService(addressRepo)
	dashboardService := services.NewDashboardService(orderRepo, productRepo, userRepo)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	handlers.NewCartHandler(cartService).RegisterRoutes(protected)
	handlers.NewCheckoutHandler(checkoutService, authService).RegisterRoutes(protected)
	handlers.NewOrderHandler(orderService, authService).RegisterRoutes(protected)
	handlers.NewAddressHandler(addressService).RegisterRoutes(protected)

	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.StaffRequired())
	productHandler := handlers.NewProductHandler(productService)
	productHandler.RegisterStaffRoutes(admin)
	orderHandler := handlers.NewOrderHandler(orderService, authService)
	orderHandler.RegisterStaffRoutes(admin)
	handlers.NewDashboardHandler(dashboardService).RegisterRoutes(admin)

	return &testEnv{app: app, db: db}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerAndLogin creates a customer through the public endpoints and
// returns a bearer token.
func (e *testEnv) registerAndLogin(t *testing.T, username, email, password string) string {
	t.Helper()
	resp := e.request(t, fiber.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	return e.login(t, username, password)
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := e.request(t, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"username": username,
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

// loginStaff provisions a staff account directly, the way it happens out of
// band in production, and logs in through the endpoint.
func (e *testEnv) loginStaff(t *testing.T, username string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		IsStaff:  true,
	}
	require.NoError(t, repositories.NewGORMUserRepository(e.db).Create(user))
	return e.login(t, username, "admin-pass")
}

func (e *testEnv) createProduct(t *testing.T, staffToken string, prices fiber.Map) *models.Product {
	t.Helper()
	resp := e.request(t, fiber.MethodPost, "/api/v1/admin/products", staffToken, fiber.Map{
		"name":           "Jasmine Rice",
		"category":       "Grains",
		"price_tier":     "per_bag",
		"prices":         prices,
		"stock_quantity": 25,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var product models.Product
	decodeBody(t, resp, &product)
	require.NotEmpty(t, product.ID)
	return &product
}

type cartBody struct {
	Cart      models.Cart     `json:"cart"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func TestShoppingFlow(t *testing.T) {
	env := setupApp(t)
	staffToken := env.loginStaff(t, "admin")
	customerToken := env.registerAndLogin(t, "ama", "ama@example.com", "secret-pass")

	product := env.createProduct(t, staffToken, fiber.Map{"per_bag": "80", "per_unit": "5"})
	assert.Equal(t, "jasmine-rice", product.Slug)

	// The catalog is public.
	resp := env.request(t, fiber.MethodGet, "/api/v1/products/jasmine-rice", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Add three bags to the cart.
	resp = env.request(t, fiber.MethodPost, "/api/v1/cart/items", customerToken, fiber.Map{
		"product_id": product.ID,
		"package":    "per_bag",
		"quantity":   3,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var item models.CartItem
	decodeBody(t, resp, &item)
	assert.True(t, item.CustomPrice.Decimal.Equal(decimal.NewFromInt(80)))

	resp = env.request(t, fiber.MethodGet, "/api/v1/cart/", customerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var cart cartBody
	decodeBody(t, resp, &cart)
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(240)))
	assert.Equal(t, 3, cart.ItemCount)

	// Checkout.
	resp = env.request(t, fiber.MethodPost, "/api/v1/checkout", customerToken, fiber.Map{
		"contact_name":    "Ama Mensah",
		"contact_phone":   "+233201234567",
		"address_line_1":  "12 Ring Road",
		"city":            "Accra",
		"state":           "Greater Accra",
		"postal_zip_code": "GA-145",
		"country":         "Ghana",
		"is_default":      true,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var checkout struct {
		Order models.Order `json:"order"`
	}
	decodeBody(t, resp, &checkout)
	assert.True(t, checkout.Order.TotalPrice.Equal(decimal.NewFromInt(240)))
	assert.Equal(t, models.StatusPending, checkout.Order.Status)
	assert.Regexp(t, `^FB-\d{8}-[0-9A-F]{6}$`, checkout.Order.ReferenceCode)

	// The cart is gone; the endpoint shows an empty one.
	resp = env.request(t, fiber.MethodGet, "/api/v1/cart/", customerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cart)
	assert.Equal(t, 0, cart.ItemCount)
	assert.True(t, cart.Total.Equal(decimal.Zero))

	// The checkout address became the default.
	resp = env.request(t, fiber.MethodGet, "/api/v1/addresses/default", customerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var address models.DeliveryAddress
	decodeBody(t, resp, &address)
	assert.Equal(t, "Accra", address.City)
	assert.True(t, address.IsDefault)

	// The order shows up with its tracking steps.
	resp = env.request(t, fiber.MethodGet, "/api/v1/orders/"+checkout.Order.ID, customerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var tracking struct {
		Order     models.Order         `json:"order"`
		ItemCount int                  `json:"item_count"`
		Steps     []models.OrderStatus `json:"steps"`
	}
	decodeBody(t, resp, &tracking)
	assert.Equal(t, 3, tracking.ItemCount)
	assert.Equal(t, models.StatusSteps, tracking.Steps)

	// Staff moves the order along.
	resp = env.request(t, fiber.MethodPatch, "/api/v1/admin/orders/"+checkout.Order.ID+"/status", staffToken, fiber.Map{
		"status": "shipped",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, fiber.MethodGet, "/api/v1/orders/"+checkout.Order.ID, customerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &tracking)
	assert.Equal(t, models.StatusShipped, tracking.Order.Status)
}

func TestPriceCutShowsDiscount(t *testing.T) {
	env := setupApp(t)
	staffToken := env.loginStaff(t, "admin")

	product := env.createProduct(t, staffToken, fiber.Map{"per_bag": "100"})
	assert.Equal(t, 0, product.DiscountPercent)

	resp := env.request(t, fiber.MethodPut, "/api/v1/admin/products/"+product.ID, staffToken, fiber.Map{
		"name":           product.Name,
		"category":       product.Category,
		"price_tier":     "per_bag",
		"prices":         fiber.Map{"per_bag": "80"},
		"stock_quantity": 25,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var updated models.Product
	decodeBody(t, resp, &updated)

	assert.Equal(t, 20, updated.DiscountPercent)
	old, ok := updated.OldPriceFor(models.TierPerBag)
	assert.True(t, ok)
	assert.True(t, old.Equal(decimal.NewFromInt(100)))
	price, ok := updated.PriceFor(models.TierPerBag)
	assert.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(80)))
}

func TestCheckoutWithEmptyCartRejected(t *testing.T) {
	env := setupApp(t)
	token := env.registerAndLogin(t, "kofi", "kofi@example.com", "secret-pass")

	resp := env.request(t, fiber.MethodPost, "/api/v1/checkout", token, fiber.Map{
		"contact_name":    "Kofi",
		"contact_phone":   "+233201234567",
		"address_line_1":  "1 High St",
		"city":            "Accra",
		"state":           "Greater Accra",
		"postal_zip_code": "GA-1",
		"country":         "Ghana",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAccessControl(t *testing.T) {
	env := setupApp(t)
	customerToken := env.registerAndLogin(t, "ama", "ama@example.com", "secret-pass")
	staffToken := env.loginStaff(t, "admin")

	// No token.
	resp := env.request(t, fiber.MethodGet, "/api/v1/cart/", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Customers cannot reach the admin surface.
	resp = env.request(t, fiber.MethodGet, "/api/v1/admin/dashboard", customerToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Staff can.
	resp = env.request(t, fiber.MethodGet, "/api/v1/admin/dashboard", staffToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Self-registration cannot mint staff accounts.
	resp = env.request(t, fiber.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"username": "sneaky",
		"email":    "sneaky@example.com",
		"password": "secret-pass",
		"is_staff": true,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	sneakyToken := env.login(t, "sneaky", "secret-pass")
	resp = env.request(t, fiber.MethodGet, "/api/v1/admin/dashboard", sneakyToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// One customer's order is invisible to another.
	product := env.createProduct(t, staffToken, fiber.Map{"per_bag": "80"})
	resp = env.request(t, fiber.MethodPost, "/api/v1/cart/items", customerToken, fiber.Map{
		"product_id": product.ID,
		"package":    "per_bag",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = env.request(t, fiber.MethodPost, "/api/v1/checkout", customerToken, fiber.Map{
		"contact_name":    "Ama Mensah",
		"contact_phone":   "+233201234567",
		"address_line_1":  "12 Ring Road",
		"city":            "Accra",
		"state":           "Greater Accra",
		"postal_zip_code": "GA-145",
		"country":         "Ghana",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var checkout struct {
		Order models.Order `json:"order"`
	}
	decodeBody(t, resp, &checkout)

	resp = env.request(t, fiber.MethodGet, "/api/v1/orders/"+checkout.Order.ID, sneakyToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
