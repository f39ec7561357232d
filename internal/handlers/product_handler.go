package handlers

import (
	"fmt"
	"log"

	"gerai/internal/models"
	"gerai/internal/repositories"
	"gerai/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:slug", h.HandleGetProductBySlug)
}

// RegisterStaffRoutes registers the catalog management routes; the caller
// mounts them behind the staff middleware.
func (h *ProductHandler) RegisterStaffRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts lists available products, optionally filtered by
// category (?category=) and name search (?q=).
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	filter := repositories.ProductFilter{
		Category:      c.Query("category"),
		Search:        c.Query("q"),
		AvailableOnly: true,
	}
	products, err := h.service.GetAllProducts(filter)
	if err != nil {
		log.Printf("Error getting products: %v", err)
		return errorResponse(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductBySlug retrieves a single product by its slug.
func (h *ProductHandler) HandleGetProductBySlug(c *fiber.Ctx) error {
	product, err := h.service.GetProductBySlug(c.Params("slug"))
	if err != nil {
		log.Printf("Error getting product %s: %v", c.Params("slug"), err)
		return errorResponse(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// ProductRequest is the catalog management payload. Prices maps each tier
// the product sells in to its current price.
type ProductRequest struct {
	Name          string                               `json:"name" validate:"required,min=3,max=255"`
	Description   string                               `json:"description" validate:"omitempty,max=2000"`
	Category      string                               `json:"category"`
	SubCategory   string                               `json:"sub_category"`
	Size          string                               `json:"size"`
	PriceTier     models.PriceTier                     `json:"price_tier" validate:"required"`
	Prices        map[models.PriceTier]decimal.Decimal `json:"prices" validate:"required"`
	StockQuantity int                                  `json:"stock_quantity" validate:"gte=0"`
	IsAvailable   *bool                                `json:"is_available"`
}

func (h *ProductHandler) parseRequest(c *fiber.Ctx) (*ProductRequest, error) {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, err
	}
	for tier := range req.Prices {
		if !tier.Valid() {
			return nil, fmt.Errorf("unknown price tier %q", tier)
		}
	}
	return &req, nil
}

func applyRequest(product *models.Product, req *ProductRequest) {
	product.Name = req.Name
	product.Description = req.Description
	product.Category = req.Category
	product.SubCategory = req.SubCategory
	product.Size = req.Size
	product.ActiveTier = req.PriceTier
	product.StockQuantity = req.StockQuantity
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}
	for tier, price := range req.Prices {
		product.SetPrice(tier, price)
	}
}

// HandleCreateProduct creates a catalog entry.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	product := &models.Product{IsAvailable: true}
	applyRequest(product, req)

	if err := h.service.CreateProduct(product); err != nil {
		log.Printf("Error creating product: %v", err)
		return errorResponse(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates a catalog entry, running the pricing rules
// (old-price snapshot, discount recompute) on the way through.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return errorResponse(c, err, "Could not retrieve product")
	}

	req, err := h.parseRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	applyRequest(product, req)

	if err := h.service.UpdateProduct(product); err != nil {
		log.Printf("Error updating product %s: %v", product.ID, err)
		return errorResponse(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a catalog entry.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		log.Printf("Error deleting product %s: %v", c.Params("id"), err)
		return errorResponse(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}
