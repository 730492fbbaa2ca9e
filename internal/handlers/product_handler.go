package handlers

import (
	"net/url"
	"strings"

	"casestore/internal/middleware"
	"casestore/internal/models"
	"casestore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
	auth    middleware.Authenticator
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, auth middleware.Authenticator) *ProductHandler {
	return &ProductHandler{
		service: service,
		auth:    auth,
	}
}

// RegisterRoutes registers the product routes. Reads are public, writes are admin only.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", middleware.OptionalAuth(h.auth), h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)

	protect := middleware.AuthRequired(h.auth)
	adminOnly := middleware.RestrictTo(models.RoleAdmin)
	productRoutes.Post("/", protect, adminOnly, h.HandleCreateProduct)
	productRoutes.Put("/:id", protect, adminOnly, h.HandleUpdateProduct)
	productRoutes.Patch("/:id/stock", protect, adminOnly, h.HandleUpdateStock)
	productRoutes.Patch("/:id/tags", protect, adminOnly, h.HandleAddTag)
	productRoutes.Delete("/:id/tags/:tag", protect, adminOnly, h.HandleRemoveTag)
	productRoutes.Delete("/:id", protect, adminOnly, h.HandleDeleteProduct)
}

// HandleListProducts lists the catalog with filters, sorting and pagination.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	minPrice, err := queryFloat(c, "minPrice")
	if err != nil {
		return err
	}
	maxPrice, err := queryFloat(c, "maxPrice")
	if err != nil {
		return err
	}

	filter := models.ProductFilter{
		Category:        models.Category(c.Query("category")),
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
		Search:          strings.TrimSpace(c.Query("search")),
		Sort:            c.Query("sort"),
		IncludeInactive: c.QueryBool("includeInactive", false),
		Page:            queryPage(c),
	}

	page, err := h.service.ListProducts(c.UserContext(), middleware.CurrentUser(c), filter)
	if err != nil {
		return err
	}
	return sendPage(c, page)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "", product, nil)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusCreated, "Product created successfully", product, nil)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var in models.ProductUpdate
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Product updated successfully", product, nil)
}

// HandleUpdateStock adds a signed quantity to the stock.
func (h *ProductHandler) HandleUpdateStock(c *fiber.Ctx) error {
	var in models.StockAdjustment
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.service.AdjustStock(c.UserContext(), c.Params("id"), in.Quantity)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Stock updated successfully", product, nil)
}

// HandleAddTag appends a tag to a product.
func (h *ProductHandler) HandleAddTag(c *fiber.Ctx) error {
	var in models.TagRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.service.AddTag(c.UserContext(), c.Params("id"), in.Tag)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Tag added successfully", product, nil)
}

// HandleRemoveTag removes a tag from a product.
func (h *ProductHandler) HandleRemoveTag(c *fiber.Ctx) error {
	tag, err := url.PathUnescape(c.Params("tag"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid tag")
	}
	product, err := h.service.RemoveTag(c.UserContext(), c.Params("id"), tag)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Tag removed successfully", product, nil)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Product deleted successfully", fiber.Map{}, nil)
}
