package handlers

import (
	"log"

	"casestore/internal/middleware"
	"casestore/internal/models"
	"casestore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	auth    middleware.Authenticator
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, auth middleware.Authenticator) *OrderHandler {
	return &OrderHandler{
		service: service,
		auth:    auth,
	}
}

// RegisterRoutes registers the order routes with the Fiber app. Every route needs a logged-in user.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders", middleware.AuthRequired(h.auth))
	adminOnly := middleware.RestrictTo(models.RoleAdmin)

	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Post("/checkout", h.HandleCheckout)
	orderRoutes.Get("/", h.HandleGetMyOrders)
	// must precede /:id
	orderRoutes.Get("/all", adminOnly, h.HandleGetAllOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", adminOnly, h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:id", h.HandleCancelOrder)
}

// HandleCreateOrder places an order from explicit lines.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req models.PlaceOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.service.PlaceOrder(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return err
	}
	return sendSuccess(c, fiber.StatusCreated, "Order created successfully", order, nil)
}

// HandleCheckout places an order from the user's cart.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.service.Checkout(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		log.Printf("Error during checkout: %v", err)
		return err
	}
	return sendSuccess(c, fiber.StatusCreated, "Order created successfully", order, nil)
}

// HandleGetMyOrders lists the caller's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	page, err := h.service.ListMyOrders(c.UserContext(), middleware.CurrentUser(c), models.OrderStatus(c.Query("status")), queryPage(c))
	if err != nil {
		return err
	}
	return sendPage(c, page)
}

// HandleGetAllOrders lists every order. Admin only.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	page, err := h.service.ListAllOrders(c.UserContext(), models.OrderStatus(c.Query("status")), queryPage(c))
	if err != nil {
		return err
	}
	return sendPage(c, page)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "", order, nil)
}

// HandleUpdateOrderStatus moves an order along its lifecycle. Admin only.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req models.StatusUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), c.Params("id"), req)
	if err != nil {
		log.Printf("Error updating status of order %s: %v", c.Params("id"), err)
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Order status updated successfully", order, nil)
}

// HandleCancelOrder cancels one of the caller's orders, or any order for admins.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Order cancelled successfully", order, nil)
}
