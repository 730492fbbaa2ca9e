package handlers

import (
	"casestore/internal/middleware"
	"casestore/internal/models"
	"casestore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AnalyticsHandler serves the read-only reporting endpoints.
type AnalyticsHandler struct {
	service *services.AnalyticsService
	auth    middleware.Authenticator
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(service *services.AnalyticsService, auth middleware.Authenticator) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, auth: auth}
}

// RegisterRoutes registers the analytics routes with the Fiber app.
func (h *AnalyticsHandler) RegisterRoutes(router fiber.Router) {
	analyticsRoutes := router.Group("/analytics")
	analyticsRoutes.Get("/products/top-rated", h.HandleTopRated)
	analyticsRoutes.Get("/reviews/stats", h.HandleReviewStats)

	protect := middleware.AuthRequired(h.auth)
	adminOnly := middleware.RestrictTo(models.RoleAdmin)
	analyticsRoutes.Get("/users/:userId/orders", protect, h.HandleUserOrderHistory)
	analyticsRoutes.Get("/products/stats", protect, adminOnly, h.HandleProductStats)
	analyticsRoutes.Get("/sales", protect, adminOnly, h.HandleSalesReport)
	analyticsRoutes.Get("/sales/timeseries", protect, adminOnly, h.HandleSalesTimeSeries)
	analyticsRoutes.Get("/orders/status", protect, adminOnly, h.HandleOrderStatusCounts)
}

func (h *AnalyticsHandler) HandleTopRated(c *fiber.Ctx) error {
	products, err := h.service.TopRated(c.UserContext(), c.QueryInt("limit", services.DefaultTopRatedLimit))
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "", products, fiber.Map{"count": len(products)})
}

func (h *AnalyticsHandler) HandleReviewStats(c *fiber.Ctx) error {
	stats, err := h.service.ReviewStats(c.UserContext())
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "", stats, nil)
}

func (h *AnalyticsHandler) HandleUserOrderHistory(c *fiber.Ctx) error {
	history, err := h.service.UserOrderHistory(c.UserContext(), middleware.CurrentUser(c), c.Params("userId"))
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "", history, nil)
}

func (h *AnalyticsHandler) HandleProductStats(c *fiber.Ctx) error {
	stats, err := h.service.ProductStats(c.UserContext())
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "", stats, nil)
}

// HandleSalesReport summarises non-cancelled orders between startDate and endDate.
func (h *AnalyticsHandler) HandleSalesReport(c *fiber.Ctx) error {
	rng, err := services.ParseDateRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return err
	}
	report, err := h.service.SalesReport(c.UserContext(), rng)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "", report, nil)
}

func (h *AnalyticsHandler) HandleSalesTimeSeries(c *fiber.Ctx) error {
	rng, err := services.ParseDateRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return err
	}
	interval, err := services.ParseInterval(c.Query("interval"))
	if err != nil {
		return err
	}
	points, err := h.service.SalesTimeSeries(c.UserContext(), rng, interval)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "", points, fiber.Map{"count": len(points)})
}

func (h *AnalyticsHandler) HandleOrderStatusCounts(c *fiber.Ctx) error {
	counts, err := h.service.OrderStatusCounts(c.UserContext())
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "", counts, nil)
}
