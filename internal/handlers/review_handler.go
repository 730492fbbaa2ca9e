package handlers

import (
	"casestore/internal/middleware"
	"casestore/internal/models"
	"casestore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for product reviews.
type ReviewHandler struct {
	service *services.ReviewService
	auth    middleware.Authenticator
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService, auth middleware.Authenticator) *ReviewHandler {
	return &ReviewHandler{service: service, auth: auth}
}

// RegisterRoutes registers the review routes with the Fiber app.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	reviewRoutes := router.Group("/reviews")
	reviewRoutes.Get("/products/:productId", h.HandleListProductReviews)

	protect := middleware.AuthRequired(h.auth)
	reviewRoutes.Post("/", protect, h.HandleCreateReview)
	reviewRoutes.Put("/:id", protect, h.HandleUpdateReview)
	reviewRoutes.Delete("/:id", protect, h.HandleDeleteReview)
}

// HandleListProductReviews lists the reviews of one product.
func (h *ReviewHandler) HandleListProductReviews(c *fiber.Ctx) error {
	page, err := h.service.ListForProduct(c.UserContext(), c.Params("productId"), c.Query("sort"), queryPage(c))
	if err != nil {
		return err
	}
	return sendPage(c, page)
}

// HandleCreateReview stores a review for a delivered product.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req models.CreateReviewRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	review, err := h.service.CreateReview(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusCreated, "Review created successfully", review, nil)
}

// HandleUpdateReview edits the caller's review.
func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	var req models.UpdateReviewRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	review, err := h.service.UpdateReview(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), req)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Review updated successfully", review, nil)
}

// HandleDeleteReview removes a review.
func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	if err := h.service.DeleteReview(c.UserContext(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Review deleted successfully", fiber.Map{}, nil)
}
