package handlers

import (
	"casestore/internal/middleware"
	"casestore/internal/models"
	"casestore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for profiles, addresses and the cart.
type UserHandler struct {
	service *services.UserService
	auth    middleware.Authenticator
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, auth middleware.Authenticator) *UserHandler {
	return &UserHandler{service: service, auth: auth}
}

// RegisterRoutes registers the user routes with the Fiber app. Every route needs a logged-in user.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users", middleware.AuthRequired(h.auth))

	// cart routes must precede /:id
	userRoutes.Get("/cart", h.HandleGetCart)
	userRoutes.Post("/cart", h.HandleAddToCart)
	userRoutes.Delete("/cart/:productId", h.HandleRemoveFromCart)
	userRoutes.Delete("/cart", h.HandleClearCart)

	userRoutes.Get("/:id", h.HandleGetProfile)
	userRoutes.Put("/:id", h.HandleUpdateProfile)
	userRoutes.Post("/:id/addresses", h.HandleAddAddress)
	userRoutes.Patch("/:id/addresses/:addressId", h.HandleUpdateAddress)
	userRoutes.Delete("/:id/addresses/:addressId", h.HandleRemoveAddress)
}

// HandleGetProfile returns a user profile.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.service.GetProfile(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "", user, nil)
}

// HandleUpdateProfile changes name and phone.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateProfile(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), req)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Profile updated successfully", user, nil)
}

// HandleAddAddress saves a new address.
func (h *UserHandler) HandleAddAddress(c *fiber.Ctx) error {
	var in models.AddressInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	addresses, err := h.service.AddAddress(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusCreated, "Address added successfully", addresses, nil)
}

// HandleUpdateAddress edits a saved address.
func (h *UserHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	var in models.AddressUpdate
	if err := parseBody(c, &in); err != nil {
		return err
	}
	addresses, err := h.service.UpdateAddress(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), c.Params("addressId"), in)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Address updated successfully", addresses, nil)
}

// HandleRemoveAddress deletes a saved address.
func (h *UserHandler) HandleRemoveAddress(c *fiber.Ctx) error {
	addresses, err := h.service.RemoveAddress(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), c.Params("addressId"))
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Address removed successfully", addresses, nil)
}

// HandleGetCart returns the caller's cart.
func (h *UserHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "", cart, fiber.Map{"count": len(cart)})
}

// HandleAddToCart adds a product to the caller's cart.
func (h *UserHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req models.CartItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cart, err := h.service.AddToCart(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Product added to cart", cart, nil)
}

// HandleRemoveFromCart drops a product from the caller's cart.
func (h *UserHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	cart, err := h.service.RemoveFromCart(c.UserContext(), middleware.CurrentUser(c), c.Params("productId"))
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Product removed from cart", cart, nil)
}

// HandleClearCart empties the caller's cart.
func (h *UserHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.ClearCart(c.UserContext(), middleware.CurrentUser(c)); err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "Cart cleared successfully", []models.CartItem{}, nil)
}
