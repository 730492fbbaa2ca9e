package handlers

import (
	"log"

	"casestore/internal/middleware"
	"casestore/internal/models"
	"casestore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/me", middleware.AuthRequired(h.authService), h.HandleMe)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		log.Printf("Error registering user %s: %v", req.Email, err)
		return err
	}

	return sendSuccess(c, fiber.StatusCreated, "User registered successfully", fiber.Map{
		"user":  user,
		"token": token,
	}, nil)
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Email, err)
		return err
	}

	return sendSuccess(c, fiber.StatusOK, "Login successful", fiber.Map{
		"user":  user,
		"token": token,
	}, nil)
}

// HandleMe returns the authenticated user with addresses and cart.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	current := middleware.CurrentUser(c)
	user, err := h.userService.GetProfile(c.UserContext(), current, current.ID)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, "", user, nil)
}
