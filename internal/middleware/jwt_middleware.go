package middleware

import (
	"context"
	"log"
	"strings"

	"casestore/internal/apperrors"
	"casestore/internal/models"
	"casestore/internal/services"

	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func bearerToken(c *fiber.Ctx) string {
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthRequired is a Fiber middleware that rejects requests without a valid token
// and stores the authenticated user in the context.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return apperrors.New(apperrors.ErrUnauthenticated, "Not authorized to access this route. Please login.")
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			log.Printf("JWT authentication failed: %v", err)
			return err
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and never rejects the request.
func OptionalAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if user, err := auth.Authenticate(c.UserContext(), token); err == nil {
				c.Locals(userKey, user)
			}
		}
		return c.Next()
	}
}

// RestrictTo only lets users holding one of roles through. It must run after AuthRequired.
func RestrictTo(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := services.Authorize(CurrentUser(c), roles...); err != nil {
			return err
		}
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired or OptionalAuth, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
