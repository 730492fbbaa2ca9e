package handlers

import (
	"time"

	"casestore/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Products  *services.ProductService
	Orders    *services.OrderService
	Reviews   *services.ReviewService
	Analytics *services.AnalyticsService
}

// AppOptions tunes the Fiber app.
type AppOptions struct {
	CORSOrigins string
	// AccessLog enables the per-request logger middleware.
	AccessLog bool
	// Health is merged into the /health response.
	Health func() fiber.Map
}

// NewApp builds the Fiber app with middleware, the /api/v1 routes, /health and the 404 fallback.
func NewApp(svc Services, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		Immutable:    true,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		payload := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if opts.Health != nil {
			for k, v := range opts.Health() {
				payload[k] = v
			}
		}
		return c.Status(fiber.StatusOK).JSON(payload)
	})

	apiV1 := app.Group("/api/v1")
	NewAuthHandler(svc.Auth, svc.Users).RegisterRoutes(apiV1)
	NewProductHandler(svc.Products, svc.Auth).RegisterRoutes(apiV1)
	NewOrderHandler(svc.Orders, svc.Auth).RegisterRoutes(apiV1)
	NewReviewHandler(svc.Reviews, svc.Auth).RegisterRoutes(apiV1)
	NewUserHandler(svc.Users, svc.Auth).RegisterRoutes(apiV1)
	NewAnalyticsHandler(svc.Analytics, svc.Auth).RegisterRoutes(apiV1)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route " + c.OriginalURL() + " not found",
		})
	})

	return app
}
