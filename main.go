package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"casestore/internal/cache"
	"casestore/internal/config"
	"casestore/internal/database"
	"casestore/internal/handlers"
	"casestore/internal/models"
	"casestore/internal/repositories"
	"casestore/internal/services"
	"casestore/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// server owns the app and every connection it needs to release on shutdown.
type server struct {
	app      *fiber.App
	db       *gorm.DB
	redis    *redis.Client
	mq       *rabbitmq.Client
	services handlers.Services
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	srv, err := newServer(context.Background(), cfg, true)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer srv.close()

	// --- Start RabbitMQ Consumer ---
	if srv.mq != nil {
		log.Println("Starting RabbitMQ consumer for order events...")
		if err := srv.mq.ConsumeOrderEvents(rabbitmq.LogOrderEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := srv.app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// newServer connects the stores, wires services and builds the HTTP app.
// Redis and RabbitMQ are optional: an empty URL or a failed connection disables them.
func newServer(ctx context.Context, cfg *config.Config, accessLog bool) (*server, error) {
	srv := &server{}

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	srv.db = db

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	analyticsRepo := repositories.NewGORMAnalyticsRepository(db)

	var productRepo repositories.ProductRepository = repositories.NewGORMProductRepository(db)
	if cfg.RedisURL != "" {
		rdb, err := cache.ConnectRedis(ctx, cache.Options{Addr: cfg.RedisURL, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			log.Printf("Product cache disabled: %v", err)
		} else {
			srv.redis = rdb
			productRepo = cache.NewCachedProductRepository(productRepo, rdb, cfg.CacheTTL)
			log.Printf("Product cache enabled on %s", cfg.RedisURL)
		}
	}

	// --- Order events ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Order events disabled: %v", err)
		} else {
			srv.mq = mq
			events = mq
		}
	}

	// --- Services ---
	srv.services = handlers.Services{
		Auth:     services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL),
		Users:    services.NewUserService(userRepo, productRepo),
		Products: services.NewProductService(productRepo),
		Orders: services.NewOrderService(orderRepo, productRepo, userRepo, events, services.OrderOptions{
			ShippingFee:           cfg.ShippingFee,
			FreeShippingThreshold: cfg.FreeShippingThreshold,
		}),
		Reviews:   services.NewReviewService(reviewRepo, productRepo, orderRepo, userRepo),
		Analytics: services.NewAnalyticsService(analyticsRepo, orderRepo, userRepo),
	}

	if err := srv.services.Auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		srv.close()
		return nil, err
	}
	if cfg.SeedCatalog {
		seedProducts(ctx, srv.services.Products)
	}

	// --- HTTP ---
	srv.app = handlers.NewApp(srv.services, handlers.AppOptions{
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   accessLog,
		Health:      srv.health,
	})
	return srv, nil
}

func (s *server) health() fiber.Map {
	status := fiber.Map{"database": "connected", "cache": "disabled", "rabbitmq": "disabled"}
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.Ping() != nil {
		status["database"] = "unreachable"
	}
	if s.redis != nil {
		status["cache"] = "enabled"
	}
	if s.mq != nil {
		status["rabbitmq"] = "connected"
	}
	return status
}

func (s *server) close() {
	if s.mq != nil {
		if err := s.mq.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}
	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

// seedProducts fills an empty catalog with a few demo products.
func seedProducts(ctx context.Context, catalog *services.ProductService) {
	existing, err := catalog.ListProducts(ctx, nil, models.ProductFilter{Page: models.Page{Limit: 1}})
	if err != nil {
		log.Printf("Error checking catalog before seeding: %v", err)
		return
	}
	if existing.Total > 0 {
		return
	}

	products := []models.ProductInput{
		{
			Name:        "Clear Armor Case",
			Description: "Shock-absorbing transparent case",
			Category:    models.CategoryPhoneCase,
			Price:       decimal.RequireFromString("19.99"),
			Stock:       50,
			Images:      []string{"clear-armor.jpg"},
			Brand:       "Shieldline",
			Material:    "TPU",
			CompatibleModels: []models.CompatibleModel{
				{Brand: "Apple", ModelName: "iPhone 15", ReleaseYear: 2023},
			},
			Tags: []string{"clear", "rugged"},
		},
		{
			Name:        "Leather Laptop Sleeve",
			Description: "Full-grain leather sleeve for 14 inch laptops",
			Category:    models.CategoryLaptopCase,
			Price:       decimal.RequireFromString("59.00"),
			Stock:       20,
			Images:      []string{"leather-sleeve.jpg"},
			Material:    "Leather",
			Color:       "Brown",
			Tags:        []string{"leather"},
		},
		{
			Name:        "Watch Bumper",
			Description: "Slim bumper for smart watches",
			Category:    models.CategoryWatchCase,
			Price:       decimal.RequireFromString("9.50"),
			Stock:       100,
			Images:      []string{"watch-bumper.jpg"},
		},
	}

	for _, in := range products {
		p, err := catalog.CreateProduct(ctx, in)
		if err != nil {
			log.Printf("Error seeding product %s: %v", in.Name, err)
			continue
		}
		log.Printf("Seeded product: %s (ID: %s)", p.Name, p.ID)
	}
}
