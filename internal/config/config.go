package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service.
type Config struct {
	AppPort string

	DBDriver    string
	DatabaseDSN string

	JWTSecret string
	JWTTTL    time.Duration

	RabbitMQURL string

	RedisURL      string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	AdminEmail    string
	AdminPassword string

	CORSOrigins string

	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal

	SeedCatalog bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "casestore.db")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_TTL", "720h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SHIPPING_FEE", "5")
	v.SetDefault("FREE_SHIPPING_THRESHOLD", "100")
	v.SetDefault("SEED_CATALOG", false)
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	shippingFee, err := decimal.NewFromString(v.GetString("SHIPPING_FEE"))
	if err != nil {
		return nil, &KeyError{Key: "SHIPPING_FEE", Err: err}
	}
	threshold, err := decimal.NewFromString(v.GetString("FREE_SHIPPING_THRESHOLD"))
	if err != nil {
		return nil, &KeyError{Key: "FREE_SHIPPING_THRESHOLD", Err: err}
	}

	cfg := &Config{
		AppPort:               v.GetString("APP_PORT"),
		DBDriver:              strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:           v.GetString("DATABASE_DSN"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		JWTTTL:                v.GetDuration("JWT_TTL"),
		RabbitMQURL:           v.GetString("RABBITMQ_URL"),
		RedisURL:              v.GetString("REDIS_URL"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		RedisDB:               v.GetInt("REDIS_DB"),
		CacheTTL:              v.GetDuration("CACHE_TTL"),
		AdminEmail:            strings.ToLower(v.GetString("ADMIN_EMAIL")),
		AdminPassword:         v.GetString("ADMIN_PASSWORD"),
		CORSOrigins:           v.GetString("CORS_ORIGINS"),
		ShippingFee:           shippingFee,
		FreeShippingThreshold: threshold,
		SeedCatalog:           v.GetBool("SEED_CATALOG"),
	}

	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, &KeyError{Key: "DB_DRIVER", Err: fmt.Errorf("unsupported driver %q (want postgres or sqlite)", cfg.DBDriver)}
	}
	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 30 * 24 * time.Hour
	}
	return cfg, nil
}

// KeyError reports a configuration key whose value could not be used.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string {
	return "invalid " + e.Key + ": " + e.Err.Error()
}

func (e *KeyError) Unwrap() error {
	return e.Err
}
