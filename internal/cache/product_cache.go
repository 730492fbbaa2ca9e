package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"casestore/internal/apperrors"
	"casestore/internal/models"
	"casestore/internal/repositories"

	"github.com/redis/go-redis/v9"
)

const (
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute
)

// ProductKey is the cache key of a single product.
func ProductKey(id string) string {
	return "product:" + id
}

// CachedProductRepository puts a Redis cache-aside layer in front of product reads
// by ID. Every write path drops the cached entry. Redis failures never fail a call.
type CachedProductRepository struct {
	repositories.ProductRepository
	redis *redis.Client
	ttl   time.Duration
}

var _ repositories.ProductRepository = (*CachedProductRepository)(nil)

// NewCachedProductRepository wraps realRepo with a cache whose entries live for ttl.
func NewCachedProductRepository(realRepo repositories.ProductRepository, rdb *redis.Client, ttl time.Duration) *CachedProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProductRepository{
		ProductRepository: realRepo,
		redis:             rdb,
		ttl:               ttl,
	}
}

// GetByID serves the product from Redis when possible.
func (c *CachedProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	key := ProductKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, apperrors.New(apperrors.ErrNotFound, "product with ID %s not found", id)
		}
		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			log.Printf("Failed to unmarshal cached product %s (continuing with DB): %v", id, err)
			break
		}
		return &product, nil
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("Redis error (continuing with DB): %v", err)
	}

	product, err := c.ProductRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
				log.Printf("Failed to cache notfound for product %s: %v", id, setErr)
			}
		}
		return nil, err
	}

	jsonData, err := json.Marshal(product)
	if err != nil {
		log.Printf("Failed to marshal product %s: %v", id, err)
		return product, nil
	}
	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		log.Printf("Failed to cache product %s: %v", id, err)
	}
	return product, nil
}

func (c *CachedProductRepository) invalidate(ctx context.Context, id string) {
	if err := c.redis.Del(ctx, ProductKey(id)).Err(); err != nil {
		log.Printf("Failed to delete product cache %s: %v", ProductKey(id), err)
	}
}

// Create drops a cached not-found marker for the new ID.
func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.ProductRepository.Create(ctx, product); err != nil {
		return err
	}
	c.invalidate(ctx, product.ID)
	return nil
}

func (c *CachedProductRepository) Update(ctx context.Context, product *models.Product, fields ...string) error {
	defer c.invalidate(ctx, product.ID)
	return c.ProductRepository.Update(ctx, product, fields...)
}

func (c *CachedProductRepository) Delete(ctx context.Context, id string) error {
	defer c.invalidate(ctx, id)
	return c.ProductRepository.Delete(ctx, id)
}

func (c *CachedProductRepository) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	defer c.invalidate(ctx, id)
	return c.ProductRepository.AdjustStock(ctx, id, delta)
}

func (c *CachedProductRepository) ReserveStock(ctx context.Context, id string, qty int) error {
	defer c.invalidate(ctx, id)
	return c.ProductRepository.ReserveStock(ctx, id, qty)
}

func (c *CachedProductRepository) ReleaseStock(ctx context.Context, id string, qty int) error {
	defer c.invalidate(ctx, id)
	return c.ProductRepository.ReleaseStock(ctx, id, qty)
}

func (c *CachedProductRepository) UpdateRating(ctx context.Context, id string, rating models.Rating) error {
	defer c.invalidate(ctx, id)
	return c.ProductRepository.UpdateRating(ctx, id, rating)
}
