package repositories

import (
	"context"

	"casestore/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update writes only the named columns of product.
	Update(ctx context.Context, product *models.Product, fields ...string) error
	Delete(ctx context.Context, id string) error

	// AdjustStock adds delta to the stock, refusing to go below zero.
	AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error)
	// ReserveStock takes qty units out of stock and counts them as sold,
	// only if at least qty units are available.
	ReserveStock(ctx context.Context, id string, qty int) error
	// ReleaseStock undoes a ReserveStock.
	ReleaseStock(ctx context.Context, id string, qty int) error
	UpdateRating(ctx context.Context, id string, rating models.Rating) error
}
