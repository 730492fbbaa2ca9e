package repositories

import (
	"context"
	"fmt"
	"strings"

	"casestore/internal/apperrors"
	"casestore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var productSortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"name":      "name",
	"rating":    "rating_average",
	"soldCount": "sold_count",
	"stock":     "stock",
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List returns one page of products matching filter and the total number of matches.
func (r *GORMProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if !filter.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", string(filter.Category))
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?)", like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	page := filter.Page.Normalize()
	var products []models.Product
	err := q.Order(orderClause(filter.Sort, productSortColumns, "-createdAt")).
		Order("id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("product", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetByIDs returns the products that exist among ids, in no particular order.
func (r *GORMProductRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if isDuplicate(err) {
			return apperrors.New(apperrors.ErrConflict, "product %s already exists", product.ID)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the named columns of product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	columns := append(append([]string{}, fields...), "updated_at")
	product.UpdatedAt = r.db.NowFunc()

	res := r.db.WithContext(ctx).Model(product).Select(columns).Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("product", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("product", id)
	}
	return nil
}

// AdjustStock applies a signed change to the stock in a single guarded update.
func (r *GORMProductRepository) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_at": r.db.NowFunc(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to adjust stock of product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		product, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.New(apperrors.ErrInsufficientStock,
			"stock of %s cannot go below zero (available: %d, change: %d)", product.Name, product.Stock, delta)
	}
	return r.GetByID(ctx, id)
}

// ReserveStock decrements stock and increments sold_count if enough stock remains.
func (r *GORMProductRepository) ReserveStock(ctx context.Context, id string, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"sold_count": gorm.Expr("sold_count + ?", qty),
			"updated_at": r.db.NowFunc(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to reserve stock of product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		product, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return apperrors.New(apperrors.ErrInsufficientStock,
			"insufficient stock for %s (requested: %d, available: %d)", product.Name, qty, product.Stock)
	}
	return nil
}

// ReleaseStock puts qty units back into stock and takes them off sold_count.
func (r *GORMProductRepository) ReleaseStock(ctx context.Context, id string, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", qty),
			"sold_count": gorm.Expr("CASE WHEN sold_count >= ? THEN sold_count - ? ELSE 0 END", qty, qty),
			"updated_at": r.db.NowFunc(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to release stock of product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("product", id)
	}
	return nil
}

// UpdateRating replaces the stored rating aggregate.
func (r *GORMProductRepository) UpdateRating(ctx context.Context, id string, rating models.Rating) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating_average": rating.Average,
			"rating_count":   rating.Count,
			"updated_at":     r.db.NowFunc(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update rating of product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("product", id)
	}
	return nil
}
