package repositories

import (
	"context"
	"fmt"

	"casestore/internal/apperrors"
	"casestore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var reviewSortColumns = map[string]string{
	"createdAt": "created_at",
	"rating":    "rating",
}

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	ListByProduct(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int64, error)
	Update(ctx context.Context, review *models.Review, fields ...string) error
	Delete(ctx context.Context, id string) error
	ExistsForUserProduct(ctx context.Context, userID, productID string) (bool, error)
	// RatingForProduct returns the raw average and count over all reviews of a product.
	RatingForProduct(ctx context.Context, productID string) (float64, int, error)
}

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// Create stores a review. A second review of the same product by the same user is a conflict.
func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if isDuplicate(err) {
			return apperrors.New(apperrors.ErrConflict, "you have already reviewed this product")
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetByID retrieves a review by its ID.
func (r *GORMReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("review", id)
		}
		return nil, fmt.Errorf("failed to get review by ID %s: %w", id, err)
	}
	return &review, nil
}

// ListByProduct returns one page of a product's reviews.
func (r *GORMReviewRepository) ListByProduct(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("product_id = ?", filter.ProductID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	page := filter.Page.Normalize()
	var reviews []models.Review
	err := q.Order(orderClause(filter.Sort, reviewSortColumns, "-createdAt")).
		Order("id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

// Update writes the named columns of review.
func (r *GORMReviewRepository) Update(ctx context.Context, review *models.Review, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	columns := append(append([]string{}, fields...), "updated_at")
	review.UpdatedAt = r.db.NowFunc()

	res := r.db.WithContext(ctx).Model(review).Select(columns).Updates(review)
	if res.Error != nil {
		return fmt.Errorf("failed to update review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("review", review.ID)
	}
	return nil
}

// Delete removes a review.
func (r *GORMReviewRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("review", id)
	}
	return nil
}

// ExistsForUserProduct reports whether the user already reviewed the product.
func (r *GORMReviewRepository) ExistsForUserProduct(ctx context.Context, userID, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return count > 0, nil
}

// RatingForProduct aggregates the ratings of one product.
func (r *GORMReviewRepository) RatingForProduct(ctx context.Context, productID string) (float64, int, error) {
	var row struct {
		Average float64
		Count   int
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(CAST(AVG(rating) AS FLOAT), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate ratings of product %s: %w", productID, err)
	}
	return row.Average, row.Count, nil
}
