package repositories

import (
	"context"
	"fmt"

	"casestore/internal/models"

	"gorm.io/gorm"
)

// AnalyticsRepository runs the read-only aggregations behind the analytics endpoints.
type AnalyticsRepository interface {
	ProductStatsByCategory(ctx context.Context) ([]models.CategoryStats, error)
	// RatedProducts returns active products that have at least one review.
	RatedProducts(ctx context.Context) ([]models.Product, error)
	SalesSummary(ctx context.Context, rng models.DateRange) (models.SalesSummary, error)
	SalesByProduct(ctx context.Context, rng models.DateRange, limit int) ([]models.ProductSales, error)
	// OrderTotals lists creation time and total of every non-cancelled order in range, oldest first.
	OrderTotals(ctx context.Context, rng models.DateRange) ([]models.OrderTotal, error)
	StatusHistogram(ctx context.Context) ([]models.StatusCount, error)
	UserOrderStats(ctx context.Context, userID string) (models.UserOrderStats, error)
	ReviewDistribution(ctx context.Context) ([]models.RatingCount, error)
}

// GORMAnalyticsRepository is a GORM implementation of AnalyticsRepository.
type GORMAnalyticsRepository struct {
	db *gorm.DB
}

// NewGORMAnalyticsRepository creates a new instance of GORMAnalyticsRepository.
func NewGORMAnalyticsRepository(db *gorm.DB) *GORMAnalyticsRepository {
	return &GORMAnalyticsRepository{db: db}
}

// activeOrders selects non-cancelled orders created within rng.
func activeOrders(q *gorm.DB, rng models.DateRange) *gorm.DB {
	q = q.Where("orders.status <> ?", string(models.OrderStatusCancelled))
	if rng.From != nil {
		q = q.Where("orders.created_at >= ?", rng.From.UTC())
	}
	if rng.To != nil {
		q = q.Where("orders.created_at <= ?", rng.To.UTC())
	}
	return q
}

// ProductStatsByCategory groups active products by category, best sellers first.
func (r *GORMAnalyticsRepository) ProductStatsByCategory(ctx context.Context) ([]models.CategoryStats, error) {
	var stats []models.CategoryStats
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select(`category,
			COUNT(*) AS total_products,
			COALESCE(CAST(AVG(price) AS FLOAT), 0) AS average_price,
			COALESCE(SUM(stock), 0) AS total_stock,
			COALESCE(SUM(sold_count), 0) AS total_sold,
			COALESCE(CAST(AVG(rating_average) AS FLOAT), 0) AS average_rating`).
		Where("is_active = ?", true).
		Group("category").
		Order("total_sold DESC").
		Order("category").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate product stats: %w", err)
	}
	return stats, nil
}

// RatedProducts returns the candidates for the top-rated ranking.
func (r *GORMAnalyticsRepository) RatedProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND rating_count >= ?", true, 1).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rated products: %w", err)
	}
	return products, nil
}

// SalesSummary counts and sums the non-cancelled orders in range.
func (r *GORMAnalyticsRepository) SalesSummary(ctx context.Context, rng models.DateRange) (models.SalesSummary, error) {
	var summary models.SalesSummary
	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(`COUNT(*) AS total_orders,
			COALESCE(CAST(SUM(pricing_total) AS FLOAT), 0) AS total_revenue,
			COALESCE(CAST(AVG(pricing_total) AS FLOAT), 0) AS average_order_value`)
	if err := activeOrders(q, rng).Scan(&summary).Error; err != nil {
		return models.SalesSummary{}, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	return summary, nil
}

// SalesByProduct breaks revenue down per product, highest revenue first.
func (r *GORMAnalyticsRepository) SalesByProduct(ctx context.Context, rng models.DateRange, limit int) ([]models.ProductSales, error) {
	var rows []models.ProductSales
	q := r.db.WithContext(ctx).Table("order_items").
		Select(`order_items.product_id AS product_id,
			products.name AS product_name,
			products.category AS category,
			SUM(order_items.quantity) AS total_quantity,
			CAST(SUM(order_items.subtotal) AS FLOAT) AS total_revenue,
			COUNT(*) AS order_count,
			CAST(AVG(order_items.price) AS FLOAT) AS average_price`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id")
	err := activeOrders(q, rng).
		Group("order_items.product_id, products.name, products.category").
		Order("total_revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate product sales: %w", err)
	}
	return rows, nil
}

// OrderTotals feeds the sales time series.
func (r *GORMAnalyticsRepository) OrderTotals(ctx context.Context, rng models.DateRange) ([]models.OrderTotal, error) {
	var rows []models.OrderTotal
	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("orders.created_at AS created_at, CAST(orders.pricing_total AS FLOAT) AS total")
	if err := activeOrders(q, rng).Order("orders.created_at").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list order totals: %w", err)
	}
	return rows, nil
}

// StatusHistogram counts orders per status, most frequent first.
func (r *GORMAnalyticsRepository) StatusHistogram(ctx context.Context) ([]models.StatusCount, error) {
	var rows []models.StatusCount
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("count DESC").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	return rows, nil
}

// UserOrderStats summarises the user's non-cancelled orders.
func (r *GORMAnalyticsRepository) UserOrderStats(ctx context.Context, userID string) (models.UserOrderStats, error) {
	var stats models.UserOrderStats
	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(`COUNT(*) AS total_orders,
			COALESCE(CAST(SUM(pricing_total) AS FLOAT), 0) AS total_spent,
			COALESCE(CAST(AVG(pricing_total) AS FLOAT), 0) AS average_order_value`).
		Where("orders.user_id = ?", userID)
	if err := activeOrders(q, models.DateRange{}).Scan(&stats).Error; err != nil {
		return models.UserOrderStats{}, fmt.Errorf("failed to aggregate orders of user %s: %w", userID, err)
	}
	return stats, nil
}

// ReviewDistribution counts reviews per star rating, highest rating first.
func (r *GORMAnalyticsRepository) ReviewDistribution(ctx context.Context) ([]models.RatingCount, error) {
	var rows []models.RatingCount
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Order("rating DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews by rating: %w", err)
	}
	return rows, nil
}
