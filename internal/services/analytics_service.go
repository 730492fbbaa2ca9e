package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"casestore/internal/apperrors"
	"casestore/internal/models"
	"casestore/internal/repositories"
)

const (
	DefaultTopRatedLimit = 10
	topSellingProducts   = 20
)

// AnalyticsService serves the read-only reports over orders, products and reviews.
type AnalyticsService struct {
	repo      repositories.AnalyticsRepository
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(repo repositories.AnalyticsRepository, orderRepo repositories.OrderRepository, userRepo repositories.UserRepository) *AnalyticsService {
	return &AnalyticsService{
		repo:      repo,
		orderRepo: orderRepo,
		userRepo:  userRepo,
	}
}

// ProductStats aggregates active products per category.
func (s *AnalyticsService) ProductStats(ctx context.Context) ([]models.CategoryStats, error) {
	stats, err := s.repo.ProductStatsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].AveragePrice = roundTo(stats[i].AveragePrice, 2)
		stats[i].AverageRating = roundTo(stats[i].AverageRating, 1)
	}
	return nonNilSlice(stats), nil
}

// RatingScore weighs the average rating by how many reviews back it.
func RatingScore(r models.Rating) float64 {
	return r.Average * math.Log(float64(r.Count)+1)
}

// TopRated ranks reviewed active products by RatingScore, best first.
func (s *AnalyticsService) TopRated(ctx context.Context, limit int) ([]models.RankedProduct, error) {
	if limit < 1 {
		limit = DefaultTopRatedLimit
	}
	if limit > models.MaxPageLimit {
		limit = models.MaxPageLimit
	}

	products, err := s.repo.RatedProducts(ctx)
	if err != nil {
		return nil, err
	}
	ranked := make([]models.RankedProduct, 0, len(products))
	for _, p := range products {
		ranked = append(ranked, models.RankedProduct{Product: p, Score: RatingScore(p.Rating)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Rating.Count > ranked[j].Rating.Count
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Score = roundTo(ranked[i].Score, 2)
	}
	return ranked, nil
}

// ParseDateRange reads the optional startDate/endDate query values. Both RFC 3339
// timestamps and plain dates are accepted; a plain end date covers the whole day.
func ParseDateRange(from, to string) (models.DateRange, error) {
	var rng models.DateRange
	if from = strings.TrimSpace(from); from != "" {
		t, _, err := parseDate(from)
		if err != nil {
			return rng, apperrors.Invalid("startDate", "startDate must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
		}
		rng.From = &t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, dateOnly, err := parseDate(to)
		if err != nil {
			return rng, apperrors.Invalid("endDate", "endDate must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		rng.To = &t
	}
	if rng.From != nil && rng.To != nil && rng.From.After(*rng.To) {
		return rng, apperrors.New(apperrors.ErrInvalidArgument, "startDate cannot be after endDate")
	}
	return rng, nil
}

func parseDate(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), true, nil
}

// SalesReport summarises non-cancelled orders in rng with the best-selling products.
func (s *AnalyticsService) SalesReport(ctx context.Context, rng models.DateRange) (*models.SalesReport, error) {
	summary, err := s.repo.SalesSummary(ctx, rng)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.SalesByProduct(ctx, rng, topSellingProducts)
	if err != nil {
		return nil, err
	}

	summary.TotalRevenue = roundTo(summary.TotalRevenue, 2)
	summary.AverageOrderValue = roundTo(summary.AverageOrderValue, 2)
	for i := range top {
		top[i].TotalRevenue = roundTo(top[i].TotalRevenue, 2)
		top[i].AveragePrice = roundTo(top[i].AveragePrice, 2)
	}
	return &models.SalesReport{Summary: summary, TopProducts: nonNilSlice(top)}, nil
}

// ParseInterval accepts "day" (the default when empty) or "month".
func ParseInterval(value string) (models.Interval, error) {
	switch models.Interval(value) {
	case "", models.IntervalDay:
		return models.IntervalDay, nil
	case models.IntervalMonth:
		return models.IntervalMonth, nil
	}
	return "", apperrors.Invalid("interval", "interval must be one of: day, month")
}

// SalesTimeSeries buckets revenue and order counts by UTC day or month, oldest first.
func (s *AnalyticsService) SalesTimeSeries(ctx context.Context, rng models.DateRange, interval models.Interval) ([]models.SalesPoint, error) {
	totals, err := s.repo.OrderTotals(ctx, rng)
	if err != nil {
		return nil, err
	}

	layout := interval.Layout()
	points := []models.SalesPoint{}
	index := make(map[string]int)
	for _, t := range totals {
		period := t.CreatedAt.UTC().Format(layout)
		i, ok := index[period]
		if !ok {
			i = len(points)
			index[period] = i
			points = append(points, models.SalesPoint{Period: period})
		}
		points[i].TotalRevenue += t.Total
		points[i].TotalOrders++
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Period < points[j].Period })
	for i := range points {
		points[i].TotalRevenue = roundTo(points[i].TotalRevenue, 2)
	}
	return points, nil
}

// OrderStatusCounts is the order histogram by status, most frequent first.
func (s *AnalyticsService) OrderStatusCounts(ctx context.Context) ([]models.StatusCount, error) {
	counts, err := s.repo.StatusHistogram(ctx)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(counts), nil
}

// UserOrderHistory returns a user's orders with statistics over the non-cancelled ones.
func (s *AnalyticsService) UserOrderHistory(ctx context.Context, requester *models.User, userID string) (*models.UserOrderHistory, error) {
	if !requester.CanAccess(userID) {
		return nil, apperrors.New(apperrors.ErrForbidden, "Not authorized to view these orders")
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	stats, err := s.repo.UserOrderStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats.TotalSpent = roundTo(stats.TotalSpent, 2)
	stats.AverageOrderValue = roundTo(stats.AverageOrderValue, 2)
	return &models.UserOrderHistory{Statistics: stats, Orders: nonNilSlice(orders)}, nil
}

// ReviewStats reports the store-wide review count, average and per-rating distribution.
func (s *AnalyticsService) ReviewStats(ctx context.Context) (*models.ReviewStats, error) {
	dist, err := s.repo.ReviewDistribution(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.ReviewStats{Distribution: nonNilSlice(dist)}
	var weighted int64
	for _, d := range dist {
		stats.TotalReviews += d.Count
		weighted += int64(d.Rating) * d.Count
	}
	if stats.TotalReviews > 0 {
		stats.AverageRating = roundTo(float64(weighted)/float64(stats.TotalReviews), 1)
	}
	return stats, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
