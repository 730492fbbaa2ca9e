package services_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"casestore/internal/apperrors"
	"casestore/internal/models"
	"casestore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAnalytics() (*services.AnalyticsService, *MockAnalyticsRepository, *MockOrderRepository, *MockUserRepository) {
	repo := new(MockAnalyticsRepository)
	orders := new(MockOrderRepository)
	users := new(MockUserRepository)
	return services.NewAnalyticsService(repo, orders, users), repo, orders, users
}

func TestRatingScore(t *testing.T) {
	assert.InDelta(t, 5*math.Log(2), services.RatingScore(models.Rating{Average: 5, Count: 1}), 1e-9)
	assert.Zero(t, services.RatingScore(models.Rating{}))
}

func TestAnalyticsService_TopRated(t *testing.T) {
	service, repo, _, _ := newAnalytics()

	lucky := models.Product{ID: "lucky", Rating: models.Rating{Average: 5.0, Count: 1}}
	proven := models.Product{ID: "proven", Rating: models.Rating{Average: 4.5, Count: 50}}
	middle := models.Product{ID: "middle", Rating: models.Rating{Average: 4.0, Count: 5}}
	repo.On("RatedProducts", mock.Anything).Return([]models.Product{lucky, middle, proven}, nil)

	ranked, err := service.TopRated(ctx, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "proven", ranked[0].ID)
	assert.Equal(t, "middle", ranked[1].ID)
	assert.Equal(t, "lucky", ranked[2].ID)

	ranked, err = service.TopRated(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, ranked, 1)
}

func TestParseDateRange(t *testing.T) {
	rng, err := services.ParseDateRange("2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *rng.From)
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, 999999999, time.UTC), *rng.To)

	rng, err = services.ParseDateRange("", "2026-02-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Nil(t, rng.From)
	assert.Equal(t, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), *rng.To)

	_, err = services.ParseDateRange("yesterday", "")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = services.ParseDateRange("2026-02-01", "2026-01-01")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
}

func TestParseInterval(t *testing.T) {
	i, err := services.ParseInterval("")
	require.NoError(t, err)
	assert.Equal(t, models.IntervalDay, i)

	i, err = services.ParseInterval("month")
	require.NoError(t, err)
	assert.Equal(t, models.IntervalMonth, i)

	_, err = services.ParseInterval("week")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestAnalyticsService_SalesTimeSeries(t *testing.T) {
	service, repo, _, _ := newAnalytics()
	almaty := time.FixedZone("ALMT", 5*3600)

	repo.On("OrderTotals", mock.Anything, models.DateRange{}).Return([]models.OrderTotal{
		{CreatedAt: time.Date(2026, 1, 31, 22, 0, 0, 0, time.UTC), Total: 10.10},
		// 2026-02-01 02:00 local is still January 31st in UTC
		{CreatedAt: time.Date(2026, 2, 1, 2, 0, 0, 0, almaty), Total: 5.05},
		{CreatedAt: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC), Total: 20},
	}, nil)

	days, err := service.SalesTimeSeries(ctx, models.DateRange{}, models.IntervalDay)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, models.SalesPoint{Period: "2026-01-31", TotalRevenue: 15.15, TotalOrders: 2}, days[0])
	assert.Equal(t, "2026-02-03", days[1].Period)

	months, err := service.SalesTimeSeries(ctx, models.DateRange{}, models.IntervalMonth)
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, "2026-01", months[0].Period)
	assert.EqualValues(t, 1, months[1].TotalOrders)
}

func TestAnalyticsService_SalesReport(t *testing.T) {
	service, repo, _, _ := newAnalytics()
	rng := models.DateRange{}

	repo.On("SalesSummary", mock.Anything, rng).Return(models.SalesSummary{TotalOrders: 3, TotalRevenue: 100, AverageOrderValue: 33.333333}, nil)
	repo.On("SalesByProduct", mock.Anything, rng, 20).Return(nil, nil)

	report, err := service.SalesReport(ctx, rng)
	require.NoError(t, err)
	assert.Equal(t, 33.33, report.Summary.AverageOrderValue)
	assert.NotNil(t, report.TopProducts)
	repo.AssertExpectations(t)
}

func TestAnalyticsService_UserOrderHistory(t *testing.T) {
	service, repo, orders, users := newAnalytics()

	_, err := service.UserOrderHistory(ctx, &models.User{ID: "stranger"}, buyer.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	users.On("GetByID", mock.Anything, buyer.ID).Return(buyer, nil)
	repo.On("UserOrderStats", mock.Anything, buyer.ID).Return(models.UserOrderStats{TotalOrders: 3, TotalSpent: 100, AverageOrderValue: 33.3333}, nil)
	orders.On("ListByUser", mock.Anything, buyer.ID).Return([]models.Order{{ID: "o1"}}, nil)

	history, err := service.UserOrderHistory(ctx, admin, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 33.33, history.Statistics.AverageOrderValue)
	assert.Len(t, history.Orders, 1)

	users.On("GetByID", mock.Anything, "ghost").Return(nil, notFoundErr("user", "ghost"))
	_, err = service.UserOrderHistory(ctx, admin, "ghost")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAnalyticsService_ReviewStats(t *testing.T) {
	service, repo, _, _ := newAnalytics()
	repo.On("ReviewDistribution", mock.Anything).Return([]models.RatingCount{{Rating: 5, Count: 2}, {Rating: 3, Count: 1}}, nil).Once()

	stats, err := service.ReviewStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalReviews)
	assert.Equal(t, 4.3, stats.AverageRating)

	repo.On("ReviewDistribution", mock.Anything).Return(nil, nil).Once()
	stats, err = service.ReviewStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.AverageRating)
	assert.NotNil(t, stats.Distribution)
}

func TestAnalyticsService_ProductStatsAndStatuses(t *testing.T) {
	service, repo, _, _ := newAnalytics()
	repo.On("ProductStatsByCategory", mock.Anything).Return([]models.CategoryStats{{Category: models.CategoryPhoneCase, AveragePrice: 12.346, AverageRating: 4.25}}, nil)
	repo.On("StatusHistogram", mock.Anything).Return(nil, nil)

	stats, err := service.ProductStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.35, stats[0].AveragePrice)
	assert.Equal(t, 4.3, stats[0].AverageRating)

	counts, err := service.OrderStatusCounts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, counts)
}
