package services_test

import (
	"errors"
	"fmt"
	"testing"

	"casestore/internal/apperrors"
	"casestore/internal/database"
	"casestore/internal/models"
	"casestore/internal/repositories"
	"casestore/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// store wires every service onto one private in-memory database.
type store struct {
	db        *gorm.DB
	products  *repositories.GORMProductRepository
	auth      *services.AuthService
	catalog   *services.ProductService
	orders    *services.OrderService
	reviews   *services.ReviewService
	users     *services.UserService
	analytics *services.AnalyticsService
}

func newStore(t *testing.T) *store {
	t.Helper()
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)

	return &store{
		db:        db,
		products:  productRepo,
		auth:      services.NewAuthService(userRepo, testJWTSecret, 0),
		catalog:   services.NewProductService(productRepo),
		orders:    services.NewOrderService(orderRepo, productRepo, userRepo, nil, services.DefaultOrderOptions()),
		reviews:   services.NewReviewService(reviewRepo, productRepo, orderRepo, userRepo),
		users:     services.NewUserService(userRepo, productRepo),
		analytics: services.NewAnalyticsService(repositories.NewGORMAnalyticsRepository(db), orderRepo, userRepo),
	}
}

func (s *store) register(t *testing.T, email string) *models.User {
	t.Helper()
	user, _, err := s.auth.Register(ctx, models.RegisterRequest{Name: "Shopper", Email: email, Password: "secret"})
	require.NoError(t, err)
	return user
}

func (s *store) addProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p, err := s.catalog.CreateProduct(ctx, models.ProductInput{
		Name:        name,
		Description: name + " description",
		Category:    models.CategoryPhoneCase,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		Images:      []string{name + ".jpg"},
	})
	require.NoError(t, err)
	return p
}

func (s *store) stock(t *testing.T, id string) (int, int) {
	t.Helper()
	p, err := s.catalog.GetProduct(ctx, id)
	require.NoError(t, err)
	return p.Stock, p.SoldCount
}

func (s *store) order(t *testing.T, buyer *models.User, lines ...models.OrderLineRequest) (*models.Order, error) {
	t.Helper()
	return s.orders.PlaceOrder(ctx, buyer, models.PlaceOrderRequest{
		Items:           lines,
		ShippingAddress: shipTo,
		PaymentMethod:   models.PaymentCreditCard,
	})
}

// deliver walks an order through the whole lifecycle.
func (s *store) deliver(t *testing.T, id string) {
	t.Helper()
	for _, status := range []models.OrderStatus{models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered} {
		_, err := s.orders.UpdateOrderStatus(ctx, id, models.StatusUpdateRequest{Status: status})
		require.NoError(t, err)
	}
}

func line(productID string, qty int) models.OrderLineRequest {
	return models.OrderLineRequest{ProductID: productID, Quantity: qty}
}

func TestStore_OrderStockArithmetic(t *testing.T) {
	s := newStore(t)
	shopper := s.register(t, "shopper@example.com")
	p := s.addProduct(t, "Clear Case", "10", 5)

	order, err := s.order(t, shopper, line(p.ID, 2))
	require.NoError(t, err)
	assert.Equal(t, "25", order.Pricing.Total.String())
	stock, sold := s.stock(t, p.ID)
	assert.Equal(t, 3, stock)
	assert.Equal(t, 2, sold)

	// Asking for more than is left changes nothing
	_, err = s.order(t, shopper, line(p.ID, 4))
	assert.True(t, errors.Is(err, apperrors.ErrInsufficientStock))
	stock, sold = s.stock(t, p.ID)
	assert.Equal(t, 3, stock)
	assert.Equal(t, 2, sold)

	// Exactly what is left drains the stock
	_, err = s.order(t, shopper, line(p.ID, 3))
	require.NoError(t, err)
	stock, _ = s.stock(t, p.ID)
	assert.Equal(t, 0, stock)
}

func TestStore_FailedOrderLeavesStockUntouched(t *testing.T) {
	s := newStore(t)
	shopper := s.register(t, "shopper@example.com")
	a := s.addProduct(t, "Case A", "10", 5)
	b := s.addProduct(t, "Case B", "10", 1)

	_, err := s.order(t, shopper, line(a.ID, 2), line(b.ID, 2))
	require.True(t, errors.Is(err, apperrors.ErrInsufficientStock))

	stock, sold := s.stock(t, a.ID)
	assert.Equal(t, 5, stock)
	assert.Equal(t, 0, sold)

	_, err = s.order(t, shopper, line(a.ID, 1), line("missing", 1))
	require.True(t, errors.Is(err, apperrors.ErrNotFound))
	stock, _ = s.stock(t, a.ID)
	assert.Equal(t, 5, stock)
}

func TestStore_CancelRestoresStockOnce(t *testing.T) {
	s := newStore(t)
	shopper := s.register(t, "shopper@example.com")
	p := s.addProduct(t, "Clear Case", "10", 5)

	order, err := s.order(t, shopper, line(p.ID, 2))
	require.NoError(t, err)

	cancelled, err := s.orders.CancelOrder(ctx, shopper, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	stock, sold := s.stock(t, p.ID)
	assert.Equal(t, 5, stock)
	assert.Equal(t, 0, sold)

	_, err = s.orders.CancelOrder(ctx, shopper, order.ID)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))
	stock, _ = s.stock(t, p.ID)
	assert.Equal(t, 5, stock)
}

func TestStore_AdminCancelThroughStatusUpdate(t *testing.T) {
	s := newStore(t)
	shopper := s.register(t, "shopper@example.com")
	p := s.addProduct(t, "Clear Case", "10", 5)

	order, err := s.order(t, shopper, line(p.ID, 3))
	require.NoError(t, err)
	_, err = s.orders.UpdateOrderStatus(ctx, order.ID, models.StatusUpdateRequest{Status: models.OrderStatusProcessing})
	require.NoError(t, err)

	_, err = s.orders.UpdateOrderStatus(ctx, order.ID, models.StatusUpdateRequest{Status: models.OrderStatusCancelled})
	require.NoError(t, err)
	stock, _ := s.stock(t, p.ID)
	assert.Equal(t, 5, stock)

	_, err = s.orders.UpdateOrderStatus(ctx, order.ID, models.StatusUpdateRequest{Status: models.OrderStatusProcessing})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))
}

func TestStore_ReviewsRecomputeRating(t *testing.T) {
	s := newStore(t)
	p := s.addProduct(t, "Clear Case", "10", 10)

	var fiveStar *models.Review
	for i, rating := range []int{4, 5, 3} {
		u := s.register(t, fmt.Sprintf("reviewer%d@example.com", i))

		// No delivered order yet
		_, err := s.reviews.CreateReview(ctx, u, models.CreateReviewRequest{ProductID: p.ID, Rating: rating, Comment: "Honest opinion here"})
		require.True(t, errors.Is(err, apperrors.ErrForbidden))

		order, err := s.order(t, u, line(p.ID, 1))
		require.NoError(t, err)
		s.deliver(t, order.ID)

		review, err := s.reviews.CreateReview(ctx, u, models.CreateReviewRequest{ProductID: p.ID, Rating: rating, Comment: "Honest opinion here"})
		require.NoError(t, err)
		if rating == 5 {
			fiveStar = review
		}

		_, err = s.reviews.CreateReview(ctx, u, models.CreateReviewRequest{ProductID: p.ID, Rating: rating, Comment: "Trying a second time"})
		require.True(t, errors.Is(err, apperrors.ErrConflict))
	}

	got, err := s.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Rating{Average: 4.0, Count: 3}, got.Rating)

	require.NoError(t, s.reviews.DeleteReview(ctx, &models.User{ID: fiveStar.UserID}, fiveStar.ID))
	got, err = s.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Rating{Average: 3.5, Count: 2}, got.Rating)

	page, err := s.reviews.ListForProduct(ctx, p.ID, "", models.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, "Shopper", page.Items[0].User.Name)
}

func TestStore_TopRatedPrefersManyReviews(t *testing.T) {
	s := newStore(t)
	lucky := s.addProduct(t, "Lucky", "10", 1)
	proven := s.addProduct(t, "Proven", "10", 1)
	require.NoError(t, s.products.UpdateRating(ctx, lucky.ID, models.Rating{Average: 5.0, Count: 1}))
	require.NoError(t, s.products.UpdateRating(ctx, proven.ID, models.Rating{Average: 4.5, Count: 50}))

	ranked, err := s.analytics.TopRated(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, proven.ID, ranked[0].ID)
	assert.Equal(t, lucky.ID, ranked[1].ID)
}

func TestStore_CheckoutFromCart(t *testing.T) {
	s := newStore(t)
	shopper := s.register(t, "shopper@example.com")
	p := s.addProduct(t, "Clear Case", "10", 5)

	_, err := s.users.AddAddress(ctx, shopper, shopper.ID, models.AddressInput{Street: "1 Main", City: "Almaty", Phone: "+77011234567"})
	require.NoError(t, err)
	_, err = s.users.AddToCart(ctx, shopper, models.CartItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err := s.users.AddToCart(ctx, shopper, models.CartItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)

	order, err := s.orders.Checkout(ctx, shopper, models.CheckoutRequest{PaymentMethod: models.PaymentCashOnDelivery})
	require.NoError(t, err)
	assert.Equal(t, "25", order.Pricing.Total.String())
	assert.Equal(t, "USA", order.ShippingAddress.Country)

	cart, err = s.users.GetCart(ctx, shopper)
	require.NoError(t, err)
	assert.Empty(t, cart)
	stock, _ := s.stock(t, p.ID)
	assert.Equal(t, 3, stock)

	history, err := s.analytics.UserOrderHistory(ctx, shopper, shopper.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, history.Statistics.TotalOrders)
	assert.Equal(t, 25.0, history.Statistics.TotalSpent)
}
