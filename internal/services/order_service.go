package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"casestore/internal/apperrors"
	"casestore/internal/models"
	"casestore/internal/repositories"
	"casestore/internal/validation"

	"github.com/shopspring/decimal"
)

const (
	// DefaultMyOrdersLimit and DefaultAllOrdersLimit are the page sizes of the two order listings.
	DefaultMyOrdersLimit  = 10
	DefaultAllOrdersLimit = 20

	orderNumberAttempts = 5
)

// EventPublisher sends order lifecycle events to a broker.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}

// OrderOptions holds the shipping rules applied when an order is priced.
type OrderOptions struct {
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// DefaultOrderOptions charges 5 for shipping unless the subtotal exceeds 100.
func DefaultOrderOptions() OrderOptions {
	return OrderOptions{
		ShippingFee:           decimal.NewFromInt(5),
		FreeShippingThreshold: decimal.NewFromInt(100),
	}
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	events      EventPublisher
	opts        OrderOptions
}

// NewOrderService creates a new OrderService. events may be nil, in which case nothing is published.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, userRepo repositories.UserRepository, events EventPublisher, opts OrderOptions) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		events:      events,
		opts:        opts,
	}
}

// PlaceOrder reserves stock for every line and stores a pending order.
// Either every line is reserved or none is.
func (s *OrderService) PlaceOrder(ctx context.Context, buyer *models.User, req models.PlaceOrderRequest) (*models.Order, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	return s.placeOrder(ctx, buyer, req.Items, req.ShippingAddress.ToAddress(), req.PaymentMethod, req.Pricing.Discount, req.Notes)
}

// Checkout turns the buyer's cart into an order and empties the cart.
func (s *OrderService) Checkout(ctx context.Context, buyer *models.User, req models.CheckoutRequest) (*models.Order, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.userRepo.GetProfile(ctx, buyer.ID)
	if err != nil {
		return nil, err
	}
	if len(profile.Cart) == 0 {
		return nil, apperrors.Invalid("cart", "cart is empty")
	}

	address, err := checkoutAddress(profile, req)
	if err != nil {
		return nil, err
	}

	lines := make([]models.OrderLineRequest, 0, len(profile.Cart))
	for _, item := range profile.Cart {
		lines = append(lines, models.OrderLineRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := s.placeOrder(ctx, buyer, lines, address, req.PaymentMethod, req.Pricing.Discount, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.ClearCart(context.WithoutCancel(ctx), buyer.ID); err != nil {
		log.Printf("Failed to clear cart of user %s after order %s: %v", buyer.ID, order.OrderNumber, err)
	}
	return order, nil
}

func checkoutAddress(profile *models.User, req models.CheckoutRequest) (models.ShippingAddress, error) {
	if req.ShippingAddress != nil {
		return req.ShippingAddress.ToAddress(), nil
	}

	var saved *models.Address
	if req.AddressID != "" {
		for i := range profile.Addresses {
			if profile.Addresses[i].ID == req.AddressID {
				saved = &profile.Addresses[i]
				break
			}
		}
		if saved == nil {
			return models.ShippingAddress{}, apperrors.New(apperrors.ErrNotFound, "address with ID %s not found", req.AddressID)
		}
	} else {
		saved = profile.DefaultAddress()
	}
	if saved == nil {
		return models.ShippingAddress{}, apperrors.Invalid("shipping_address", "shipping_address is required")
	}

	phone := saved.Phone
	if phone == "" {
		phone = profile.Phone
	}
	return models.ShippingAddress{
		Name:    profile.Name,
		Street:  saved.Street,
		City:    saved.City,
		Country: saved.Country,
		Phone:   phone,
	}, nil
}

func (s *OrderService) placeOrder(ctx context.Context, buyer *models.User, lines []models.OrderLineRequest, address models.ShippingAddress, method models.PaymentMethod, discount decimal.Decimal, notes string) (*models.Order, error) {
	items := make([]models.OrderItem, 0, len(lines))
	summaries := make(map[string]*models.ProductSummary, len(lines))
	subtotal := decimal.Zero

	var reserved []models.OrderLineRequest
	release := func() {
		// releases must survive a cancelled request context
		bg := context.WithoutCancel(ctx)
		for i := len(reserved) - 1; i >= 0; i-- {
			if err := s.productRepo.ReleaseStock(bg, reserved[i].ProductID, reserved[i].Quantity); err != nil {
				log.Printf("Failed to release %d units of product %s: %v", reserved[i].Quantity, reserved[i].ProductID, err)
			}
		}
	}

	for _, line := range lines {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			release()
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.New(apperrors.ErrNotFound, "Product %s not found", line.ProductID)
			}
			return nil, err
		}
		// product may come from the cache, so its stock is not authoritative
		if err := s.productRepo.ReserveStock(ctx, product.ID, line.Quantity); err != nil {
			release()
			if errors.Is(err, apperrors.ErrInsufficientStock) {
				return nil, apperrors.New(apperrors.ErrInsufficientStock, "Insufficient stock for %s", product.Name)
			}
			return nil, err
		}
		reserved = append(reserved, line)

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Snapshot: models.ProductSnapshot{
				Name:  product.Name,
				Price: product.Price,
				Image: product.PrimaryImage(),
			},
			Quantity: line.Quantity,
			Price:    product.Price,
			Subtotal: lineTotal,
		})
		summaries[product.ID] = product.Summary()
	}

	pricing, err := s.price(subtotal, discount)
	if err != nil {
		release()
		return nil, err
	}

	number, err := s.newOrderNumber(ctx)
	if err != nil {
		release()
		return nil, err
	}

	order := &models.Order{
		UserID:          buyer.ID,
		OrderNumber:     number,
		Items:           items,
		ShippingAddress: address,
		PaymentMethod:   method,
		Status:          models.OrderStatusPending,
		Pricing:         pricing,
		Notes:           notes,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		release()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range order.Items {
		order.Items[i].Product = summaries[order.Items[i].ProductID]
	}
	order.User = buyer.Summary()

	s.publish(ctx, models.EventOrderCreated, order)
	return order, nil
}

// price computes the order totals. Shipping is free strictly above the threshold.
func (s *OrderService) price(subtotal, discount decimal.Decimal) (models.Pricing, error) {
	shipping := s.opts.ShippingFee
	if subtotal.GreaterThan(s.opts.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	gross := subtotal.Add(shipping)
	if discount.IsNegative() || discount.GreaterThan(gross) {
		return models.Pricing{}, apperrors.New(apperrors.ErrInvalidArgument, "discount must be between 0 and %s", gross.StringFixed(2))
	}
	return models.Pricing{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    gross.Sub(discount),
	}, nil
}

// newOrderNumber returns an unused number of the form ORD<YY><MM><4 digits>.
func (s *OrderService) newOrderNumber(ctx context.Context) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		number := FormatOrderNumber(time.Now(), rand.Intn(10000))
		exists, err := s.orderRepo.ExistsByOrderNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", apperrors.New(apperrors.ErrConflict, "could not allocate an order number, please retry")
}

// FormatOrderNumber renders an order number for the given time and sequence.
func FormatOrderNumber(t time.Time, seq int) string {
	return fmt.Sprintf("ORD%s%04d", t.UTC().Format("0601"), seq%10000)
}

// GetOrder returns an order visible to the requester.
func (s *OrderService) GetOrder(ctx context.Context, requester *models.User, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccess(order.UserID) {
		return nil, apperrors.New(apperrors.ErrForbidden, "Not authorized to view this order")
	}
	if err := s.attachSummaries(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// ListMyOrders returns the requester's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, requester *models.User, status models.OrderStatus, page models.Page) (models.PageResult[models.Order], error) {
	if page.Limit < 1 {
		page.Limit = DefaultMyOrdersLimit
	}
	return s.list(ctx, models.OrderFilter{UserID: requester.ID, Status: status, Page: page})
}

// ListAllOrders returns every order, newest first.
func (s *OrderService) ListAllOrders(ctx context.Context, status models.OrderStatus, page models.Page) (models.PageResult[models.Order], error) {
	if page.Limit < 1 {
		page.Limit = DefaultAllOrdersLimit
	}
	return s.list(ctx, models.OrderFilter{Status: status, Page: page})
}

func (s *OrderService) list(ctx context.Context, filter models.OrderFilter) (models.PageResult[models.Order], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return models.PageResult[models.Order]{}, apperrors.Invalid("status", "status must be one of: pending, processing, shipped, delivered, cancelled")
	}
	filter.Page = filter.Page.Normalize()

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return models.PageResult[models.Order]{}, err
	}

	refs := make([]*models.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := s.attachSummaries(ctx, refs); err != nil {
		return models.PageResult[models.Order]{}, err
	}
	return models.PageResult[models.Order]{Items: orders, Total: total, Page: filter.Page}, nil
}

// attachSummaries fills in the buyer and the current product view of every line.
// Products deleted since the order was placed are left without a summary.
func (s *OrderService) attachSummaries(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	userIDs := make([]string, 0, len(orders))
	var productIDs []string
	seen := make(map[string]bool)
	for _, o := range orders {
		userIDs = append(userIDs, o.UserID)
		for _, item := range o.Items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				productIDs = append(productIDs, item.ProductID)
			}
		}
	}

	users, err := s.userRepo.GetSummaries(ctx, userIDs)
	if err != nil {
		return err
	}
	products := make(map[string]*models.ProductSummary)
	if len(productIDs) > 0 {
		found, err := s.productRepo.GetByIDs(ctx, productIDs)
		if err != nil {
			return err
		}
		for i := range found {
			products[found[i].ID] = found[i].Summary()
		}
	}

	for _, o := range orders {
		o.User = users[o.UserID]
		for i := range o.Items {
			o.Items[i].Product = products[o.Items[i].ProductID]
		}
	}
	return nil
}

// CancelOrder cancels a pending or processing order and puts its stock back.
func (s *OrderService) CancelOrder(ctx context.Context, requester *models.User, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccess(order.UserID) {
		return nil, apperrors.New(apperrors.ErrForbidden, "Not authorized to cancel this order")
	}
	if !order.Status.Cancellable() {
		return nil, apperrors.New(apperrors.ErrInvalidState, "Cannot cancel order with status %s", order.Status)
	}
	return s.cancel(ctx, order, nil)
}

func (s *OrderService) cancel(ctx context.Context, order *models.Order, trackingNumber *string) (*models.Order, error) {
	now := time.Now().UTC()
	change := models.StatusChange{
		Status:         models.OrderStatusCancelled,
		TrackingNumber: trackingNumber,
		CancelledAt:    &now,
	}
	// the conditional update makes a concurrent second cancel fail here, so stock is restored once
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, models.CancellableStatuses(), change); err != nil {
		return nil, err
	}

	bg := context.WithoutCancel(ctx)
	for _, item := range order.Items {
		if err := s.productRepo.ReleaseStock(bg, item.ProductID, item.Quantity); err != nil {
			log.Printf("Failed to restore %d units of product %s for order %s: %v", item.Quantity, item.ProductID, order.OrderNumber, err)
		}
	}

	return s.reload(ctx, order.ID, models.EventOrderCancelled)
}

// UpdateOrderStatus moves an order along its lifecycle and/or sets the tracking number.
// Cancelling through here restores stock exactly like CancelOrder.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, req models.StatusUpdateRequest) (*models.Order, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	if req.Status == "" && req.TrackingNumber == nil {
		return nil, apperrors.Invalid("status", "status or tracking_number is required")
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status == "" || req.Status == order.Status {
		if req.TrackingNumber == nil {
			return s.GetOrderByID(ctx, order.ID)
		}
		if err := s.orderRepo.UpdateStatus(ctx, order.ID, nil, models.StatusChange{TrackingNumber: req.TrackingNumber}); err != nil {
			return nil, err
		}
		return s.GetOrderByID(ctx, order.ID)
	}

	if !order.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.New(apperrors.ErrInvalidTransition, "Cannot change order status from %s to %s", order.Status, req.Status)
	}
	if req.Status == models.OrderStatusCancelled {
		return s.cancel(ctx, order, req.TrackingNumber)
	}

	change := models.StatusChange{Status: req.Status, TrackingNumber: req.TrackingNumber}
	if req.Status == models.OrderStatusDelivered {
		now := time.Now().UTC()
		change.DeliveredAt = &now
	}
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, []models.OrderStatus{order.Status}, change); err != nil {
		return nil, err
	}
	return s.reload(ctx, order.ID, models.EventOrderStatusChanged)
}

// GetOrderByID loads an order with its summaries without an ownership check.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachSummaries(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) reload(ctx context.Context, id, eventType string) (*models.Order, error) {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, eventType, order)
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(context.WithoutCancel(ctx), models.NewOrderEvent(eventType, order)); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", eventType, order.OrderNumber, err)
	}
}
