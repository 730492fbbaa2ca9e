package repositories

import (
	"context"

	"casestore/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create stores the order and its items.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	// ListByUser returns every order of the user, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ExistsByOrderNumber(ctx context.Context, number string) (bool, error)
	// UpdateStatus applies change only while the order is in one of the from
	// statuses (any status when from is empty).
	UpdateStatus(ctx context.Context, id string, from []models.OrderStatus, change models.StatusChange) error
	// HasDeliveredOrderWith reports whether the user received an order containing the product.
	HasDeliveredOrderWith(ctx context.Context, userID, productID string) (bool, error)
}
