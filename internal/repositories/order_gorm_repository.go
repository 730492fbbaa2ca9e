package repositories

import (
	"context"
	"fmt"

	"casestore/internal/apperrors"
	"casestore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") })
}

// Create inserts the order with all of its items in one transaction.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}

	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if isDuplicate(err) {
			return apperrors.New(apperrors.ErrConflict, "order number %s already exists", order.OrderNumber)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order with its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := preloadItems(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("order", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// List returns one page of orders, newest first, and the number of matches.
func (r *GORMOrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	page := filter.Page.Normalize()
	var orders []models.Order
	err := preloadItems(q).
		Order("created_at DESC").
		Order("id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// ListByUser returns all orders placed by the user, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := preloadItems(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of user %s: %w", userID, err)
	}
	return orders, nil
}

// ExistsByOrderNumber reports whether an order number is already taken.
func (r *GORMOrderRepository) ExistsByOrderNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("order_number = ?", number).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
	return count > 0, nil
}

// UpdateStatus performs a conditional status update. When no row matches, it
// tells a missing order apart from one whose status has already moved on.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, from []models.OrderStatus, change models.StatusChange) error {
	updates := map[string]interface{}{
		"updated_at": r.db.NowFunc(),
	}
	if change.Status != "" {
		updates["status"] = string(change.Status)
	}
	if change.TrackingNumber != nil {
		updates["tracking_number"] = *change.TrackingNumber
	}
	if change.DeliveredAt != nil {
		updates["delivered_at"] = *change.DeliveredAt
	}
	if change.CancelledAt != nil {
		updates["cancelled_at"] = *change.CancelledAt
	}

	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id)
	if len(from) > 0 {
		q = q.Where("status IN ?", statusStrings(from))
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var current models.Order
	if err := r.db.WithContext(ctx).Select("id", "status").First(&current, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return notFound("order", id)
		}
		return fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return apperrors.New(apperrors.ErrInvalidState, "order is already %s", current.Status)
}

// HasDeliveredOrderWith reports whether a delivered order of the user contains the product.
func (r *GORMOrderRepository) HasDeliveredOrderWith(ctx context.Context, userID, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, string(models.OrderStatusDelivered), productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check delivered orders: %w", err)
	}
	return count > 0, nil
}
