package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in status s may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// CancellableStatuses lists the statuses from which cancellation is allowed.
func CancellableStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusProcessing}
}

// PaymentMethod is how the buyer pays.
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit-card"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentKaspiQR        PaymentMethod = "kaspi-qr"
	PaymentCashOnDelivery PaymentMethod = "cash-on-delivery"
)

// ShippingAddress is the copy of the delivery address stored with an order.
type ShippingAddress struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
}

// Pricing holds the monetary breakdown of an order.
type Pricing struct {
	Subtotal decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2)"`
	Shipping decimal.Decimal `json:"shipping" gorm:"type:decimal(12,2)"`
	Discount decimal.Decimal `json:"discount" gorm:"type:decimal(12,2)"`
	Total    decimal.Decimal `json:"total" gorm:"type:decimal(12,2)"`
}

// ProductSnapshot freezes what the product looked like when it was ordered.
type ProductSnapshot struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Image string          `json:"image,omitempty"`
}

// OrderItem represents an item within an order.
type OrderItem struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string          `json:"-" gorm:"type:varchar(36);index;not null"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36);index;not null"`
	Position  int             `json:"-"`
	Snapshot  ProductSnapshot `json:"product_snapshot" gorm:"embedded;embeddedPrefix:snapshot_"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Product   *ProductSummary `json:"product,omitempty" gorm:"-"`
}

// Order represents a customer order.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user_id" gorm:"type:varchar(36);index;not null"`
	OrderNumber     string          `json:"order_number" gorm:"type:varchar(16);uniqueIndex;not null"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(32);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(16);index;not null"`
	Pricing         Pricing         `json:"pricing" gorm:"embedded;embeddedPrefix:pricing_"`
	TrackingNumber  string          `json:"tracking_number,omitempty" gorm:"type:varchar(100)"`
	Notes           string          `json:"notes,omitempty" gorm:"type:varchar(500)"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time       `json:"updated_at"`
	User            *UserSummary    `json:"user,omitempty" gorm:"-"`
}

// OrderFilter narrows an order listing. Empty fields match everything.
type OrderFilter struct {
	UserID string
	Status OrderStatus
	Page   Page
}

// StatusChange is applied to an order by a conditional status update.
type StatusChange struct {
	Status         OrderStatus
	TrackingNumber *string
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
}
