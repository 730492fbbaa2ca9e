package models

import "github.com/shopspring/decimal"

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProductInput is the body of POST /products.
type ProductInput struct {
	Name             string            `json:"name" validate:"required,min=3,max=200"`
	Description      string            `json:"description" validate:"required,min=10,max=2000"`
	Category         Category          `json:"category" validate:"required,oneof=phone-case laptop-case tablet-case watch-case accessory"`
	Price            decimal.Decimal   `json:"price" validate:"gte=0"`
	Stock            int               `json:"stock" validate:"gte=0"`
	Images           []string          `json:"images" validate:"omitempty,dive,required"`
	Brand            string            `json:"brand" validate:"max=100"`
	Material         string            `json:"material" validate:"max=100"`
	Color            string            `json:"color" validate:"max=100"`
	CompatibleModels []CompatibleModel `json:"compatible_models" validate:"omitempty,dive"`
	Tags             []string          `json:"tags" validate:"omitempty,dive,required,max=50"`
	IsActive         *bool             `json:"is_active"`
}

// ProductUpdate is the body of PUT /products/:id. Only non-nil fields are written.
type ProductUpdate struct {
	Name             *string            `json:"name" validate:"omitempty,min=3,max=200"`
	Description      *string            `json:"description" validate:"omitempty,min=10,max=2000"`
	Category         *Category          `json:"category" validate:"omitempty,oneof=phone-case laptop-case tablet-case watch-case accessory"`
	Price            *decimal.Decimal   `json:"price" validate:"omitempty,gte=0"`
	Stock            *int               `json:"stock" validate:"omitempty,gte=0"`
	Images           *[]string          `json:"images"`
	Brand            *string            `json:"brand" validate:"omitempty,max=100"`
	Material         *string            `json:"material" validate:"omitempty,max=100"`
	Color            *string            `json:"color" validate:"omitempty,max=100"`
	CompatibleModels *[]CompatibleModel `json:"compatible_models"`
	Tags             *[]string          `json:"tags"`
	IsActive         *bool              `json:"is_active"`
}

// StockAdjustment is the body of PATCH /products/:id/stock.
type StockAdjustment struct {
	Quantity int `json:"quantity"`
}

// TagRequest is the body of PATCH /products/:id/tags.
type TagRequest struct {
	Tag string `json:"tag" validate:"required,max=50"`
}

// OrderLineRequest is one requested product and quantity.
type OrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// ShippingAddressInput is the delivery address supplied with an order.
type ShippingAddressInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Street  string `json:"street" validate:"required,max=255"`
	City    string `json:"city" validate:"required,max=100"`
	Country string `json:"country" validate:"required,max=100"`
	Phone   string `json:"phone" validate:"required,phone"`
}

// ToAddress converts the input into the stored order address.
func (in ShippingAddressInput) ToAddress() ShippingAddress {
	return ShippingAddress{Name: in.Name, Street: in.Street, City: in.City, Country: in.Country, Phone: in.Phone}
}

// PricingInput carries the client-provided part of the pricing.
type PricingInput struct {
	Discount decimal.Decimal `json:"discount" validate:"gte=0"`
}

// PlaceOrderRequest is the body of POST /orders.
type PlaceOrderRequest struct {
	Items           []OrderLineRequest   `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddressInput `json:"shipping_address"`
	PaymentMethod   PaymentMethod        `json:"payment_method" validate:"required,oneof=credit-card paypal kaspi-qr cash-on-delivery"`
	Pricing         PricingInput         `json:"pricing"`
	Notes           string               `json:"notes" validate:"max=500"`
}

// CheckoutRequest is the body of POST /orders/checkout. Without an explicit
// address the buyer's saved address is used.
type CheckoutRequest struct {
	ShippingAddress *ShippingAddressInput `json:"shipping_address" validate:"omitempty"`
	AddressID       string                `json:"address_id"`
	PaymentMethod   PaymentMethod         `json:"payment_method" validate:"required,oneof=credit-card paypal kaspi-qr cash-on-delivery"`
	Pricing         PricingInput          `json:"pricing"`
	Notes           string                `json:"notes" validate:"max=500"`
}

// StatusUpdateRequest is the body of PATCH /orders/:id/status.
type StatusUpdateRequest struct {
	Status         OrderStatus `json:"status" validate:"omitempty,oneof=pending processing shipped delivered cancelled"`
	TrackingNumber *string     `json:"tracking_number" validate:"omitempty,max=100"`
}

// CreateReviewRequest is the body of POST /reviews.
type CreateReviewRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Title     string `json:"title" validate:"max=100"`
	Comment   string `json:"comment" validate:"required,min=10,max=1000"`
}

// UpdateReviewRequest is the body of PUT /reviews/:id.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Title   *string `json:"title" validate:"omitempty,max=100"`
	Comment *string `json:"comment" validate:"omitempty,min=10,max=1000"`
}

// UpdateProfileRequest is the body of PUT /users/:id.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone *string `json:"phone" validate:"omitempty,phone"`
}

// AddressInput is the body of POST /users/:id/addresses.
type AddressInput struct {
	Street    string `json:"street" validate:"required,max=255"`
	City      string `json:"city" validate:"required,max=100"`
	Country   string `json:"country" validate:"max=100"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	IsDefault bool   `json:"is_default"`
}

// AddressUpdate is the body of PATCH /users/:id/addresses/:addressId.
type AddressUpdate struct {
	Street    *string `json:"street" validate:"omitempty,min=1,max=255"`
	City      *string `json:"city" validate:"omitempty,min=1,max=100"`
	Country   *string `json:"country" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`
	IsDefault *bool   `json:"is_default"`
}

// CartItemRequest is the body of POST /users/cart.
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}
