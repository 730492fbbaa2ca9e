package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category is the closed set of product categories.
type Category string

const (
	CategoryPhoneCase  Category = "phone-case"
	CategoryLaptopCase Category = "laptop-case"
	CategoryTabletCase Category = "tablet-case"
	CategoryWatchCase  Category = "watch-case"
	CategoryAccessory  Category = "accessory"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPhoneCase, CategoryLaptopCase, CategoryTabletCase, CategoryWatchCase, CategoryAccessory:
		return true
	}
	return false
}

// Rating is the aggregate of all reviews for a product.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// CompatibleModel names a device a case fits.
type CompatibleModel struct {
	Brand       string `json:"brand" validate:"required,max=100"`
	ModelName   string `json:"model_name" validate:"required,max=100"`
	ReleaseYear int    `json:"release_year,omitempty" validate:"omitempty,gte=1990,lte=2100"`
}

// Product represents a product in the store.
type Product struct {
	ID               string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name             string            `json:"name" gorm:"type:varchar(200);not null"`
	Description      string            `json:"description" gorm:"type:text"`
	Category         Category          `json:"category" gorm:"type:varchar(32);index"`
	Price            decimal.Decimal   `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock            int               `json:"stock" gorm:"not null"`
	Images           []string          `json:"images" gorm:"type:text;serializer:json"`
	Brand            string            `json:"brand,omitempty" gorm:"type:varchar(100)"`
	Material         string            `json:"material,omitempty" gorm:"type:varchar(100)"`
	Color            string            `json:"color,omitempty" gorm:"type:varchar(100)"`
	CompatibleModels []CompatibleModel `json:"compatible_models" gorm:"type:text;serializer:json"`
	Tags             []string          `json:"tags" gorm:"type:text;serializer:json"`
	Rating           Rating            `json:"rating" gorm:"embedded;embeddedPrefix:rating_"`
	SoldCount        int               `json:"sold_count" gorm:"not null"`
	IsActive         bool              `json:"is_active" gorm:"not null;index"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// PrimaryImage is the image captured in order snapshots.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Summary returns the fields embedded in orders and cart responses.
func (p *Product) Summary() *ProductSummary {
	return &ProductSummary{ID: p.ID, Name: p.Name, Images: p.Images, Price: p.Price, Stock: p.Stock}
}

// ProductSummary is the short product view attached to order lines and cart entries.
type ProductSummary struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Images []string        `json:"images"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Category        Category
	MinPrice        *float64
	MaxPrice        *float64
	Search          string
	Sort            string
	IncludeInactive bool
	Page            Page
}
