package models

import "time"

// Review is a verified buyer's rating of a product. One per user and product.
type Review struct {
	ID        string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string       `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_review_user_product"`
	ProductID string       `json:"product_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_review_user_product;index"`
	Rating    int          `json:"rating" gorm:"not null"`
	Title     string       `json:"title,omitempty" gorm:"type:varchar(100)"`
	Comment   string       `json:"comment" gorm:"type:varchar(1000);not null"`
	Verified  bool         `json:"verified" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	User      *UserSummary `json:"user,omitempty" gorm:"-"`
}

// ReviewFilter selects the reviews of one product.
type ReviewFilter struct {
	ProductID string
	Sort      string
	Page      Page
}
