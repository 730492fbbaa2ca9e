package models

import "time"

// Role gates access to admin operations.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Address is a delivery address owned by a user.
type Address struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"-" gorm:"type:varchar(36);index;not null"`
	Street    string    `json:"street" gorm:"type:varchar(255);not null"`
	City      string    `json:"city" gorm:"type:varchar(100);not null"`
	Country   string    `json:"country" gorm:"type:varchar(100);not null"`
	Phone     string    `json:"phone,omitempty" gorm:"type:varchar(20)"`
	IsDefault bool      `json:"is_default" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// CartItem is a line of a user's server-side cart. Product is filled on read.
type CartItem struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string          `json:"-" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_product"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	AddedAt   time.Time       `json:"added_at"`
	Product   *ProductSummary `json:"product,omitempty" gorm:"-"`
}

// User represents a user of the store.
type User struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string     `json:"name" gorm:"type:varchar(100);not null"`
	Email     string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string     `json:"-" gorm:"type:varchar(255);not null"`
	Role      Role       `json:"role" gorm:"type:varchar(16);not null"`
	Phone     string     `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Addresses []Address  `json:"addresses" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Cart      []CartItem `json:"cart" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	IsActive  bool       `json:"is_active" gorm:"not null"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasRole reports whether the user's role is one of roles.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// CanAccess reports whether u may act on resources owned by ownerID.
func (u *User) CanAccess(ownerID string) bool {
	return u != nil && (u.ID == ownerID || u.IsAdmin())
}

// Summary returns the buyer/reviewer fields embedded in other resources.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// DefaultAddress returns the address flagged as default, falling back to the first one.
func (u *User) DefaultAddress() *Address {
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			return &u.Addresses[i]
		}
	}
	if len(u.Addresses) > 0 {
		return &u.Addresses[0]
	}
	return nil
}

// UserSummary is the short user view attached to orders and reviews.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
