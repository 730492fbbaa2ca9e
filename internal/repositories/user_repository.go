package repositories

import (
	"context"

	"casestore/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetProfile loads the user together with addresses and cart.
	GetProfile(ctx context.Context, id string) (*models.User, error)
	GetSummaries(ctx context.Context, ids []string) (map[string]*models.UserSummary, error)
	Update(ctx context.Context, user *models.User, fields ...string) error

	// AddAddress stores a new address; a default address clears the flag on the others.
	AddAddress(ctx context.Context, address *models.Address) error
	UpdateAddress(ctx context.Context, address *models.Address) error
	GetAddress(ctx context.Context, userID, addressID string) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) error

	GetCart(ctx context.Context, userID string) ([]models.CartItem, error)
	// AddToCart creates the cart line or increments its quantity.
	AddToCart(ctx context.Context, userID, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error
}
