package repositories

import (
	"context"
	"fmt"

	"casestore/internal/apperrors"
	"casestore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Addresses", "Cart").Create(user).Error; err != nil {
		if isDuplicate(err) {
			return apperrors.New(apperrors.ErrConflict, "email '%s' already registered", user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.New(apperrors.ErrNotFound, "user with email %s not found", email)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("user", id)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// GetProfile retrieves a user with addresses and cart lines.
func (r *GORMUserRepository) GetProfile(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Cart", func(db *gorm.DB) *gorm.DB { return db.Order("added_at, id") }).
		First(&user, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("user", id)
		}
		return nil, fmt.Errorf("failed to get profile of user %s: %w", id, err)
	}
	return &user, nil
}

// GetSummaries returns name and email of each existing user in ids, keyed by ID.
func (r *GORMUserRepository) GetSummaries(ctx context.Context, ids []string) (map[string]*models.UserSummary, error) {
	out := make(map[string]*models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Select("id", "name", "email").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	for i := range users {
		out[users[i].ID] = users[i].Summary()
	}
	return out, nil
}

// Update writes the named columns of user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	columns := append(append([]string{}, fields...), "updated_at")
	user.UpdatedAt = r.db.NowFunc()

	res := r.db.WithContext(ctx).Model(user).Select(columns).Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("user", user.ID)
	}
	return nil
}

// AddAddress inserts an address for its user.
func (r *GORMUserRepository) AddAddress(ctx context.Context, address *models.Address) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefaultAddress(tx, address.UserID, address.ID); err != nil {
				return err
			}
		}
		if err := tx.Create(address).Error; err != nil {
			return fmt.Errorf("failed to add address: %w", err)
		}
		return nil
	})
}

// UpdateAddress saves every field of an existing address.
func (r *GORMUserRepository) UpdateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefaultAddress(tx, address.UserID, address.ID); err != nil {
				return err
			}
		}
		res := tx.Model(address).
			Where("user_id = ?", address.UserID).
			Select("street", "city", "country", "phone", "is_default").
			Updates(address)
		if res.Error != nil {
			return fmt.Errorf("failed to update address: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("address", address.ID)
		}
		return nil
	})
}

func clearDefaultAddress(tx *gorm.DB, userID, exceptID string) error {
	err := tx.Model(&models.Address{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, exceptID, true).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}

// GetAddress returns one of the user's addresses.
func (r *GORMUserRepository) GetAddress(ctx context.Context, userID, addressID string) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).First(&address, "id = ? AND user_id = ?", addressID, userID).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("address", addressID)
		}
		return nil, fmt.Errorf("failed to get address %s: %w", addressID, err)
	}
	return &address, nil
}

// DeleteAddress removes one of the user's addresses.
func (r *GORMUserRepository) DeleteAddress(ctx context.Context, userID, addressID string) error {
	res := r.db.WithContext(ctx).Delete(&models.Address{}, "id = ? AND user_id = ?", addressID, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("address", addressID)
	}
	return nil
}

// GetCart returns the user's cart lines, oldest first.
func (r *GORMUserRepository) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("added_at, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart of user %s: %w", userID, err)
	}
	return items, nil
}

// AddToCart increments an existing cart line or creates a new one.
func (r *GORMUserRepository) AddToCart(ctx context.Context, userID, productID string, quantity int) error {
	db := r.db.WithContext(ctx)
	increment := func() (bool, error) {
		res := db.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", gorm.Expr("quantity + ?", quantity))
		return res.RowsAffected > 0, res.Error
	}

	updated, err := increment()
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if updated {
		return nil
	}

	item := &models.CartItem{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   r.db.NowFunc(),
	}
	if err := db.Create(item).Error; err != nil {
		if !isDuplicate(err) {
			return fmt.Errorf("failed to add to cart: %w", err)
		}
		// a concurrent request created the line first
		if _, err := increment(); err != nil {
			return fmt.Errorf("failed to update cart: %w", err)
		}
	}
	return nil
}

// RemoveFromCart deletes the user's cart line for productID, if any.
func (r *GORMUserRepository) RemoveFromCart(ctx context.Context, userID, productID string) error {
	err := r.db.WithContext(ctx).Delete(&models.CartItem{}, "user_id = ? AND product_id = ?", userID, productID).Error
	if err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	return nil
}

// ClearCart deletes every cart line of the user.
func (r *GORMUserRepository) ClearCart(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Delete(&models.CartItem{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
