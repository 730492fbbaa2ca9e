package services

import (
	"context"
	"errors"
	"strings"

	"casestore/internal/apperrors"
	"casestore/internal/models"
	"casestore/internal/repositories"
	"casestore/internal/validation"
)

// DefaultCountry is stored on addresses submitted without a country.
const DefaultCountry = "USA"

// UserService handles profiles, saved addresses and the server-side cart.
type UserService struct {
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, productRepo repositories.ProductRepository) *UserService {
	return &UserService{
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

// GetProfile returns a user with addresses and cart. Users may only read their own profile unless admin.
func (s *UserService) GetProfile(ctx context.Context, requester *models.User, id string) (*models.User, error) {
	if !requester.CanAccess(id) {
		return nil, apperrors.New(apperrors.ErrForbidden, "Not authorized to view this profile")
	}
	user, err := s.userRepo.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachProducts(ctx, user.Cart); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes name and/or phone.
func (s *UserService) UpdateProfile(ctx context.Context, requester *models.User, id string, req models.UpdateProfileRequest) (*models.User, error) {
	if !requester.CanAccess(id) {
		return nil, apperrors.New(apperrors.ErrForbidden, "Not authorized to update this profile")
	}
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var fields []string
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
		fields = append(fields, "name")
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
		fields = append(fields, "phone")
	}
	if err := s.userRepo.Update(ctx, user, fields...); err != nil {
		return nil, err
	}
	return s.userRepo.GetProfile(ctx, id)
}

func ownAddresses(requester *models.User, userID string) error {
	if requester == nil || requester.ID != userID {
		return apperrors.New(apperrors.ErrForbidden, "Not authorized")
	}
	return nil
}

// AddAddress saves a new address and returns the user's full address list.
func (s *UserService) AddAddress(ctx context.Context, requester *models.User, userID string, in models.AddressInput) ([]models.Address, error) {
	if err := ownAddresses(requester, userID); err != nil {
		return nil, err
	}
	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	country := strings.TrimSpace(in.Country)
	if country == "" {
		country = DefaultCountry
	}
	address := &models.Address{
		UserID:    userID,
		Street:    strings.TrimSpace(in.Street),
		City:      strings.TrimSpace(in.City),
		Country:   country,
		Phone:     in.Phone,
		IsDefault: in.IsDefault,
	}
	if err := s.userRepo.AddAddress(ctx, address); err != nil {
		return nil, err
	}
	return s.addresses(ctx, userID)
}

// UpdateAddress applies the non-nil fields of in to one of the user's addresses.
func (s *UserService) UpdateAddress(ctx context.Context, requester *models.User, userID, addressID string, in models.AddressUpdate) ([]models.Address, error) {
	if err := ownAddresses(requester, userID); err != nil {
		return nil, err
	}
	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	address, err := s.userRepo.GetAddress(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "Address not found")
		}
		return nil, err
	}
	if in.Street != nil {
		address.Street = strings.TrimSpace(*in.Street)
	}
	if in.City != nil {
		address.City = strings.TrimSpace(*in.City)
	}
	if in.Country != nil {
		address.Country = strings.TrimSpace(*in.Country)
	}
	if in.Phone != nil {
		address.Phone = *in.Phone
	}
	if in.IsDefault != nil {
		address.IsDefault = *in.IsDefault
	}
	if err := s.userRepo.UpdateAddress(ctx, address); err != nil {
		return nil, err
	}
	return s.addresses(ctx, userID)
}

// RemoveAddress deletes one of the user's addresses.
func (s *UserService) RemoveAddress(ctx context.Context, requester *models.User, userID, addressID string) ([]models.Address, error) {
	if err := ownAddresses(requester, userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.DeleteAddress(ctx, userID, addressID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "Address not found")
		}
		return nil, err
	}
	return s.addresses(ctx, userID)
}

func (s *UserService) addresses(ctx context.Context, userID string) ([]models.Address, error) {
	user, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Addresses, nil
}

// GetCart returns the user's cart lines with the current product details.
func (s *UserService) GetCart(ctx context.Context, user *models.User) ([]models.CartItem, error) {
	items, err := s.userRepo.GetCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}
	if err := s.attachProducts(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart adds quantity units of a product, incrementing an existing line. Quantity defaults to 1.
func (s *UserService) AddToCart(ctx context.Context, user *models.User, req models.CartItemRequest) ([]models.CartItem, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "Product not found")
		}
		return nil, err
	}
	if err := s.userRepo.AddToCart(ctx, user.ID, req.ProductID, req.Quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, user)
}

// RemoveFromCart drops the line of one product. Removing an absent product is not an error.
func (s *UserService) RemoveFromCart(ctx context.Context, user *models.User, productID string) ([]models.CartItem, error) {
	if err := s.userRepo.RemoveFromCart(ctx, user.ID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, user)
}

// ClearCart empties the user's cart.
func (s *UserService) ClearCart(ctx context.Context, user *models.User) error {
	return s.userRepo.ClearCart(ctx, user.ID)
}

func (s *UserService) attachProducts(ctx context.Context, items []models.CartItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]*models.ProductSummary, len(products))
	for i := range products {
		byID[products[i].ID] = products[i].Summary()
	}
	for i := range items {
		items[i].Product = byID[items[i].ProductID]
	}
	return nil
}
