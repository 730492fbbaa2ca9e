package services_test

import (
	"errors"
	"testing"

	"casestore/internal/apperrors"
	"casestore/internal/models"
	"casestore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_Profile(t *testing.T) {
	users := new(MockUserRepository)
	products := new(MockProductRepository)
	service := services.NewUserService(users, products)

	profile := &models.User{ID: buyer.ID, Name: "Buyer", Cart: []models.CartItem{{ProductID: "p1", Quantity: 1}}}
	users.On("GetProfile", mock.Anything, buyer.ID).Return(profile, nil)
	products.On("GetByIDs", mock.Anything, []string{"p1"}).Return([]models.Product{*product("p1", "Case", 10, 3)}, nil)

	got, err := service.GetProfile(ctx, buyer, buyer.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Cart[0].Product)
	assert.Equal(t, "Case", got.Cart[0].Product.Name)

	_, err = service.GetProfile(ctx, admin, buyer.ID)
	require.NoError(t, err)

	_, err = service.GetProfile(ctx, &models.User{ID: "stranger"}, buyer.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	name := "  New Name "
	users.On("GetByID", mock.Anything, buyer.ID).Return(&models.User{ID: buyer.ID, Name: "Buyer"}, nil).Once()
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool { return u.Name == "New Name" }), []string{"name"}).Return(nil).Once()
	_, err = service.UpdateProfile(ctx, buyer, buyer.ID, models.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)

	badPhone := "12ab"
	_, err = service.UpdateProfile(ctx, buyer, buyer.ID, models.UpdateProfileRequest{Phone: &badPhone})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	users.AssertExpectations(t)
}

func TestUserService_Addresses(t *testing.T) {
	users := new(MockUserRepository)
	service := services.NewUserService(users, new(MockProductRepository))

	users.On("AddAddress", mock.Anything, mock.MatchedBy(func(a *models.Address) bool {
		return a.UserID == buyer.ID && a.Country == services.DefaultCountry && a.IsDefault
	})).Return(nil).Once()
	users.On("GetProfile", mock.Anything, buyer.ID).Return(&models.User{ID: buyer.ID, Addresses: []models.Address{{ID: "a1"}}}, nil)

	addresses, err := service.AddAddress(ctx, buyer, buyer.ID, models.AddressInput{Street: "1 Main", City: "Almaty", IsDefault: true})
	require.NoError(t, err)
	assert.Len(t, addresses, 1)

	// Admins cannot edit someone else's addresses
	_, err = service.AddAddress(ctx, admin, buyer.ID, models.AddressInput{Street: "1 Main", City: "Almaty"})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	city := "Astana"
	users.On("GetAddress", mock.Anything, buyer.ID, "a1").Return(&models.Address{ID: "a1", UserID: buyer.ID, City: "Almaty"}, nil).Once()
	users.On("UpdateAddress", mock.Anything, mock.MatchedBy(func(a *models.Address) bool { return a.City == "Astana" })).Return(nil).Once()
	_, err = service.UpdateAddress(ctx, buyer, buyer.ID, "a1", models.AddressUpdate{City: &city})
	require.NoError(t, err)

	users.On("GetAddress", mock.Anything, buyer.ID, "zz").Return(nil, notFoundErr("address", "zz")).Once()
	_, err = service.UpdateAddress(ctx, buyer, buyer.ID, "zz", models.AddressUpdate{City: &city})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "Address not found", err.Error())

	users.On("DeleteAddress", mock.Anything, buyer.ID, "a1").Return(nil).Once()
	_, err = service.RemoveAddress(ctx, buyer, buyer.ID, "a1")
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestUserService_Cart(t *testing.T) {
	users := new(MockUserRepository)
	products := new(MockProductRepository)
	service := services.NewUserService(users, products)

	products.On("GetByID", mock.Anything, "p1").Return(product("p1", "Case", 10, 3), nil)
	products.On("GetByID", mock.Anything, "nope").Return(nil, notFoundErr("product", "nope"))
	products.On("GetByIDs", mock.Anything, []string{"p1"}).Return([]models.Product{*product("p1", "Case", 10, 3)}, nil)

	// Quantity defaults to one
	users.On("AddToCart", mock.Anything, buyer.ID, "p1", 1).Return(nil).Once()
	users.On("GetCart", mock.Anything, buyer.ID).Return([]models.CartItem{{ProductID: "p1", Quantity: 1}}, nil)

	cart, err := service.AddToCart(ctx, buyer, models.CartItemRequest{ProductID: "p1"})
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, "Case", cart[0].Product.Name)

	_, err = service.AddToCart(ctx, buyer, models.CartItemRequest{ProductID: "nope", Quantity: 2})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = service.AddToCart(ctx, buyer, models.CartItemRequest{ProductID: "p1", Quantity: -1})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	users.On("RemoveFromCart", mock.Anything, buyer.ID, "p1").Return(nil).Once()
	_, err = service.RemoveFromCart(ctx, buyer, "p1")
	require.NoError(t, err)

	users.On("ClearCart", mock.Anything, buyer.ID).Return(nil).Once()
	require.NoError(t, service.ClearCart(ctx, buyer))
	users.AssertExpectations(t)
}
