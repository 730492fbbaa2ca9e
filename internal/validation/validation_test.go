package validation_test

import (
	"errors"
	"testing"

	"casestore/internal/apperrors"
	"casestore/internal/models"
	"casestore/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Register(t *testing.T) {
	err := validation.Validate(models.RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "pass", Phone: "+77011234567"})
	assert.NoError(t, err)

	err = validation.Validate(models.RegisterRequest{Name: "A", Email: "not-an-email", Password: "p", Phone: "0123"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	var ve *apperrors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name must be at least 2 characters", ve.Fields["name"])
	assert.Equal(t, "email must be a valid email", ve.Fields["email"])
	assert.Equal(t, "password must be at least 4 characters", ve.Fields["password"])
	assert.Equal(t, "phone must be a valid phone number", ve.Fields["phone"])
}

func TestValidate_PlaceOrderNestedFields(t *testing.T) {
	req := models.PlaceOrderRequest{
		Items:         []models.OrderLineRequest{{ProductID: "p1", Quantity: 0}},
		PaymentMethod: "barter",
		ShippingAddress: models.ShippingAddressInput{
			Name: "Ann", Street: "1 Main St", City: "Almaty", Country: "KZ", Phone: "+77011234567",
		},
	}

	var ve *apperrors.ValidationError
	require.True(t, errors.As(validation.Validate(req), &ve))
	assert.Contains(t, ve.Fields, "items[0].quantity")
	assert.Equal(t, "payment_method must be one of: credit-card, paypal, kaspi-qr, cash-on-delivery", ve.Fields["payment_method"])
}

func TestValidate_EmptyOrderRejected(t *testing.T) {
	err := validation.Validate(models.PlaceOrderRequest{PaymentMethod: models.PaymentPayPal})

	var ve *apperrors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "items is required", ve.Fields["items"])
	assert.Equal(t, "shipping_address.street is required", ve.Fields["shipping_address.street"])
}

func TestValidate_DecimalBounds(t *testing.T) {
	in := models.ProductInput{
		Name:        "Clear Case",
		Description: "Slim clear case",
		Category:    models.CategoryPhoneCase,
		Price:       decimal.NewFromFloat(-1),
	}

	var ve *apperrors.ValidationError
	require.True(t, errors.As(validation.Validate(in), &ve))
	assert.Equal(t, "price must be at least 0", ve.Fields["price"])

	in.Price = decimal.RequireFromString("19.99")
	assert.NoError(t, validation.Validate(in))
}

func TestValidate_PartialUpdateSkipsNilFields(t *testing.T) {
	assert.NoError(t, validation.Validate(models.ProductUpdate{}))

	bad := models.Category("umbrella")
	assert.Error(t, validation.Validate(models.ProductUpdate{Category: &bad}))
}

func TestValidate_ProductTextLengths(t *testing.T) {
	in := models.ProductInput{
		Name:        "CC",
		Description: "Too short",
		Category:    models.CategoryPhoneCase,
		Price:       decimal.NewFromInt(5),
	}

	var ve *apperrors.ValidationError
	require.True(t, errors.As(validation.Validate(in), &ve))
	assert.Equal(t, "name must be at least 3 characters", ve.Fields["name"])
	assert.Equal(t, "description must be at least 10 characters", ve.Fields["description"])

	in.Name = "Clear Case"
	in.Description = "Slim clear case"
	assert.NoError(t, validation.Validate(in))

	shortName, shortDescription := "CC", "Too short"
	require.True(t, errors.As(validation.Validate(models.ProductUpdate{Name: &shortName, Description: &shortDescription}), &ve))
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "description")

	longEnough := "Slim clear case"
	assert.NoError(t, validation.Validate(models.ProductUpdate{Description: &longEnough}))
}
