package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/models"
)

func ptr[T any](v T) *T { return &v }

func validProduct() models.ProductInput {
	return models.ProductInput{
		Name:     ptr("Laptop"),
		Quantity: ptr(5),
		Price:    ptr(999.0),
		Category: ptr(models.CategoryElectronics),
	}
}

func TestProduct_Valid(t *testing.T) {
	assert.NoError(t, Product(validProduct()))

	zero := validProduct()
	zero.Quantity = ptr(0)
	zero.Price = ptr(0.0)
	assert.NoError(t, Product(zero), "zero quantity and price are allowed")
}

func TestProduct_AggregatesAllMessages(t *testing.T) {
	err := Product(models.ProductInput{
		Name:        ptr("A"),
		Quantity:    ptr(-1),
		Category:    ptr("Toys"),
		Description: ptr(strings.Repeat("x", 501)),
	})
	require.Error(t, err)

	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 5)
	assert.Equal(t, "Product name must be at least 2 characters, "+
		"Quantity cannot be negative, "+
		"Price is required, "+
		"Category must be one of: Electronics, Clothing, Books, Home & Garden, Sports, Health, Other, "+
		"Description cannot exceed 500 characters", err.Error())
}

func TestProduct_MissingFields(t *testing.T) {
	err := Product(models.ProductInput{})
	require.Error(t, err)
	assert.Equal(t, "Product name is required, Quantity is required, Price is required, Category is required", err.Error())
}

func TestRegister(t *testing.T) {
	assert.NoError(t, Register(models.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"}))

	err := Register(models.RegisterInput{Email: "nope", Password: "123"})
	require.Error(t, err)
	assert.Equal(t, "Name is required, Please provide a valid email, Password must be at least 6 characters", err.Error())
}

func TestFederated(t *testing.T) {
	assert.NoError(t, Federated(models.FederatedInput{FederatedID: "uid-1", Email: "ada@example.com"}))

	err := Federated(models.FederatedInput{Email: "ada@example.com"})
	require.Error(t, err)
	assert.Equal(t, "Federated id is required", err.Error())
}
