package services

import (
	"context"
	"errors"
	"testing"

	"pharmacy_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomerStoresBlankDocumentAsNull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.customers.CreateCustomer(ctx, models.CreateCustomerPayload{FirstName: "Rosa", LastName: "Flores", DocumentNumber: ptr(""), Phone: ptr("  ")})
	require.NoError(t, err)
	assert.Nil(t, first.DocumentNumber)
	assert.Nil(t, first.Phone)

	second, err := f.customers.CreateCustomer(ctx, models.CreateCustomerPayload{FirstName: "Jorge", LastName: "Mena", DocumentNumber: ptr("   ")})
	require.NoError(t, err)
	assert.Nil(t, second.DocumentNumber)

	_, err = f.customers.CreateCustomer(ctx, models.CreateCustomerPayload{FirstName: "Ana", LastName: "Soto", DocumentNumber: ptr("45781236")})
	require.NoError(t, err)
	_, err = f.customers.CreateCustomer(ctx, models.CreateCustomerPayload{FirstName: "Ana", LastName: "Soto", DocumentNumber: ptr(" 45781236 ")})
	assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)
}

func TestUpdateCustomerClearsBlankDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.customers.CreateCustomer(ctx, models.CreateCustomerPayload{FirstName: "Luis", LastName: "Vega", DocumentNumber: ptr("70112233")})
	require.NoError(t, err)
	b, err := f.customers.CreateCustomer(ctx, models.CreateCustomerPayload{FirstName: "Eva", LastName: "Rios", DocumentNumber: ptr("70112244")})
	require.NoError(t, err)

	updated, err := f.customers.UpdateCustomer(ctx, a.ID, models.UpdateCustomerPayload{DocumentNumber: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.DocumentNumber)

	updated, err = f.customers.UpdateCustomer(ctx, b.ID, models.UpdateCustomerPayload{DocumentNumber: ptr(""), FirstName: ptr("Eva Maria")})
	require.NoError(t, err)
	assert.Nil(t, updated.DocumentNumber)
	assert.Equal(t, "Eva Maria", updated.FirstName)
}
