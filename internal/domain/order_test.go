package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{StatusPending, StatusProcessing},
		{StatusPending, StatusCancelled},
		{StatusProcessing, StatusShipped},
		{StatusProcessing, StatusCancelled},
		{StatusShipped, StatusDelivered},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}

	rejected := []struct{ from, to OrderStatus }{
		{StatusShipped, StatusPending},
		{StatusShipped, StatusCancelled},
		{StatusPending, StatusPending},
		{StatusPending, StatusDelivered},
		{StatusDelivered, StatusPending},
		{StatusCancelled, StatusProcessing},
	}
	for _, tc := range rejected {
		assert.False(t, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCancellable(t *testing.T) {
	assert.True(t, StatusPending.Cancellable())
	assert.True(t, StatusProcessing.Cancellable())
	assert.False(t, StatusShipped.Cancellable())
	assert.False(t, StatusDelivered.Cancellable())
}

func TestLineTotal(t *testing.T) {
	total := LineTotal(3, decimal.RequireFromString("19.90"), decimal.RequireFromString("5.00"))
	assert.True(t, total.Equal(decimal.RequireFromString("54.70")), total.String())
}

func TestValidAmount(t *testing.T) {
	for _, ok := range []string{"0", "0.01", "19.90", "19.9000", "99999999.99"} {
		assert.True(t, ValidAmount(decimal.RequireFromString(ok)), ok)
	}
	for _, bad := range []string{"-0.01", "0.335", "0.001", "100000000", "99999999.999"} {
		assert.False(t, ValidAmount(decimal.RequireFromString(bad)), bad)
	}
}

func TestClientFullName(t *testing.T) {
	assert.Equal(t, "Maria Silva", (&Client{Name: "Maria", LastName: "Silva"}).FullName())
	assert.Equal(t, "Maria", (&Client{Name: "Maria"}).FullName())
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, PaymentPix.Valid())
	assert.False(t, PaymentMethod("bitcoin").Valid())
	assert.True(t, StatusShipped.Valid())
	assert.False(t, OrderStatus("lost").Valid())
	assert.True(t, ProductOutOfStock.Valid())
	assert.False(t, ProductStatus("archived").Valid())
}

func TestAddressFormat(t *testing.T) {
	a := Address{Street: "Rua A", Number: "10", Complement: "Apto 2", Neighborhood: "Centro", City: "Recife", State: "PE", ZipCode: "50000000"}
	assert.Equal(t, "Rua A, 10 - Apto 2, Centro, Recife/PE, 50000000", a.Format())

	c := Client{Addresses: []Address{{ID: 1}, {ID: 2, IsPrimary: true}}}
	primary, ok := c.PrimaryAddress()
	assert.True(t, ok)
	assert.Equal(t, uint(2), primary.ID)
}
