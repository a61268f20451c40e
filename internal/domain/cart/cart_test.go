package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(productID string, qty, stock int, price string) LineItem {
	return LineItem{
		ProductID:     productID,
		Name:          "Item " + productID,
		Image:         "/images/" + productID + ".jpg",
		UnitPrice:     decimal.RequireFromString(price),
		Quantity:      qty,
		StockSnapshot: stock,
	}
}

func completeAddress() Address {
	return Address{
		Street:     "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

func TestAddOrUpdateItem_AppendsInOrder(t *testing.T) {
	s := NewState()

	s.AddOrUpdateItem(newTestItem("p1", 1, 10, "5.00"))
	s.AddOrUpdateItem(newTestItem("p2", 2, 10, "7.00"))
	s.AddOrUpdateItem(newTestItem("p3", 3, 10, "9.00"))

	require.Len(t, s.Items, 3)
	assert.Equal(t, "p1", s.Items[0].ProductID)
	assert.Equal(t, "p2", s.Items[1].ProductID)
	assert.Equal(t, "p3", s.Items[2].ProductID)
}

func TestAddOrUpdateItem_ReplacesQuantity(t *testing.T) {
	s := NewState()

	s.AddOrUpdateItem(newTestItem("p1", 2, 10, "5.00"))
	s.AddOrUpdateItem(newTestItem("p1", 5, 10, "5.00"))

	require.Len(t, s.Items, 1)
	assert.Equal(t, 5, s.Items[0].Quantity, "second add replaces, not accumulates")
}

func TestAddOrUpdateItem_KeepsPositionOnUpdate(t *testing.T) {
	s := NewState()

	s.AddOrUpdateItem(newTestItem("p1", 1, 10, "5.00"))
	s.AddOrUpdateItem(newTestItem("p2", 1, 10, "7.00"))
	s.AddOrUpdateItem(newTestItem("p1", 3, 10, "5.00"))

	require.Len(t, s.Items, 2)
	assert.Equal(t, "p1", s.Items[0].ProductID)
	assert.Equal(t, 3, s.Items[0].Quantity)
}

func TestAddOrUpdateItem_ClampsToStock(t *testing.T) {
	s := NewState()

	s.AddOrUpdateItem(newTestItem("p1", 5, 3, "5.00"))

	require.Len(t, s.Items, 1)
	assert.Equal(t, 3, s.Items[0].Quantity)
}

func TestAddOrUpdateItem_ClampsToMinimumOne(t *testing.T) {
	s := NewState()

	s.AddOrUpdateItem(newTestItem("p1", 0, 3, "5.00"))
	assert.Equal(t, 1, s.Items[0].Quantity)

	s.AddOrUpdateItem(newTestItem("p1", -4, 3, "5.00"))
	assert.Equal(t, 1, s.Items[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	s := NewState()
	s.AddOrUpdateItem(newTestItem("p1", 1, 10, "5.00"))
	s.AddOrUpdateItem(newTestItem("p2", 1, 10, "7.00"))

	s.RemoveItem("p1")

	require.Len(t, s.Items, 1)
	assert.Equal(t, "p2", s.Items[0].ProductID)
}

func TestRemoveItem_AbsentIsNoop(t *testing.T) {
	s := NewState()
	s.AddOrUpdateItem(newTestItem("p1", 1, 10, "5.00"))

	s.RemoveItem("missing")

	assert.Len(t, s.Items, 1)
}

func TestSetShippingAddress_RejectsIncomplete(t *testing.T) {
	s := NewState()

	for _, addr := range []Address{
		{},
		{Street: "1 Main St", City: "Springfield", PostalCode: "12345"},
		{Street: "1 Main St", City: "Springfield", Country: "US"},
		{Street: "1 Main St", PostalCode: "12345", Country: "US"},
		{City: "Springfield", PostalCode: "12345", Country: "US"},
	} {
		err := s.SetShippingAddress(addr)
		assert.ErrorIs(t, err, ErrIncompleteAddress)
		assert.Nil(t, s.ShippingAddress)
	}
}

func TestSetShippingAddress_AcceptsComplete(t *testing.T) {
	s := NewState()

	require.NoError(t, s.SetShippingAddress(completeAddress()))
	require.NotNil(t, s.ShippingAddress)
	assert.Equal(t, "Springfield", s.ShippingAddress.City)
}

func TestSetPaymentMethod_RequiresAddressFirst(t *testing.T) {
	s := NewState()

	err := s.SetPaymentMethod(PaymentPayPal)
	require.ErrorIs(t, err, ErrNoShippingAddress)
	assert.Empty(t, s.PaymentMethod)
}

func TestSetPaymentMethod_RejectsUnknownMethod(t *testing.T) {
	s := NewState()
	require.NoError(t, s.SetShippingAddress(completeAddress()))

	err := s.SetPaymentMethod("Bitcoin")
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)
	assert.Empty(t, s.PaymentMethod)
}

func TestSetPaymentMethod_AcceptsSupportedMethods(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentUPI, PaymentPayPal, PaymentStripe} {
		s := NewState()
		require.NoError(t, s.SetShippingAddress(completeAddress()))
		require.NoError(t, s.SetPaymentMethod(m))
		assert.Equal(t, m, s.PaymentMethod)
	}
}

func TestClear(t *testing.T) {
	s := NewState()
	s.AddOrUpdateItem(newTestItem("p1", 1, 10, "5.00"))
	require.NoError(t, s.SetShippingAddress(completeAddress()))
	require.NoError(t, s.SetPaymentMethod(PaymentStripe))

	s.Clear()

	assert.Empty(t, s.Items)
	assert.Nil(t, s.ShippingAddress)
	assert.Empty(t, s.PaymentMethod)
}

func TestReadiness(t *testing.T) {
	s := NewState()
	assert.False(t, s.ReadyForPayment())
	assert.False(t, s.ReadyForReview())

	require.NoError(t, s.SetShippingAddress(completeAddress()))
	assert.True(t, s.ReadyForPayment())
	assert.False(t, s.ReadyForReview())

	require.NoError(t, s.SetPaymentMethod(PaymentUPI))
	assert.True(t, s.ReadyForReview())
}
