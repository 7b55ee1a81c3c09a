package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []OrderItem{
		{ProductID: 1, Quantity: 3, Price: 250},
		{ProductID: 2, Quantity: 1, Price: 1999},
	}

	o := NewOrder("o-1", "u1", items, ShippingAddress{City: "Oslo"}, now)

	assert.Equal(t, int64(3*250+1999), o.TotalAmount)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, now, o.CreatedAt)
	require.Len(t, o.StatusHistory, 1)
	assert.Equal(t, StatusEntry{OrderID: "o-1", Status: StatusPending, Timestamp: now}, o.StatusHistory[0])
	for i, it := range o.Items {
		assert.Equal(t, "o-1", it.OrderID)
		assert.Equal(t, i, it.Position)
	}
}

func TestOrder_AppendStatus(t *testing.T) {
	o := NewOrder("o-1", "u1", nil, ShippingAddress{}, time.Now())
	total := o.TotalAmount

	o.AppendStatus(StatusProcessing, "picked", time.Now())
	o.AppendStatus(StatusProcessing, "", time.Now())

	assert.Equal(t, StatusProcessing, o.Status)
	assert.Len(t, o.StatusHistory, 3)
	assert.Equal(t, o.Status, o.StatusHistory[len(o.StatusHistory)-1].Status)
	assert.Equal(t, total, o.TotalAmount)
}

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
		got, err := ParseOrderStatus(s)
		require.NoError(t, err)
		assert.Equal(t, OrderStatus(s), got)
	}

	_, err := ParseOrderStatus("canceled")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRequester_CanAccess(t *testing.T) {
	o := &Order{OwnerID: "u1"}

	assert.True(t, Requester{UserID: "u1", Role: RoleUser}.CanAccess(o))
	assert.False(t, Requester{UserID: "u2", Role: RoleUser}.CanAccess(o))
	assert.True(t, Requester{UserID: "u2", Role: RoleAdmin}.CanAccess(o))
}
