package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_AddItem(t *testing.T) {
	order, err := NewOrder("ORD-1", nil)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, order.Status)

	_, err = order.AddItem(uuid.New(), decimal.NewFromInt(3), decimal.RequireFromString("10.50"))
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(4))
	require.NoError(t, err)

	assert.Len(t, order.Items, 2)
	assert.Equal(t, order.ID, order.Items[0].OrderID)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("35.5")), order.TotalAmount.String())

	_, err = order.AddItem(uuid.New(), decimal.Zero, decimal.NewFromInt(1))
	assert.Error(t, err)

	order.ClearItems()
	assert.True(t, order.TotalAmount.IsZero())
}

func TestOrder_SetStatus(t *testing.T) {
	order, _ := NewOrder("ORD-2", nil)

	require.NoError(t, order.SetStatus(OrderStatusShipped))
	assert.Equal(t, OrderStatusShipped, order.Status)

	assert.Error(t, order.SetStatus("lost"))
	assert.False(t, order.IsCancelled())
}
