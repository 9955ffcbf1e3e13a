package procurement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierReceipt_Receive(t *testing.T) {
	r, err := NewSupplierReceipt("RCV-1", uuid.New(), uuid.New())
	require.NoError(t, err)

	assert.Error(t, r.Receive(), "empty receipts cannot be received")

	require.NoError(t, r.AddItem(uuid.New(), decimal.NewFromInt(10), decimal.RequireFromString("1.20")))
	require.NoError(t, r.AddItem(uuid.New(), decimal.NewFromInt(2), decimal.NewFromInt(5)))
	assert.True(t, r.TotalAmount.Equal(decimal.NewFromInt(22)), r.TotalAmount.String())

	require.NoError(t, r.Receive())
	assert.Equal(t, ReceiptStatusReceived, r.Status)
	assert.NotNil(t, r.ReceivedAt)

	err = r.Receive()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already been received")

	assert.Error(t, r.AddItem(uuid.New(), decimal.NewFromInt(1), decimal.Zero))
	assert.Error(t, r.Cancel())
}

func TestSupplierReceipt_Validation(t *testing.T) {
	_, err := NewSupplierReceipt("", uuid.New(), uuid.New())
	assert.Error(t, err)

	r, _ := NewSupplierReceipt("RCV-2", uuid.New(), uuid.New())
	assert.Error(t, r.AddItem(uuid.New(), decimal.Zero, decimal.Zero))
	assert.Error(t, r.AddItem(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(-1)))
	require.NoError(t, r.Cancel())
	assert.Equal(t, ReceiptStatusCancelled, r.Status)
}
