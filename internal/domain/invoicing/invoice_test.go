package invoicing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/factory/internal/domain/shared"
)

func TestNewInvoice(t *testing.T) {
	inv, err := NewInvoice(" INV-7 ", uuid.New(), shared.ExternalRef{ExternalID: "7", Source: shared.Source1C})
	require.NoError(t, err)
	assert.Equal(t, "INV-7", inv.InvoiceNumber)
	assert.Equal(t, StatusDraft, inv.Status)
	assert.Equal(t, "RUB", inv.Currency)

	_, err = NewInvoice("", uuid.New(), shared.ManualRef())
	assert.Error(t, err)
	_, err = NewInvoice("X", uuid.Nil, shared.ManualRef())
	assert.Error(t, err)
}

func TestInvoice_IsOverdue(t *testing.T) {
	inv, _ := NewInvoice("INV-1", uuid.New(), shared.ManualRef())
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	inv.SetDates(nil, &due)

	assert.True(t, inv.IsOverdue(due.Add(time.Hour)))
	assert.False(t, inv.IsOverdue(due.Add(-time.Hour)))

	require.NoError(t, inv.SetStatus(StatusPaid))
	assert.False(t, inv.IsOverdue(due.Add(time.Hour)))
}

func TestInvoiceItem_SetAmounts(t *testing.T) {
	item, err := NewInvoiceItem(uuid.New(), 1, "Bolt M8", shared.ManualRef())
	require.NoError(t, err)

	require.NoError(t, item.SetAmounts(decimal.NewFromInt(3), decimal.RequireFromString("2.50"), decimal.Zero))
	assert.True(t, item.Total.Equal(decimal.RequireFromString("7.5")))

	require.NoError(t, item.SetAmounts(decimal.NewFromInt(3), decimal.RequireFromString("2.50"), decimal.NewFromInt(9)))
	assert.True(t, item.Total.Equal(decimal.NewFromInt(9)))

	assert.Error(t, item.SetAmounts(decimal.NewFromInt(-1), decimal.Zero, decimal.Zero))
	assert.True(t, SumItems([]InvoiceItem{*item, *item}).Equal(decimal.NewFromInt(18)))
}
