package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/erp/factory/internal/domain/datatable"
)

type item struct {
	sku   string
	price decimal.Decimal
	qty   int
	due   *time.Time
}

func columns() []datatable.Column[item] {
	return []datatable.Column[item]{
		{Key: "sku", Label: "SKU", Value: func(i item) any { return i.sku }},
		{Key: "price", Label: "Price", Type: datatable.ColumnCurrency, Value: func(i item) any { return i.price }},
		{Key: "qty", Label: "Qty", Type: datatable.ColumnNumber, Value: func(i item) any { return i.qty }},
		{Key: "due", Label: "Due", Type: datatable.ColumnDate, Value: func(i item) any { return datatable.Deref(i.due) }},
	}
}

func TestWriteXLSX(t *testing.T) {
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []item{
		{sku: "A-1", price: decimal.RequireFromString("12.50"), qty: 3, due: &due},
		{sku: "B-2", price: decimal.NewFromInt(7), qty: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "products", columns(), rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"products"}, f.GetSheetList())
	got, err := f.GetRows("products")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"SKU", "Price", "Qty", "Due"}, got[0])
	assert.Equal(t, []string{"A-1", "12.5", "3", "2024-03-01"}, got[1])
	assert.Equal(t, []string{"B-2", "7", "0"}, got[2])
}

func TestWriteXLSX_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "", columns(), nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	got, err := f.GetRows(defaultSheet)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, "orders-20240301-140509.xlsx", Filename("orders", now))
}
