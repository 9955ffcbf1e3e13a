package shipping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShipment_SetStatus(t *testing.T) {
	s, err := NewShipment("SHP-1", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, StatusPreparing, s.Status)

	require.NoError(t, s.SetStatus(StatusShipped))
	require.NotNil(t, s.ShippedAt)
	shipped := *s.ShippedAt
	assert.Nil(t, s.DeliveredAt)

	require.NoError(t, s.SetStatus(StatusInTransit))
	assert.Equal(t, shipped, *s.ShippedAt)

	require.NoError(t, s.SetStatus(StatusDelivered))
	assert.NotNil(t, s.DeliveredAt)

	assert.Error(t, s.SetStatus("lost"))
}

func TestShipment_Items(t *testing.T) {
	s, _ := NewShipment("SHP-2", uuid.New())

	require.NoError(t, s.AddItem(uuid.New(), decimal.NewFromInt(2), []string{"SN-1", "SN-2"}))
	require.NoError(t, s.AddItem(uuid.New(), decimal.NewFromInt(1), nil))
	assert.Len(t, s.Items, 2)
	assert.Equal(t, s.ID, s.Items[0].ShipmentID)
	assert.NotNil(t, s.Items[1].SerialNumbers)

	assert.Error(t, s.AddItem(uuid.New(), decimal.Zero, nil))
}

func TestShipment_SetPackage(t *testing.T) {
	s, _ := NewShipment("SHP-3", uuid.New())
	dims := Dimensions{Length: decimal.NewFromInt(10), Width: decimal.NewFromInt(20), Height: decimal.NewFromInt(5)}

	require.NoError(t, s.SetPackage(decimal.RequireFromString("2.5"), dims))
	assert.True(t, s.Dimensions.Volume().Equal(decimal.NewFromInt(1000)))

	assert.Error(t, s.SetPackage(decimal.NewFromInt(-1), dims))
}
