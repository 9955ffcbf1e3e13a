package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/erp/factory/internal/infrastructure/telemetry"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, data metricdata.Aggregation, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestBusinessMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	bm, err := telemetry.NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)
	ctx := context.Background()

	bm.RecordLogin(ctx, true, "")
	bm.RecordLogin(ctx, false, "invalid_credentials")
	bm.RecordLogin(ctx, false, "invalid_credentials")
	bm.RecordSyncItem(ctx, "client", "bitrix24", "created")
	bm.RecordExport(ctx, "products", "xlsx", 42)
	bm.RecordExternalCall(ctx, "bitrix24", "crm.company.list", 150*time.Millisecond, nil)
	bm.RecordExternalCall(ctx, "1c", "Catalog_Контрагенты", time.Second, errors.New("boom"))

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumFor(t, got["erp.auth.logins"],
		attribute.Bool("success", false), attribute.String("reason", "invalid_credentials")))
	assert.Equal(t, int64(1), sumFor(t, got["erp.auth.logins"],
		attribute.Bool("success", true), attribute.String("reason", "")))
	assert.Equal(t, int64(1), sumFor(t, got["erp.sync.items"],
		attribute.String("entity", "client"), attribute.String("source", "bitrix24"), attribute.String("outcome", "created")))
	assert.Equal(t, int64(42), sumFor(t, got["erp.export.rows"],
		attribute.String("table", "products"), attribute.String("format", "xlsx")))
	assert.Equal(t, int64(1), sumFor(t, got["erp.external.calls"],
		attribute.String("system", "1c"), attribute.String("operation", "Catalog_Контрагенты"), attribute.Bool("error", true)))

	hist, ok := got["erp.external.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	_, err := telemetry.NewBusinessMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}
