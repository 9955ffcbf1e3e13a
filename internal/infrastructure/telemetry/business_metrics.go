package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics counts logins, synced records, exports and external API calls
type BusinessMetrics struct {
	logins        *Counter
	syncItems     *Counter
	exportRows    *Counter
	externalCalls *Counter
	externalTime  *Histogram
}

// NewBusinessMetrics creates the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BusinessMetrics{}
	var err error
	if bm.logins, err = NewCounter(meter, "erp.auth.logins", "Login attempts", "{attempt}"); err != nil {
		return nil, err
	}
	if bm.syncItems, err = NewCounter(meter, "erp.sync.items", "Records processed by sync upserts", "{record}"); err != nil {
		return nil, err
	}
	if bm.exportRows, err = NewCounter(meter, "erp.export.rows", "Rows written to table exports", "{row}"); err != nil {
		return nil, err
	}
	if bm.externalCalls, err = NewCounter(meter, "erp.external.calls", "Calls to external systems", "{call}"); err != nil {
		return nil, err
	}
	if bm.externalTime, err = NewHistogram(meter, "erp.external.duration", "External call latency", "s",
		0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordLogin counts a login attempt. reason is empty on success.
func (bm *BusinessMetrics) RecordLogin(ctx context.Context, success bool, reason string) {
	bm.logins.Inc(ctx, attribute.Bool("success", success), attribute.String("reason", reason))
}

// RecordSyncItem counts one record handled by a sync upsert
func (bm *BusinessMetrics) RecordSyncItem(ctx context.Context, entity, source, outcome string) {
	bm.syncItems.Inc(ctx,
		attribute.String("entity", entity),
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	)
}

// RecordExport counts rows written by a table export
func (bm *BusinessMetrics) RecordExport(ctx context.Context, table, format string, rows int) {
	bm.exportRows.Add(ctx, int64(rows), attribute.String("table", table), attribute.String("format", format))
}

// RecordExternalCall records one request to an external system
func (bm *BusinessMetrics) RecordExternalCall(ctx context.Context, system, operation string, d time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("system", system),
		attribute.String("operation", operation),
		attribute.Bool("error", err != nil),
	}
	bm.externalCalls.Inc(ctx, attrs...)
	bm.externalTime.RecordDuration(ctx, d, attrs...)
}
