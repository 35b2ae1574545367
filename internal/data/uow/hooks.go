package uow

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Hooks captures unit-of-work observability events.
type Hooks interface {
	ObserveCommit(status string, rows int, dur time.Duration)
	IncAuditDropped(entries int)
}

type noopHooks struct{}

func (noopHooks) ObserveCommit(string, int, time.Duration) {}
func (noopHooks) IncAuditDropped(int)                      {}

type otelHooks struct {
	commits      metric.Int64Counter
	rows         metric.Int64Counter
	latency      metric.Float64Histogram
	auditDropped metric.Int64Counter
}

// NewOTelHooks creates hooks backed by OpenTelemetry instruments from mp.
// A nil mp uses the global meter provider.
func NewOTelHooks(mp metric.MeterProvider) (Hooks, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)
	commits, err := meter.Int64Counter("uow.commits", metric.WithDescription("Unit of work commits by status"))
	if err != nil {
		return nil, err
	}
	rows, err := meter.Int64Counter("uow.rows_affected", metric.WithDescription("Entity rows written by commits"))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("uow.commit.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	dropped, err := meter.Int64Counter("uow.audit.dropped", metric.WithDescription("Audit entries lost to failed audit writes"))
	if err != nil {
		return nil, err
	}
	return &otelHooks{commits: commits, rows: rows, latency: latency, auditDropped: dropped}, nil
}

func (h *otelHooks) ObserveCommit(status string, rows int, dur time.Duration) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("status", status))
	h.commits.Add(ctx, 1, attrs)
	h.rows.Add(ctx, int64(rows), attrs)
	h.latency.Record(ctx, dur.Seconds(), attrs)
}

func (h *otelHooks) IncAuditDropped(entries int) {
	h.auditDropped.Add(context.Background(), int64(entries))
}
