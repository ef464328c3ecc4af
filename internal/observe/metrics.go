// Package observe holds the OpenTelemetry instruments recorded by the
// extraction chain, the form service and the HTTP layer. A Prometheus
// exporter bridge is installed by InitProvider so the same instruments are
// scraped from /metrics.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "voxform"

// Metrics holds all metric instruments. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// ProviderRequests counts chain attempts by provider, chain and status.
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts failed attempts by provider and chain.
	ProviderErrors metric.Int64Counter

	// ProviderSkips counts providers skipped before an attempt, by provider and reason.
	ProviderSkips metric.Int64Counter

	// ProviderDuration tracks latency of a single provider attempt.
	ProviderDuration metric.Float64Histogram

	// ExtractionDuration tracks a whole chain run.
	ExtractionDuration metric.Float64Histogram

	FormsCompleted metric.Int64Counter

	// ActiveStreams tracks open websocket streams.
	ActiveStreams metric.Int64UpDownCounter

	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets (seconds) cover pattern matching through slow cloud calls.
var latencyBuckets = []float64{
	0.001, 0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ProviderRequests, err = m.Int64Counter("voxform.provider.requests",
		metric.WithDescription("Extraction attempts by provider, chain, and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("voxform.provider.errors",
		metric.WithDescription("Failed extraction attempts by provider and chain."),
	); err != nil {
		return nil, err
	}
	if met.ProviderSkips, err = m.Int64Counter("voxform.provider.skips",
		metric.WithDescription("Providers skipped without an attempt."),
	); err != nil {
		return nil, err
	}
	if met.ProviderDuration, err = m.Float64Histogram("voxform.provider.duration",
		metric.WithDescription("Latency of one provider attempt."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ExtractionDuration, err = m.Float64Histogram("voxform.extraction.duration",
		metric.WithDescription("Latency of a full provider chain run."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FormsCompleted, err = m.Int64Counter("voxform.forms.completed",
		metric.WithDescription("Forms that transitioned to complete."),
	); err != nil {
		return nil, err
	}
	if met.ActiveStreams, err = m.Int64UpDownCounter("voxform.active_streams",
		metric.WithDescription("Open websocket speech streams."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("voxform.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route, and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordAttempt records one provider attempt outcome.
func (m *Metrics) RecordAttempt(ctx context.Context, provider, chain, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("chain", chain),
		attribute.String("status", status),
	)
	m.ProviderRequests.Add(ctx, 1, attrs)
	m.ProviderDuration.Record(ctx, d.Seconds(), attrs)
	if status == "error" {
		m.ProviderErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("chain", chain),
		))
	}
}

// RecordSkip records a provider skipped before any attempt.
func (m *Metrics) RecordSkip(ctx context.Context, provider, chain, reason string) {
	if m == nil {
		return
	}
	m.ProviderSkips.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("chain", chain),
		attribute.String("reason", reason),
	))
}

// RecordExtraction records a complete chain run.
func (m *Metrics) RecordExtraction(ctx context.Context, chain string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.ExtractionDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("chain", chain),
		attribute.Bool("success", success),
	))
}

func (m *Metrics) RecordFormCompleted(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.FormsCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// StreamOpened increments the open stream gauge and returns the matching decrement.
func (m *Metrics) StreamOpened(ctx context.Context) func() {
	if m == nil {
		return func() {}
	}
	m.ActiveStreams.Add(ctx, 1)
	return func() { m.ActiveStreams.Add(context.WithoutCancel(ctx), -1) }
}

func (m *Metrics) RecordHTTP(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}
