// Package telemetry exposes OpenTelemetry metrics for the interview service
// through a Prometheus scrape handler.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"

	"github.com/papercomputeco/interviewer/pkg/upstream"
)

const meterName = "github.com/papercomputeco/interviewer"

// Metrics records provider calls and HTTP requests. Each instance owns its
// own Prometheus registry.
type Metrics struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler

	upstreamRequests metric.Int64Counter
	upstreamDuration metric.Float64Histogram
	httpRequests     metric.Int64Counter
}

func New(serviceName string) (*Metrics, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(semconv.ServiceName(serviceName))
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(meterName)

	upstreamRequests, err := meter.Int64Counter("interviewer.upstream.requests",
		metric.WithDescription("Calls made to external providers, by provider and outcome."),
	)
	if err != nil {
		return nil, err
	}

	upstreamDuration, err := meter.Float64Histogram("interviewer.upstream.duration",
		metric.WithDescription("Latency of external provider calls."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpRequests, err := meter.Int64Counter("interviewer.http.requests",
		metric.WithDescription("HTTP requests served, by route and status."),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		provider:         provider,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		upstreamRequests: upstreamRequests,
		upstreamDuration: upstreamDuration,
		httpRequests:     httpRequests,
	}, nil
}

// RecordUpstream counts one provider call. err classifies the outcome.
func (m *Metrics) RecordUpstream(ctx context.Context, provider string, err error, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome(err)),
	)
	m.upstreamRequests.Add(ctx, 1, attrs)
	m.upstreamDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordRequest counts one served HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int) {
	m.httpRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}

// Handler serves the Prometheus text exposition of the recorded metrics.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

func outcome(err error) string {
	var upErr *upstream.Error
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, upstream.ErrMissingCredential):
		return "unconfigured"
	case errors.As(err, &upErr):
		return "rejected"
	default:
		return "failed"
	}
}
