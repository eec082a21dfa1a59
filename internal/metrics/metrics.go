// Package metrics wires OpenTelemetry instruments for the storefront:
// inbound HTTP requests, catalog platform calls, the category cache, and
// order submissions.
package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// Options configures the OTLP exporter.
type Options struct {
	Endpoint       string // host:port, without scheme
	Headers        string // "key1=value1,key2=value2"
	Insecure       bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Interval       time.Duration
}

// Histogram buckets in milliseconds, up to the longest upstream timeout.
var durationBuckets = []float64{2, 5, 10, 25, 50, 100, 200, 400, 800, 1000, 2000, 5000, 10000, 30000}

// Recorder holds the storefront's instruments. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	httpRequests     metric.Int64Counter
	httpDuration     metric.Float64Histogram
	upstreamCalls    metric.Int64Counter
	upstreamDuration metric.Float64Histogram
	cacheLookups     metric.Int64Counter
	orders           metric.Int64Counter
}

// Setup builds a meter provider exporting over OTLP/HTTP, registers it
// globally, and returns a Recorder bound to it. Callers must Shutdown the
// provider on exit to flush the last interval.
func Setup(ctx context.Context, opts Options) (*Recorder, *sdkmetric.MeterProvider, error) {
	envRes, err := resource.New(ctx, resource.WithFromEnv())
	if err != nil {
		envRes = resource.Empty()
	}
	explicitRes, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.ServiceVersion),
			attribute.String("deployment.environment", opts.Environment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating resource: %w", err)
	}
	res, err := resource.Merge(envRes, explicitRes)
	if err != nil {
		return nil, nil, fmt.Errorf("merging resources: %w", err)
	}

	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(opts.Endpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	if headers := parseHeaders(opts.Headers); len(headers) > 0 {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(headers))
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(provider)

	rec, err := New(provider.Meter(opts.ServiceName))
	if err != nil {
		provider.Shutdown(ctx)
		return nil, nil, err
	}
	return rec, provider, nil
}

// NewNoop returns a Recorder backed by the no-op meter.
func NewNoop() *Recorder {
	rec, _ := New(noop.NewMeterProvider().Meter("storefront"))
	return rec
}

// New creates the instruments on meter.
func New(meter metric.Meter) (*Recorder, error) {
	var (
		r   Recorder
		err error
	)

	if r.httpRequests, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("creating http requests counter: %w", err)
	}
	if r.httpDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("creating http duration histogram: %w", err)
	}
	if r.upstreamCalls, err = meter.Int64Counter(
		"storefront.upstream.calls",
		metric.WithDescription("Calls to the catalog platform by operation and outcome"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("creating upstream calls counter: %w", err)
	}
	if r.upstreamDuration, err = meter.Float64Histogram(
		"storefront.upstream.duration",
		metric.WithDescription("Catalog platform call duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("creating upstream duration histogram: %w", err)
	}
	if r.cacheLookups, err = meter.Int64Counter(
		"storefront.cache.lookups",
		metric.WithDescription("Category snapshot cache lookups by result"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("creating cache lookups counter: %w", err)
	}
	if r.orders, err = meter.Int64Counter(
		"storefront.orders",
		metric.WithDescription("Order submissions by outcome"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("creating orders counter: %w", err)
	}

	return &r, nil
}

// HTTPRequest records one served request.
func (r *Recorder) HTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	r.httpRequests.Add(ctx, 1, attrs)
	r.httpDuration.Record(ctx, milliseconds(d), attrs)
}

// UpstreamCall records one catalog platform call. status is the HTTP status,
// or 0 when no response arrived.
func (r *Recorder) UpstreamCall(ctx context.Context, operation string, status int, d time.Duration) {
	if r == nil {
		return
	}
	outcome := "ok"
	switch {
	case status == 0:
		outcome = "transport_error"
	case status >= 400:
		outcome = "platform_error"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
		attribute.Int("http.status_code", status),
	)
	r.upstreamCalls.Add(ctx, 1, attrs)
	r.upstreamDuration.Record(ctx, milliseconds(d), attrs)
}

// CacheLookup records a cache hit or miss.
func (r *Recorder) CacheLookup(ctx context.Context, cache string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache", cache),
		attribute.String("result", result),
	))
}

// Order outcomes.
const (
	OrderPlaced   = "placed"
	OrderRejected = "rejected"
	OrderInvalid  = "invalid"
)

// OrderSubmitted records a checkout submission outcome.
func (r *Recorder) OrderSubmitted(ctx context.Context, outcome, paymentMethod string) {
	if r == nil {
		return
	}
	r.orders.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("payment_method", paymentMethod),
	))
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// parseHeaders parses "key1=value1,key2=value2".
func parseHeaders(s string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers
}
