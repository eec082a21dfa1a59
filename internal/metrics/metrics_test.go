package metrics

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestRecorder(t *testing.T) (*Recorder, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	rec, err := New(provider.Meter("test"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return rec, reader
}

// counterTotal sums every data point of the named int64 counter.
func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string, filter attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(filter.Key); ok && v == filter.Value {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestCacheLookup(t *testing.T) {
	rec, reader := newTestRecorder(t)
	ctx := context.Background()

	rec.CacheLookup(ctx, "categories", true)
	rec.CacheLookup(ctx, "categories", true)
	rec.CacheLookup(ctx, "categories", false)

	if got := counterTotal(t, reader, "storefront.cache.lookups", attribute.String("result", "hit")); got != 2 {
		t.Errorf("hits = %d, want 2", got)
	}
	if got := counterTotal(t, reader, "storefront.cache.lookups", attribute.String("result", "miss")); got != 1 {
		t.Errorf("misses = %d, want 1", got)
	}
}

func TestUpstreamCallOutcome(t *testing.T) {
	rec, reader := newTestRecorder(t)
	ctx := context.Background()

	rec.UpstreamCall(ctx, "list_products", 200, 15*time.Millisecond)
	rec.UpstreamCall(ctx, "list_products", 500, 20*time.Millisecond)
	rec.UpstreamCall(ctx, "list_products", 0, time.Second)

	tests := map[string]int64{"ok": 1, "platform_error": 1, "transport_error": 1}
	for outcome, want := range tests {
		got := counterTotal(t, reader, "storefront.upstream.calls", attribute.String("outcome", outcome))
		if got != want {
			t.Errorf("outcome %s = %d, want %d", outcome, got, want)
		}
	}
}

func TestOrderSubmitted(t *testing.T) {
	rec, reader := newTestRecorder(t)

	rec.OrderSubmitted(context.Background(), OrderPlaced, "cod")

	if got := counterTotal(t, reader, "storefront.orders", attribute.String("outcome", OrderPlaced)); got != 1 {
		t.Errorf("placed orders = %d, want 1", got)
	}
}

func TestNilRecorder(t *testing.T) {
	var rec *Recorder
	ctx := context.Background()

	// Must not panic.
	rec.HTTPRequest(ctx, "GET", "/health", 200, time.Millisecond)
	rec.UpstreamCall(ctx, "list_products", 200, time.Millisecond)
	rec.CacheLookup(ctx, "categories", true)
	rec.OrderSubmitted(ctx, OrderPlaced, "cod")
}

func TestNewNoop(t *testing.T) {
	if NewNoop() == nil {
		t.Fatal("NewNoop() returned nil")
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders("signoz-ingestion-key=abc, x-team = web ,broken")
	if len(got) != 2 {
		t.Fatalf("parseHeaders() = %v, want 2 entries", got)
	}
	if got["signoz-ingestion-key"] != "abc" || got["x-team"] != "web" {
		t.Errorf("parseHeaders() = %v", got)
	}
	if len(parseHeaders("")) != 0 {
		t.Error("parseHeaders(\"\") should be empty")
	}
}
