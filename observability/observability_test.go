package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/restdemo/component"
	"github.com/kbukum/restdemo/errors"
)

func installRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.Enabled {
		t.Error("expected tracing disabled by default")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestConfig_ApplyDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Tracing.Endpoint != "localhost:4318" || cfg.Metrics.Endpoint != "localhost:4318" {
		t.Errorf("expected default endpoints, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := Config{Tracing: TracerConfig{Enabled: true, SampleRate: 2}}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for sample rate above 1 and missing endpoint")
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, sdktrace.AlwaysSample().Description()},
		{5.0, sdktrace.AlwaysSample().Description()},
		{0, sdktrace.NeverSample().Description()},
		{-1, sdktrace.NeverSample().Description()},
		{0.5, sdktrace.TraceIDRatioBased(0.5).Description()},
	}
	for _, tc := range tests {
		if got := sampler(tc.rate).Description(); got != tc.want {
			t.Errorf("sampler(%v) = %s, want %s", tc.rate, got, tc.want)
		}
	}
}

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, "restdemo", "dev", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected non-nil shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("restdemo", "1.2.3", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	attrs := attrMap(res.Attributes())
	if attrs[AttrServiceName].AsString() != "restdemo" {
		t.Errorf("expected service.name restdemo, got %v", attrs[AttrServiceName])
	}
	if attrs["service.version"].AsString() != "1.2.3" {
		t.Errorf("expected service.version 1.2.3, got %v", attrs["service.version"])
	}
}

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	if metrics == nil {
		t.Fatal("expected non-nil metrics")
	}

	ctx := context.Background()
	metrics.RecordOperationStart(ctx)
	metrics.RecordOperation(ctx, "svc", "read", StatusOK, 50*time.Millisecond)
	metrics.RecordError(ctx, "TRANSPORT_ERROR", "read")
}

func TestMetrics_RecordOperation_Collected(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	metrics.RecordOperationStart(ctx)
	metrics.RecordOperation(ctx, "restdemo", "read", StatusOK, 10*time.Millisecond)
	metrics.RecordOperationStart(ctx)
	metrics.RecordOperation(ctx, "restdemo", "read", StatusOK, 20*time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "operation.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			if total != 2 {
				t.Errorf("expected 2 operations, got %d", total)
			}
			found = true
		}
	}
	if !found {
		t.Error("operation.total not collected")
	}
}

func TestNewOperationContext(t *testing.T) {
	oc := NewOperationContext("restdemo", "read", "req-1", nil)

	if oc.ServiceName != "restdemo" {
		t.Errorf("expected ServiceName 'restdemo', got %s", oc.ServiceName)
	}
	if oc.OperationName != "read" {
		t.Errorf("expected OperationName 'read', got %s", oc.OperationName)
	}
	if oc.RequestID != "req-1" {
		t.Errorf("expected RequestID 'req-1', got %s", oc.RequestID)
	}
	if oc.StartTime.IsZero() {
		t.Error("expected StartTime to be set")
	}
}

func TestOperationContextFromContext(t *testing.T) {
	oc := NewOperationContext("restdemo", "read", "req-1", nil)
	ctx := WithOperationContext(context.Background(), oc)

	if got := OperationContextFromContext(ctx); got != oc {
		t.Fatal("expected operation context from context")
	}
	if OperationContextFromContext(context.Background()) != nil {
		t.Error("expected nil when operation context not set")
	}
}

func TestOperationContext_Duration(t *testing.T) {
	oc := NewOperationContext("restdemo", "read", "", nil)
	oc.StartTime = time.Now().Add(-50 * time.Millisecond)

	duration := oc.Duration()
	if duration < 45*time.Millisecond || duration > 200*time.Millisecond {
		t.Errorf("expected duration around 50ms, got %v", duration)
	}
}

func TestOperationContext_SpanSuccess(t *testing.T) {
	exporter := installRecorder(t)

	oc := NewOperationContext("restdemo", "read", "req-1", nil)
	ctx, span := oc.StartSpanForOperation(context.Background(), "resource.read")
	if OperationContextFromContext(ctx) != oc {
		t.Error("expected span context to carry the operation context")
	}
	oc.EndOperation(ctx, span, nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name != "resource.read" {
		t.Errorf("expected span name resource.read, got %s", s.Name)
	}
	attrs := attrMap(s.Attributes)
	if attrs[AttrStatus].AsString() != StatusOK {
		t.Errorf("expected status ok, got %v", attrs[AttrStatus])
	}
	if attrs[AttrRequestID].AsString() != "req-1" {
		t.Errorf("expected request id, got %v", attrs[AttrRequestID])
	}
	if s.Status.Code == codes.Error {
		t.Error("expected non-error span status")
	}
}

func TestOperationContext_SpanError(t *testing.T) {
	exporter := installRecorder(t)

	metrics, _ := NewMetrics(noop.NewMeterProvider().Meter("test"))
	oc := NewOperationContext("restdemo", "remove", "", metrics)
	ctx, span := oc.StartSpanForOperation(context.Background(), "resource.remove")
	oc.EndOperation(ctx, span, errors.RequestFailed("DELETE", "http://x/posts/1", 404))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status.Code)
	}
	attrs := attrMap(s.Attributes)
	if attrs[AttrErrorCode].AsString() != string(errors.ErrCodeRequestFailed) {
		t.Errorf("expected error.code REQUEST_FAILED, got %v", attrs[AttrErrorCode])
	}
	if _, ok := attrs[AttrRequestID]; ok {
		t.Error("expected no request id attribute when empty")
	}
	if len(s.Events) == 0 {
		t.Error("expected the error to be recorded as a span event")
	}
}

func TestErrorCode(t *testing.T) {
	if got := errorCode(errors.Decode(nil)); got != "DECODE_ERROR" {
		t.Errorf("expected DECODE_ERROR, got %s", got)
	}
	if got := errorCode(fmt.Errorf("plain")); got != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", got)
	}
}

func TestSetSpanAttribute(t *testing.T) {
	exporter := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "test-attrs")
	SetSpanAttribute(ctx, "string-key", "value")
	SetSpanAttribute(ctx, "int-key", 42)
	SetSpanAttribute(ctx, "int64-key", int64(100))
	SetSpanAttribute(ctx, "float-key", 3.14)
	SetSpanAttribute(ctx, "bool-key", true)
	SetSpanAttribute(ctx, "string-slice-key", []string{"a", "b"})
	SetSpanAttribute(ctx, "unsupported-key", struct{}{})
	span.End()

	attrs := attrMap(exporter.GetSpans()[0].Attributes)
	if len(attrs) != 6 {
		t.Errorf("expected 6 attributes, got %d: %v", len(attrs), attrs)
	}
	if attrs["int-key"].AsInt64() != 42 {
		t.Errorf("expected int-key 42, got %v", attrs["int-key"])
	}
}

func TestSetSpanAttributeNoSpan(t *testing.T) {
	SetSpanAttribute(context.Background(), "key", "value")
}

func TestSetSpanError(t *testing.T) {
	exporter := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "test-error")
	SetSpanError(ctx, fmt.Errorf("test error"))
	span.End()

	if len(exporter.GetSpans()[0].Events) != 1 {
		t.Error("expected one error event")
	}
}

func TestSetSpanErrorNoSpan(t *testing.T) {
	SetSpanError(context.Background(), fmt.Errorf("no span error"))
}

func TestTracerAndMeter(t *testing.T) {
	if Tracer("test-tracer") == nil {
		t.Fatal("expected non-nil tracer")
	}
	if Meter("test-meter") == nil {
		t.Fatal("expected non-nil meter")
	}
}

func TestInitTracer(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	cfg := DefaultTracerConfig("test-service")
	tp, err := InitTracer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = tp.Shutdown(ctx)
}

func TestInitMeter(t *testing.T) {
	prev := otel.GetMeterProvider()
	defer otel.SetMeterProvider(prev)

	cfg := DefaultMeterConfig("test-service")
	mp, err := InitMeter(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = mp.Shutdown(ctx)
}

func TestServiceHealth_AddComponent(t *testing.T) {
	tests := []struct {
		name    string
		reports []component.HealthStatus
		want    component.HealthStatus
		healthy bool
	}{
		{"no components", nil, component.StatusHealthy, true},
		{"all healthy", []component.HealthStatus{component.StatusHealthy, component.StatusHealthy}, component.StatusHealthy, true},
		{"degraded", []component.HealthStatus{component.StatusHealthy, component.StatusDegraded}, component.StatusDegraded, true},
		{"unhealthy wins", []component.HealthStatus{component.StatusUnhealthy, component.StatusDegraded}, component.StatusUnhealthy, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sh := NewServiceHealth("mockapi", "dev")
			for i, s := range tc.reports {
				sh.AddComponent(component.Health{Name: fmt.Sprintf("c%d", i), Status: s})
			}
			if sh.Status != tc.want {
				t.Errorf("Status = %q, want %q", sh.Status, tc.want)
			}
			if sh.Healthy() != tc.healthy {
				t.Errorf("Healthy() = %v, want %v", sh.Healthy(), tc.healthy)
			}
			if len(sh.Components) != len(tc.reports) {
				t.Errorf("Components = %d, want %d", len(sh.Components), len(tc.reports))
			}
		})
	}
}
