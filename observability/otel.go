package observability

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/BaSui01/streamtap/tap"
)

// SpanAdapter exposes an OpenTelemetry span through the minimal surface the
// finalizer writes to.
type SpanAdapter struct {
	span trace.Span
}

// WrapSpan adapts an OpenTelemetry span. The caller keeps ownership of the
// span and still ends it itself.
func WrapSpan(s trace.Span) *SpanAdapter { return &SpanAdapter{span: s} }

// SetAttribute maps the value to the closest OpenTelemetry attribute type;
// anything non-scalar is stringified.
func (a *SpanAdapter) SetAttribute(key string, value any) {
	a.span.SetAttributes(otelAttr(key, value))
}

// SetStatus marks the span Ok or Error.
func (a *SpanAdapter) SetStatus(ok bool, message string) {
	if ok {
		a.span.SetStatus(codes.Ok, "")
		return
	}
	a.span.SetStatus(codes.Error, message)
}

// StartSpan begins an llm.stream client span labeled with the provider and
// returns it alongside an adapter ready for tap.WithSpan. End the span after
// the stream is released.
func StartSpan(ctx context.Context, tracer trace.Tracer, provider string) (context.Context, trace.Span, *SpanAdapter) {
	ctx, span := tracer.Start(ctx, "llm.stream",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(tap.AttrProvider, provider)))
	return ctx, span, WrapSpan(span)
}

func otelAttr(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}

// OTelRecorder implements tap.MetricsRecorder on an OpenTelemetry meter.
// The stream instruments are created eagerly with units and bucket
// boundaries; other names get plain instruments on first use.
type OTelRecorder struct {
	meter      metric.Meter
	mu         sync.RWMutex
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
}

// NewOTelRecorder creates the stream instruments on the given meter.
func NewOTelRecorder(meter metric.Meter) (*OTelRecorder, error) {
	r := &OTelRecorder{
		meter:      meter,
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}

	counters := []struct {
		name string
		desc string
	}{
		{tap.MetricRequests, "Finalized LLM streams"},
		{tap.MetricTokens, "Tokens consumed by LLM streams"},
		{tap.MetricChunks, "Chunks observed across LLM streams"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name,
			metric.WithDescription(c.desc), metric.WithUnit("1"))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", c.name, err)
		}
		r.counters[c.name] = counter
	}

	histograms := []struct {
		name    string
		desc    string
		unit    string
		buckets []float64
	}{
		{tap.MetricDuration, "Wall time of LLM streams", "s",
			[]float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}},
		{tap.MetricCost, "Cost per finalized stream", "USD",
			[]float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5}},
		{tap.MetricTTFT, "Time to first token", "ms",
			[]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000}},
		{tap.MetricTBT, "Mean gap between chunks", "ms",
			[]float64{5, 10, 25, 50, 100, 250, 500, 1000}},
	}
	for _, h := range histograms {
		hist, err := meter.Float64Histogram(h.name,
			metric.WithDescription(h.desc),
			metric.WithUnit(h.unit),
			metric.WithExplicitBucketBoundaries(h.buckets...))
		if err != nil {
			return nil, fmt.Errorf("create histogram %s: %w", h.name, err)
		}
		r.histograms[h.name] = hist
	}
	return r, nil
}

// Add feeds a counter. The finalizer runs outside any request scope, so
// measurements attach to the background context.
func (r *OTelRecorder) Add(name string, value int64, attrs map[string]any) {
	counter, err := r.counter(name)
	if err != nil {
		return
	}
	counter.Add(context.Background(), value, metric.WithAttributes(kvs(attrs)...))
}

// Record feeds a histogram.
func (r *OTelRecorder) Record(name string, value float64, attrs map[string]any) {
	hist, err := r.histogram(name)
	if err != nil {
		return
	}
	hist.Record(context.Background(), value, metric.WithAttributes(kvs(attrs)...))
}

func (r *OTelRecorder) counter(name string) (metric.Int64Counter, error) {
	r.mu.RLock()
	counter, ok := r.counters[name]
	r.mu.RUnlock()
	if ok {
		return counter, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if counter, ok = r.counters[name]; ok {
		return counter, nil
	}
	counter, err := r.meter.Int64Counter(name)
	if err != nil {
		return nil, err
	}
	r.counters[name] = counter
	return counter, nil
}

func (r *OTelRecorder) histogram(name string) (metric.Float64Histogram, error) {
	r.mu.RLock()
	hist, ok := r.histograms[name]
	r.mu.RUnlock()
	if ok {
		return hist, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if hist, ok = r.histograms[name]; ok {
		return hist, nil
	}
	hist, err := r.meter.Float64Histogram(name)
	if err != nil {
		return nil, err
	}
	r.histograms[name] = hist
	return hist, nil
}

func kvs(attrs map[string]any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		out = append(out, otelAttr(k, v))
	}
	return out
}
