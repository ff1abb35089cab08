package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	prometheusexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	// MeterScope is the instrumentation scope for all service instruments.
	MeterScope         = "github.com/kamtechie/zenji/internal/observability"
	defaultServiceName = "zenji"
	cardinalityLimit   = 2000
)

// latencyHistogramBoundaries are Prometheus-style buckets (seconds). Chat turns include two
// upstream calls, so the tail extends further than a plain CRUD API would need.
var latencyHistogramBoundaries = []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30}

// retrievedDocumentBoundaries bucket the number of excerpts returned per retrieval.
var retrievedDocumentBoundaries = []float64{0, 1, 2, 3, 4, 5}

// ChatMetrics is the single metrics interface for the chat service (HTTP, turns, upstream calls).
type ChatMetrics interface {
	RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration)
	RecordChatTurn(ctx context.Context, outcome string, duration time.Duration)
	RecordRetrievedDocuments(ctx context.Context, count int)
	RecordOpenAICall(ctx context.Context, operation string, err error, duration time.Duration)
}

// MeterProviderConfig holds configuration for creating the MeterProvider and metrics.
type MeterProviderConfig struct {
	// ServiceName is used in the resource (default: zenji).
	ServiceName string
}

// NewMeterProvider creates a MeterProvider with Prometheus exporter and returns the provider,
// an HTTP handler for /metrics, and ChatMetrics that use the provider's Meter.
// Caller must call provider.Shutdown on exit. When metrics are disabled, pass nil for metrics at call sites.
func NewMeterProvider(_ context.Context, cfg MeterProviderConfig) (*sdkmetric.MeterProvider, http.Handler, ChatMetrics, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	// Use a single resource to avoid Schema URL conflicts when merging with resource.Default().
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)

	reg := prometheus.NewRegistry()

	exporter, err := prometheusexporter.New(
		prometheusexporter.WithRegisterer(reg),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	latencyView := func(name string) sdkmetric.View {
		return sdkmetric.NewView(
			sdkmetric.Instrument{Name: name},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: latencyHistogramBoundaries}},
		)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
		sdkmetric.WithCardinalityLimit(cardinalityLimit),
		sdkmetric.WithView(
			latencyView(MetricNameRequestDuration),
			latencyView(MetricNameChatTurnDuration),
			latencyView(MetricNameOpenAICallDuration),
			sdkmetric.NewView(
				sdkmetric.Instrument{Name: MetricNameRetrievedDocuments},
				sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: retrievedDocumentBoundaries}},
			),
		),
	)

	metrics, err := newMetricsFromMeter(mp.Meter(MeterScope))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create metrics instruments: %w", err)
	}

	return mp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics, nil
}

// ShutdownMeterProvider flushes and shuts down the MeterProvider. Safe to call with nil.
func ShutdownMeterProvider(ctx context.Context, provider *sdkmetric.MeterProvider) error {
	if provider == nil {
		return nil
	}

	if err := provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("meter provider shutdown: %w", err)
	}

	return nil
}

func newMetricsFromMeter(meter metric.Meter) (*chatMetricsImpl, error) {
	requestCount, err := meter.Int64Counter(
		MetricNameRequestCount,
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MetricNameRequestCount, err)
	}

	requestDuration, err := meter.Float64Histogram(
		MetricNameRequestDuration,
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MetricNameRequestDuration, err)
	}

	chatTurns, err := meter.Int64Counter(
		MetricNameChatTurns,
		metric.WithDescription("Chat turns by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MetricNameChatTurns, err)
	}

	chatTurnDuration, err := meter.Float64Histogram(
		MetricNameChatTurnDuration,
		metric.WithDescription("Chat turn duration in seconds, retrieval plus completion"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MetricNameChatTurnDuration, err)
	}

	retrieved, err := meter.Int64Histogram(
		MetricNameRetrievedDocuments,
		metric.WithDescription("Remedy excerpts returned per retrieval"),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MetricNameRetrievedDocuments, err)
	}

	openAICalls, err := meter.Int64Counter(
		MetricNameOpenAICalls,
		metric.WithDescription("OpenAI API calls by operation and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MetricNameOpenAICalls, err)
	}

	openAICallDuration, err := meter.Float64Histogram(
		MetricNameOpenAICallDuration,
		metric.WithDescription("OpenAI API call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MetricNameOpenAICallDuration, err)
	}

	return &chatMetricsImpl{
		requestCount:       requestCount,
		requestDuration:    requestDuration,
		chatTurns:          chatTurns,
		chatTurnDuration:   chatTurnDuration,
		retrievedDocuments: retrieved,
		openAICalls:        openAICalls,
		openAICallDuration: openAICallDuration,
	}, nil
}

type chatMetricsImpl struct {
	requestCount       metric.Int64Counter
	requestDuration    metric.Float64Histogram
	chatTurns          metric.Int64Counter
	chatTurnDuration   metric.Float64Histogram
	retrievedDocuments metric.Int64Histogram
	openAICalls        metric.Int64Counter
	openAICallDuration metric.Float64Histogram
}

func (m *chatMetricsImpl) RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration) {
	attrs := attribute.NewSet(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status_class", statusClass),
	)
	m.requestCount.Add(ctx, 1, metric.WithAttributeSet(attrs))

	durAttrs := attribute.NewSet(
		attribute.String("method", method),
		attribute.String("route", route),
	)
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributeSet(durAttrs))
}

func (m *chatMetricsImpl) RecordChatTurn(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(AttrOutcome, NormalizeOutcome(outcome)))
	m.chatTurns.Add(ctx, 1, attrs)
	m.chatTurnDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m *chatMetricsImpl) RecordRetrievedDocuments(ctx context.Context, count int) {
	m.retrievedDocuments.Record(ctx, int64(count))
}

func (m *chatMetricsImpl) RecordOpenAICall(ctx context.Context, operation string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}

	attrs := metric.WithAttributes(
		attribute.String(AttrOperation, NormalizeOperation(operation)),
		attribute.String(AttrOutcome, outcome),
	)
	m.openAICalls.Add(ctx, 1, attrs)
	m.openAICallDuration.Record(ctx, duration.Seconds(), attrs)
}
