// Package observe provides application-wide observability primitives for
// linecue: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all linecue metrics.
const meterName = "github.com/linecue/linecue"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per stage ---

	// EvaluationDuration tracks end-to-end attempt evaluation latency.
	EvaluationDuration metric.Float64Histogram

	// LLMDuration tracks LLM inference latency (remote judge and script parsing).
	LLMDuration metric.Float64Histogram

	// TranscriptionDuration tracks speech-to-text latency per attempt.
	TranscriptionDuration metric.Float64Histogram

	// --- Counters ---

	// Evaluations counts completed evaluations. Use with attributes:
	//   attribute.String("source", "local"|"remote"|"cache"), attribute.Bool("accurate", ...)
	Evaluations metric.Int64Counter

	// PrescreenShortcuts counts attempts resolved by the word-overlap
	// pre-screen without a full evaluation. Use with attribute:
	//   attribute.String("kind", "perfect"|"confident")
	PrescreenShortcuts metric.Int64Counter

	// CacheHits counts evaluation cache hits.
	CacheHits metric.Int64Counter

	// CacheMisses counts evaluation cache misses.
	CacheMisses metric.Int64Counter

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Local
// evaluations land in the sub-millisecond buckets while LLM calls span the
// right tail.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.EvaluationDuration, err = m.Float64Histogram("linecue.evaluation.duration",
		metric.WithDescription("End-to-end latency of attempt evaluation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMDuration, err = m.Float64Histogram("linecue.llm.duration",
		metric.WithDescription("Latency of LLM inference."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionDuration, err = m.Float64Histogram("linecue.transcription.duration",
		metric.WithDescription("Latency of speech-to-text transcription per attempt."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Evaluations, err = m.Int64Counter("linecue.evaluations",
		metric.WithDescription("Total completed evaluations by source and accuracy."),
	); err != nil {
		return nil, err
	}
	if met.PrescreenShortcuts, err = m.Int64Counter("linecue.prescreen.shortcuts",
		metric.WithDescription("Attempts resolved by the word-overlap pre-screen."),
	); err != nil {
		return nil, err
	}
	if met.CacheHits, err = m.Int64Counter("linecue.cache.hits",
		metric.WithDescription("Evaluation cache hits."),
	); err != nil {
		return nil, err
	}
	if met.CacheMisses, err = m.Int64Counter("linecue.cache.misses",
		metric.WithDescription("Evaluation cache misses."),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("linecue.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("linecue.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("linecue.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordEvaluation records a completed evaluation with its source
// ("local", "remote", or "cache") and outcome.
func (m *Metrics) RecordEvaluation(ctx context.Context, source string, accurate bool) {
	m.Evaluations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("source", source),
			attribute.Bool("accurate", accurate),
		),
	)
}

// RecordPrescreenShortcut records an attempt resolved by the pre-screen.
// kind is "perfect" (full word overlap) or "confident" (above the pass
// threshold).
func (m *Metrics) RecordPrescreenShortcut(ctx context.Context, kind string) {
	m.PrescreenShortcuts.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// RecordProviderRequest records a provider request counter increment with the
// standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records a provider error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
