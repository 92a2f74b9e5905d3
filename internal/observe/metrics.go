// Package observe provides observability primitives for the dictato server:
// OpenTelemetry metrics, tracing helpers, and HTTP middleware that ties them
// together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
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

// meterName is the instrumentation scope name used for all dictato metrics.
const meterName = "github.com/mkarren/dictato"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// RewriteDuration tracks how long one dictionary application takes.
	RewriteDuration metric.Float64Histogram

	// Rewrites counts rewrite calls. Use with attribute:
	//   attribute.String("source", ...) — "api", "test", etc.
	Rewrites metric.Int64Counter

	// Replacements counts individual substitutions applied across all
	// rewrites.
	Replacements metric.Int64Counter

	// RuleReloads counts dictionary swaps. Use with attribute:
	//   attribute.String("trigger", ...) — "api", "watcher", "startup".
	RuleReloads metric.Int64Counter

	// RuleErrors counts rejected dictionary updates (syntax or validation).
	RuleErrors metric.Int64Counter

	// ActiveRules tracks the rule count of the currently active dictionary.
	ActiveRules metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Rewrites
// of a single utterance are fast, so the buckets skew small.
var latencyBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.RewriteDuration, err = m.Float64Histogram("dictato.rewrite.duration",
		metric.WithDescription("Latency of one dictionary application."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Rewrites, err = m.Int64Counter("dictato.rewrite.total",
		metric.WithDescription("Total rewrite calls by source."),
	); err != nil {
		return nil, err
	}
	if met.Replacements, err = m.Int64Counter("dictato.rewrite.replacements",
		metric.WithDescription("Total substitutions applied across all rewrites."),
	); err != nil {
		return nil, err
	}
	if met.RuleReloads, err = m.Int64Counter("dictato.rules.reloads",
		metric.WithDescription("Total dictionary reloads by trigger."),
	); err != nil {
		return nil, err
	}
	if met.RuleErrors, err = m.Int64Counter("dictato.rules.errors",
		metric.WithDescription("Total rejected dictionary updates."),
	); err != nil {
		return nil, err
	}
	if met.ActiveRules, err = m.Int64UpDownCounter("dictato.rules.active",
		metric.WithDescription("Rule count of the active dictionary."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("dictato.http.request.duration",
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

// RecordRewrite records one rewrite call: its duration, the number of
// substitutions it applied, and the source that requested it.
func (m *Metrics) RecordRewrite(ctx context.Context, source string, seconds float64, replacements int) {
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.RewriteDuration.Record(ctx, seconds, attrs)
	m.Rewrites.Add(ctx, 1, attrs)
	if replacements > 0 {
		m.Replacements.Add(ctx, int64(replacements), attrs)
	}
}

// RecordRuleReload records a dictionary swap and adjusts the active rule
// gauge by the difference between the new and previous rule counts.
func (m *Metrics) RecordRuleReload(ctx context.Context, trigger string, oldCount, newCount int) {
	m.RuleReloads.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
	if delta := int64(newCount - oldCount); delta != 0 {
		m.ActiveRules.Add(ctx, delta)
	}
}

// RecordRuleError records a rejected dictionary update.
func (m *Metrics) RecordRuleError(ctx context.Context, trigger string) {
	m.RuleErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
}
