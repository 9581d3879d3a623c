package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EngineMetrics holds the itinerary engine instruments. A nil *EngineMetrics
// records nothing.
type EngineMetrics struct {
	generateDuration metric.Float64Histogram
	generateTotal    metric.Int64Counter
	emptyPoolTotal   metric.Int64Counter
	optimizeTotal    metric.Int64Counter
	diagnosticsTotal metric.Int64Counter
}

// NewEngineMetrics creates the engine instruments on the given meter.
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	generateDuration, err := meter.Float64Histogram(
		"itinerary.generate.duration",
		metric.WithDescription("Duration of itinerary generation in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	generateTotal, err := meter.Int64Counter(
		"itinerary.generate.total",
		metric.WithDescription("Total number of generate calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	emptyPoolTotal, err := meter.Int64Counter(
		"itinerary.generate.empty_pool",
		metric.WithDescription("Generate calls that found no candidates"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	optimizeTotal, err := meter.Int64Counter(
		"itinerary.optimize.total",
		metric.WithDescription("Total number of optimize calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	diagnosticsTotal, err := meter.Int64Counter(
		"itinerary.diagnostics.total",
		metric.WithDescription("Diagnostics attached to produced itineraries"),
		metric.WithUnit("{diagnostic}"),
	)
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		generateDuration: generateDuration,
		generateTotal:    generateTotal,
		emptyPoolTotal:   emptyPoolTotal,
		optimizeTotal:    optimizeTotal,
		diagnosticsTotal: diagnosticsTotal,
	}, nil
}

// RecordGenerate records one generate call.
func (m *EngineMetrics) RecordGenerate(ctx context.Context, city string, results int, took time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("city", city))
	m.generateDuration.Record(ctx, took.Seconds(), attrs)
	m.generateTotal.Add(ctx, 1, attrs)
	if results == 0 {
		m.emptyPoolTotal.Add(ctx, 1, attrs)
	}
}

// RecordOptimize records one optimize call.
func (m *EngineMetrics) RecordOptimize(ctx context.Context, criterion string, changed, applied bool) {
	if m == nil {
		return
	}
	m.optimizeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("criterion", criterion),
		attribute.Bool("changed", changed),
		attribute.Bool("applied", applied),
	))
}

// RecordDiagnostic records one diagnostic by code.
func (m *EngineMetrics) RecordDiagnostic(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.diagnosticsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}
