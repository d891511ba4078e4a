package trace

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type usageMetrics struct {
	tokens metric.Int64Counter
	calls  metric.Int64Counter
}

// newUsageMetrics falls back to no-op counters when the meter refuses an
// instrument, so tracking keeps working without a metrics pipeline.
func newUsageMetrics(meterName string) *usageMetrics {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	tokens, err := meter.Int64Counter("agentmem.tokens",
		metric.WithDescription("Tokens accumulated per usage category"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("failed to create token counter, metrics will be disabled", "error", err, "meter", meterName)
		tokens = noop.Int64Counter{}
	}

	calls, err := meter.Int64Counter("agentmem.invocations",
		metric.WithDescription("Traced invocations by type"),
		metric.WithUnit("{calls}"))
	if err != nil {
		slog.Warn("failed to create invocation counter, metrics will be disabled", "error", err, "meter", meterName)
		calls = noop.Int64Counter{}
	}

	return &usageMetrics{
		tokens: tokens,
		calls:  calls,
	}
}

func (m *usageMetrics) recordTokens(ctx context.Context, delta TokenUsage) {
	for kind, n := range delta {
		m.tokens.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
	}
}

func (m *usageMetrics) recordCall(ctx context.Context, entry Entry) {
	m.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", entry.Type),
		attribute.String("source", entry.Source),
	))
}
