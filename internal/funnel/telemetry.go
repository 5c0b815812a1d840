package funnel

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/joelkehle/kmatch/internal/funnel")

// InitTelemetry wires a real OTLP/HTTP trace exporter when
// OTEL_EXPORTER_OTLP_ENDPOINT is set, otherwise leaves the global
// no-op tracer provider in place (spec.md §5 has no opinion on
// observability; this is ambient-stack wiring per SPEC_FULL.md's domain
// stack table). The returned shutdown func must be called before process
// exit to flush pending spans.
func InitTelemetry(ctx context.Context) (shutdown func(context.Context) error, err error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName("kmatch-funnel"),
	))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// runSpan starts the per-funnel-run span the orchestrator wraps its work
// in, and returns a recorder for gate-block reason counts that attaches
// them as span attributes on End.
func runSpan(ctx context.Context, orgID string, programCount int) (context.Context, *blockReasonRecorder) {
	ctx, span := tracer.Start(ctx, "funnel.generate_matches", trace.WithAttributes(
		attribute.String("kmatch.organization_id", orgID),
		attribute.Int("kmatch.program_count", programCount),
	))
	return ctx, &blockReasonRecorder{span: span, counts: make(map[string]int)}
}

type blockReasonRecorder struct {
	span   trace.Span
	counts map[string]int
}

func (r *blockReasonRecorder) record(reasons []string) {
	for _, reason := range reasons {
		r.counts[reason]++
	}
}

func (r *blockReasonRecorder) end(processed, passed, aboveThreshold int) {
	r.span.SetAttributes(
		attribute.Int("kmatch.processed", processed),
		attribute.Int("kmatch.gate_passed", passed),
		attribute.Int("kmatch.above_threshold", aboveThreshold),
	)
	for reason, count := range r.counts {
		r.span.AddEvent("gate_block", trace.WithAttributes(
			attribute.String("reason", reason),
			attribute.Int("count", count),
		))
	}
	r.span.End()
}
