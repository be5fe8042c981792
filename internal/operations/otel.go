package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vaxcli/internal/infrastructure"
)

const (
	TracerName = "vaxcli.operation"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer. A nil tracer falls back to the
// global provider; nil metrics disable metric recording.
func NewOperationTracer(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *OperationTracer {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &OperationTracer{tracer: tracer, metrics: metrics}
}

// Metrics returns the pipeline metrics, possibly nil
func (t *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return t.metrics
}

// TraceRun creates the root span of a run
func (t *OperationTracer) TraceRun(ctx context.Context, state *State) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "operation.run."+state.Report.Command,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.RunID),
			attribute.String("run.command", state.Report.Command),
		),
	)
}

// TraceStep creates a span for one step
func (t *OperationTracer) TraceStep(ctx context.Context, state *State, step Step) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "operation.step."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.RunID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// EndStep closes a step span and records the step metrics
func (t *OperationTracer) EndStep(ctx context.Context, span trace.Span, step Step, duration time.Duration, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	span.End()
	t.metrics.RecordStep(ctx, step.ID(), duration, err)
}
