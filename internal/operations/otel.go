package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sumocli/internal/infrastructure"
)

const (
	TracerName = "sumocli/internal/operations"
)

// OperationTracer provides OpenTelemetry instrumentation for operation runs.
// A nil metrics value disables the counters; spans go to the global provider.
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a new operation tracer
func NewOperationTracer(metrics *infrastructure.PipelineMetrics) *OperationTracer {
	return &OperationTracer{
		tracer:  otel.Tracer(TracerName),
		metrics: metrics,
	}
}

// Metrics returns the pipeline counters, possibly nil
func (pt *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return pt.metrics
}

// TraceOperationExecution creates a span for the entire operation execution
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string, req OperationRequest) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("operation.mode", req.Mode),
			attribute.Bool("operation.retry", req.Retry),
			attribute.StringSlice("operation.steps", req.Steps),
		),
	)
}

// TraceStageExecution creates a span for individual Step execution
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stageID string, attempt int) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("operation.stage.%s", stageID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("stage.id", stageID),
			attribute.Int("stage.attempt", attempt),
		),
	)
}

// RecordStageCompletion ends the stage span and records its metrics
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, operationID, stageID string, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("stage.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.type", string(GetErrorType(err))))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	infrastructure.RecordStageMetrics(ctx, pt.metrics, operationID, stageID, duration, err)
}

// RecordOperationCompletion annotates the operation span with the final status
func (pt *OperationTracer) RecordOperationCompletion(span trace.Span, status OperationStatusValue, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.String("operation.status", string(status)),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
