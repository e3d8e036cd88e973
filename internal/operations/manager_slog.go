package operations

import (
	"context"
	"log/slog"
	"time"
)

// logOperationStart logs the start of a operation execution
func (m *Manager) logOperationStart(ctx context.Context, req OperationRequest) {
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", req.ID),
		slog.String("mode", req.Mode),
		slog.Bool("retry", req.Retry),
		slog.Any("steps", req.Steps))
}

// logOperationComplete logs the completion of a operation execution
func (m *Manager) logOperationComplete(ctx context.Context, operationID string, duration time.Duration, status string) {
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", operationID),
		slog.String("status", status),
		slog.Duration("duration", duration))
}

// logOperationError logs a operation error
func (m *Manager) logOperationError(ctx context.Context, operationID string, err error) {
	m.logger.ErrorContext(ctx, "operation_error",
		slog.String("operation_id", operationID),
		slog.String("error_type", string(GetErrorType(err))),
		slog.String("error", err.Error()))
}

func (m *Manager) logStageStart(ctx context.Context, operationID, stageID string, attempt int) {
	m.logger.InfoContext(ctx, "stage_start",
		slog.String("operation_id", operationID),
		slog.String("stage", stageID),
		slog.Int("attempt", attempt))
}

// logStageComplete logs the attempt's duration with the step summary
func (m *Manager) logStageComplete(ctx context.Context, operationID string, step *StepState, duration time.Duration) {
	m.logger.InfoContext(ctx, "stage_complete",
		slog.String("operation_id", operationID),
		slog.String("stage", step.ID),
		slog.Duration("duration", duration),
		slog.Any("summary", step))
}

// logStageError logs a Step error with its classification
func (m *Manager) logStageError(ctx context.Context, operationID, stageID string, err error) {
	m.logger.ErrorContext(ctx, "stage_error",
		slog.String("operation_id", operationID),
		slog.String("stage", stageID),
		slog.String("error_type", string(GetErrorType(err))),
		slog.Bool("retryable", IsRetryable(err)),
		slog.String("error", err.Error()))
}
