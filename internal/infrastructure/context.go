package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey int

const (
	runIDKey contextKey = iota
	stageKey
)

// NewRunID returns a UUID v4 identifying one CLI invocation
func NewRunID() string {
	return uuid.New().String()
}

func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// EnsureRunID keeps a run id already on ctx and otherwise attaches a new one
func EnsureRunID(ctx context.Context) (context.Context, string) {
	if id := RunID(ctx); id != "" {
		return ctx, id
	}
	id := NewRunID()
	return WithRunID(ctx, id), id
}

// WithStage names the stage whose work ctx carries
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

func Stage(ctx context.Context) string {
	stage, _ := ctx.Value(stageKey).(string)
	return stage
}

func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithError is a no-op for a nil err
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With("error", err.Error())
}
