package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"sumocli/internal/infrastructure"
)

// Manager runs registered steps one after another
type Manager struct {
	steps  []Step
	config *Config
	tracer *OperationTracer
	logger *slog.Logger
}

// NewManager creates a new operation manager
func NewManager(config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{config: config, tracer: tracer, logger: logger}
}

// RegisterStage appends a Step to the run order
func (m *Manager) RegisterStage(step Step) error {
	if step == nil || step.ID() == "" {
		return NewValidationError("", "step must have an id")
	}
	if m.lookup(step.ID()) != nil {
		return NewValidationError(step.ID(), "step already registered")
	}
	m.steps = append(m.steps, step)
	return nil
}

// Steps returns the ids of registered steps in run order
func (m *Manager) Steps() []string {
	ids := make([]string, len(m.steps))
	for i, s := range m.steps {
		ids[i] = s.ID()
	}
	return ids
}

func (m *Manager) lookup(id string) Step {
	for _, s := range m.steps {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Execute runs the requested steps in registration order
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = fmt.Sprintf("operation-%d", time.Now().Unix())
	}

	state := NewOperationState(req.ID)
	if req.Mode != "" {
		state.SetConfig(ContextKeyMode, req.Mode)
	}
	state.SetConfig(ContextKeyRetry, req.Retry)

	steps, err := m.selectSteps(req.Steps)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
		state.Fail(err)
		return m.createResponse(state), err
	}
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID, req)
	defer span.End()

	m.logOperationStart(ctx, req)
	state.Start()

	err = m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(span, state.Status, state.Duration(), err)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
	}
	m.logOperationComplete(ctx, req.ID, state.Duration(), string(state.Status))
	return m.createResponse(state), err
}

// selectSteps keeps registration order whatever order ids come in
func (m *Manager) selectSteps(ids []string) ([]Step, error) {
	if len(ids) == 0 {
		if len(m.steps) == 0 {
			return nil, NewValidationError("", "no steps registered")
		}
		return slices.Clone(m.steps), nil
	}
	for _, id := range ids {
		if m.lookup(id) == nil {
			e := *ErrOperationNotFound
			e.Step = id
			e.Message = "requested step not found"
			return nil, &e
		}
	}
	var out []Step
	for _, s := range m.steps {
		if slices.Contains(ids, s.ID()) {
			out = append(out, s)
		}
	}
	return out, nil
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	var firstErr error
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], "operation cancelled")
			e := NewCancellationError(step.ID())
			e.Cause = err
			return e
		}

		if missing := m.unmetDependency(state, step); missing != "" {
			reason := fmt.Sprintf("dependency %s did not complete", missing)
			state.GetStage(step.ID()).Skip(reason)
			m.logger.WarnContext(ctx, "stage_skipped",
				slog.String("operation_id", state.ID),
				slog.String("stage", step.ID()),
				slog.String("reason", reason))
			continue
		}

		m.logger.InfoContext(ctx, "executing_stage",
			slog.String("operation_id", state.ID),
			slog.String("stage", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(steps)))

		if err := m.executeStage(ctx, state, step); err != nil {
			m.logStageError(ctx, state.ID, step.ID(), err)
			if !m.config.ContinueOnError || GetErrorType(err) == ErrorTypeCancellation {
				m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
				return err
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// unmetDependency returns the first dependency that is part of this run
// and has not completed
func (m *Manager) unmetDependency(state *OperationState, step Step) string {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStage(dep)
		if depState == nil {
			// not requested; the step reads the checkpoint instead
			continue
		}
		if depState.GetStatus() != StepStatusCompleted {
			return dep
		}
	}
	return ""
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

// executeStage executes a single Step with retry logic
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError("step state not found", nil)
	}

	if err := step.Validate(state); err != nil {
		verr := NewValidationError(step.ID(), err.Error())
		verr.Cause = err
		stepState.Fail(verr)
		return verr
	}

	timeout := m.config.GetStageTimeout(step.ID())
	ctx = infrastructure.WithStage(ctx, step.ID())
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	retry := m.config.RetryConfig
	maxAttempts := max(retry.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		stepState.Start()
		m.logStageStart(stageCtx, state.ID, step.ID(), attempt)

		spanCtx, span := m.tracer.TraceStageExecution(stageCtx, state.ID, step.ID(), attempt)
		startTime := time.Now()
		err := step.Execute(spanCtx, state)
		duration := time.Since(startTime)

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				err = NewTimeoutError(step.ID(), timeout.String())
			} else {
				err = ClassifyError(step.ID(), err)
			}
		}
		m.tracer.RecordStageCompletion(spanCtx, span, state.ID, step.ID(), duration, err)
		span.End()

		if err == nil {
			stepState.Complete()
			m.logStageComplete(ctx, state.ID, stepState, duration)
			return nil
		}

		lastErr = err
		if !IsRetryable(err) || attempt >= maxAttempts || stageCtx.Err() != nil {
			break
		}

		delay := m.calculateRetryDelay(attempt, retry)
		m.logger.WarnContext(ctx, "stage_retry",
			slog.String("operation_id", state.ID),
			slog.String("stage", step.ID()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		select {
		case <-time.After(delay):
		case <-stageCtx.Done():
			lastErr = ClassifyError(step.ID(), stageCtx.Err())
			stepState.Fail(lastErr)
			return lastErr
		}
	}

	stepState.Fail(lastErr)
	return lastErr
}

// calculateRetryDelay grows the delay geometrically up to MaxDelay
func (m *Manager) calculateRetryDelay(attempt int, config RetryConfig) time.Duration {
	factor := math.Pow(config.Multiplier, float64(attempt-1))
	delay := time.Duration(float64(config.InitialDelay) * factor)
	if config.MaxDelay > 0 && delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	return delay
}

// createResponse creates a operation response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.Status,
		Duration: state.Duration(),
		Steps:    state.Steps,
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}
