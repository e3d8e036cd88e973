package operations

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
)

// Step is one unit of a run: roster, profiles, redrive, export, torikumi
// or awards.
type Step interface {
	ID() string
	Name() string
	Execute(ctx context.Context, state *OperationState) error
	// Validate reports whether the inputs the step reads are in place
	Validate(state *OperationState) error
	// GetDependencies lists steps that must finish first when they are
	// part of the same run
	GetDependencies() []string
}

// StepStatus represents the current status of a Step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState tracks a step across its attempts. Counts and Notes carry what
// the step produced (slots collected, profiles fetched, ledger size) and are
// logged with stage_complete.
type StepState struct {
	mu        sync.RWMutex
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Status    StepStatus        `json:"status"`
	StartTime *time.Time        `json:"start_time,omitempty"`
	EndTime   *time.Time        `json:"end_time,omitempty"`
	Message   string            `json:"message,omitempty"`
	Error     error             `json:"error,omitempty"`
	Attempts  int               `json:"attempts"`
	Counts    map[string]int    `json:"counts,omitempty"`
	Notes     map[string]string `json:"notes,omitempty"`
}

func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:     id,
		Name:   name,
		Status: StepStatusPending,
		Counts: make(map[string]int),
		Notes:  make(map[string]string),
	}
}

// Start begins an attempt. The start time is kept from the first attempt so
// Duration spans retries and their delays.
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.StartTime == nil {
		now := time.Now()
		s.StartTime = &now
	}
	s.Status = StepStatusActive
	s.Error = nil
	s.Attempts++
}

func (s *StepState) Complete() {
	s.finish(StepStatusCompleted, nil, "")
}

func (s *StepState) Fail(err error) {
	s.finish(StepStatusFailed, err, "")
}

// Skip records why a step never ran
func (s *StepState) Skip(reason string) {
	s.finish(StepStatusSkipped, nil, reason)
}

func (s *StepState) finish(status StepStatus, err error, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = status
	s.Error = err
	if message != "" {
		s.Message = message
	}
}

// SetCount overwrites a counter; a retried attempt reports its own totals
func (s *StepState) SetCount(key string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Counts[key] = n
}

func (s *StepState) SetNote(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notes[key] = value
}

func (s *StepState) Count(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Counts[key]
}

func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// LogValue groups attempts, counts and notes under one attribute
func (s *StepState) LogValue() slog.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attrs := []slog.Attr{
		slog.String("status", string(s.Status)),
		slog.Int("attempts", s.Attempts),
	}
	for _, k := range slices.Sorted(maps.Keys(s.Counts)) {
		attrs = append(attrs, slog.Int(k, s.Counts[k]))
	}
	for _, k := range slices.Sorted(maps.Keys(s.Notes)) {
		attrs = append(attrs, slog.String(k, s.Notes[k]))
	}
	if s.Message != "" {
		attrs = append(attrs, slog.String("message", s.Message))
	}
	return slog.GroupValue(attrs...)
}

// BaseStage carries the identity and dependencies every stage shares
type BaseStage struct {
	id           string
	name         string
	dependencies []string
}

func NewBaseStage(id, name string, dependencies []string) BaseStage {
	if dependencies == nil {
		dependencies = []string{}
	}
	return BaseStage{
		id:           id,
		name:         name,
		dependencies: dependencies,
	}
}

func (b *BaseStage) ID() string {
	return b.id
}

func (b *BaseStage) Name() string {
	return b.name
}

func (b *BaseStage) GetDependencies() []string {
	return b.dependencies
}

// Validate accepts any state; stages that read files override it
func (b *BaseStage) Validate(state *OperationState) error {
	return nil
}
