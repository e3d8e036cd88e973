package operations

import (
	"sync"
	"time"

	"sumocli/internal/checkpoint"
)

// OperationStatusValue represents the overall operation status enum
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// OperationState represents the complete state of a operation execution
type OperationState struct {
	mu sync.RWMutex

	ID        string               `json:"id"`
	Status    OperationStatusValue `json:"status"`
	StartTime time.Time            `json:"start_time"`
	EndTime   *time.Time           `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	// Context passes tables between steps
	Context map[string]interface{} `json:"-"`

	// Config holds the request options
	Config map[string]interface{} `json:"config"`

	Error error `json:"error,omitempty"`
}

// NewOperationState creates a new operation state
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		Context:   make(map[string]interface{}),
		Config:    make(map[string]interface{}),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStage returns the state of a specific Step
func (p *OperationState) GetStage(stageID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stageID]
}

// SetStage updates the state of a specific Step
func (p *OperationState) SetStage(stageID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stageID] = state
}

// GetContext retrieves a value from the operation context
func (p *OperationState) GetContext(key string) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	val, ok := p.Context[key]
	return val, ok
}

// SetContext sets a value in the operation context
func (p *OperationState) SetContext(key string, value interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Context[key] = value
}

// GetConfig retrieves a configuration value
func (p *OperationState) GetConfig(key string) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	val, ok := p.Config[key]
	return val, ok
}

// SetConfig sets a configuration value
func (p *OperationState) SetConfig(key string, value interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Config[key] = value
}

// Mode returns the checkpoint mode requested for the run
func (p *OperationState) Mode() checkpoint.Mode {
	if v, ok := p.GetConfig(ContextKeyMode); ok {
		if s, ok := v.(string); ok && s != "" {
			return checkpoint.Mode(s)
		}
	}
	return checkpoint.ModeFresh
}

// Retry reports whether failed profiles are fetched again within the run
func (p *OperationState) Retry() bool {
	v, _ := p.GetConfig(ContextKeyRetry)
	b, _ := v.(bool)
	return b
}

// ContextValue returns the typed value stored under key
func ContextValue[T any](p *OperationState, key string) (T, bool) {
	var zero T
	v, ok := p.GetContext(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// GetFailedStages returns all failed steps
func (p *OperationState) GetFailedStages() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var failed []*StepState
	for _, step := range p.Steps {
		if step.GetStatus() == StepStatusFailed {
			failed = append(failed, step)
		}
	}
	return failed
}
