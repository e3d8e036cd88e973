package operations

import (
	"time"
)

// operation Step identifiers
const (
	StageIDRoster   = "roster"
	StageIDProfiles = "profiles"
	StageIDRedrive  = "redrive"
	StageIDExport   = "export"
	StageIDTorikumi = "torikumi"
	StageIDAwards   = "awards"
)

// operation Step names
const (
	StageNameRoster   = "Roster Collection"
	StageNameProfiles = "Profile Collection"
	StageNameRedrive  = "Profile Redrive"
	StageNameExport   = "Export"
	StageNameTorikumi = "Torikumi Collection"
	StageNameAwards   = "Awards Collection"
)

// Stage lists of the runs offered by the command line
var (
	DefaultRun  = []string{StageIDRoster, StageIDProfiles, StageIDExport}
	RedriveRun  = []string{StageIDRedrive, StageIDExport}
	TorikumiRun = []string{StageIDTorikumi}
	AwardsRun   = []string{StageIDAwards}
)

// Context keys for operation state
const (
	ContextKeyMode     = "mode"
	ContextKeyRetry    = "retry"
	ContextKeySlots    = "roster_slots"
	ContextKeyProfiles = "profiles"
	ContextKeyLedger   = "error_ledger"
	ContextKeyExport   = "export_result"
	ContextKeyMatchups = "matchups"
	ContextKeyAwards   = "awards"
)

// Default timeouts
const (
	DefaultStageTimeout    = 2 * time.Hour
	DefaultRosterTimeout   = 30 * time.Minute
	DefaultProfileTimeout  = 6 * time.Hour
	DefaultExportTimeout   = 10 * time.Minute
	DefaultTorikumiTimeout = time.Hour
	DefaultAwardsTimeout   = 5 * time.Minute
)

// RetryConfig defines retry behavior for steps
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// NewRetryConfig returns the default retry configuration. Stages retry
// their own navigations, so a failed stage is not run again by default.
func NewRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  1,
		InitialDelay: 5 * time.Second,
		MaxDelay:     time.Minute,
		Multiplier:   2.0,
	}
}

// OperationRequest represents a request to execute a operation
type OperationRequest struct {
	ID string `json:"id"`
	// Mode is the checkpoint mode, "fresh" or "append"
	Mode  string `json:"mode"`
	Retry bool   `json:"retry"`
	// Steps restricts the run to these stage ids. Empty runs every registered stage.
	Steps []string `json:"steps,omitempty"`
}

// OperationResponse represents the response from a operation execution
type OperationResponse struct {
	ID       string               `json:"id"`
	Status   OperationStatusValue `json:"status"`
	Duration time.Duration        `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string               `json:"error,omitempty"`
}
