package model

import "time"

// Status is the outcome of a step, job, or stage after execution
// (spec.md §3 "Status"/§4.6 "Collect Results").
type Status string

// Status values. Aggregate rolls children up with the priority Failed >
// Canceled > SucceededWithIssues > Succeeded; Skipped results only when
// every child is Skipped (spec.md §4.6).
const (
	StatusSuccess            Status = "Succeeded"
	StatusSucceededWithIssues Status = "SucceededWithIssues"
	StatusFailed             Status = "Failed"
	StatusCanceled           Status = "Canceled"
	StatusSkipped            Status = "Skipped"
)

// StepResult is the outcome of one executed (or skipped) step.
type StepResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	ExitCode  int           `json:"exitCode"`
	Output    string        `json:"output,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// JobResult is the outcome of one executed (or skipped) job, including
// every matrix/parallel instance it expanded into.
type JobResult struct {
	ID        string                 `json:"id"`
	Instances []*JobInstanceResult   `json:"instances"`
}

// JobInstanceResult is a single matrix/parallel instance of a job (the
// job itself, when it has no strategy).
type JobInstanceResult struct {
	InstanceName string            `json:"instanceName"`
	Status       Status            `json:"status"`
	StartedAt    time.Time         `json:"startedAt"`
	Duration     time.Duration     `json:"duration"`
	Steps        []*StepResult     `json:"steps"`
	Outputs      map[string]string `json:"outputs,omitempty"`
}

// StageResult is the outcome of one executed (or skipped) stage.
type StageResult struct {
	ID     string                 `json:"id"`
	Status Status                 `json:"status"`
	Jobs   map[string]*JobResult  `json:"jobs"`
}

// ExecutionResult is the root result produced by phase (F) Collect
// Results, covering every stage the run's graph declared.
type ExecutionResult struct {
	Status    Status                  `json:"status"`
	Stages    map[string]*StageResult `json:"stages"`
	StartedAt time.Time               `json:"startedAt"`
	Duration  time.Duration           `json:"duration"`

	// Variables holds the root scope's variable values as they stood at
	// the end of the run, pipeline-level vars overlaid with any values
	// runtime logging commands promoted at that scope (spec.md §4.5.2).
	Variables map[string]string `json:"variables,omitempty"`
}

// Aggregate folds a set of child statuses into the single status their
// parent should report (spec.md §4.6 "Status aggregation").
func Aggregate(children []Status) Status {
	if len(children) == 0 {
		return StatusSkipped
	}
	sawFailed := false
	sawCanceled := false
	sawIssues := false
	allSkipped := true
	for _, c := range children {
		if c != StatusSkipped {
			allSkipped = false
		}
		switch c {
		case StatusFailed:
			sawFailed = true
		case StatusCanceled:
			sawCanceled = true
		case StatusSucceededWithIssues:
			sawIssues = true
		}
	}
	switch {
	case allSkipped:
		return StatusSkipped
	case sawFailed:
		return StatusFailed
	case sawCanceled:
		return StatusCanceled
	case sawIssues:
		return StatusSucceededWithIssues
	default:
		return StatusSuccess
	}
}
