package treeview

import "github.com/roxid-ci/roxid/style"

// Status represents the execution status of a node.
type Status int

// Status constants.
const (
	StatusPending Status = iota
	StatusRunning
	StatusPassed
	StatusFailed
	StatusSkipped
	StatusConditional
)

// String returns a colored string representation of the Status for display.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return style.Gray("●")
	case StatusRunning:
		return style.BrightOrange("●")
	case StatusPassed:
		return style.BrightGreen("✓")
	case StatusFailed:
		return style.BrightRed("✗")
	case StatusSkipped:
		return style.BrightYellow("⊘")
	case StatusConditional:
		return style.Gray("●")
	default:
	}
	return ""
}

// Label returns a lowercase readable label for the Status (for logging/serialization).
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusConditional:
		return "conditional"
	default:
		return "unknown"
	}
}
