package testharness

import "io"

// TestOutcome is one test's recorded result, fed to a Reporter after the
// whole suite (or a fail-fast-truncated prefix of it) has run.
type TestOutcome struct {
	Name     string
	Passed   bool
	Failures []string // rendered failing-assertion messages
	Err      error     // set when the pipeline itself failed to load/run
}

// Reporter renders a suite's outcomes in one of the three formats spec.md
// §6.3 names: terminal, JUnit XML, TAP.
type Reporter interface {
	Report(w io.Writer, suiteName string, outcomes []TestOutcome) error
}

// ReporterFor resolves the --output flag value to a Reporter.
func ReporterFor(name string) Reporter {
	switch name {
	case "junit":
		return JUnitReporter{}
	case "tap":
		return TAPReporter{}
	default:
		return TerminalReporter{}
	}
}
