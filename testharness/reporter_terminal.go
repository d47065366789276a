package testharness

import (
	"fmt"
	"io"

	"github.com/roxid-ci/roxid/style"
)

// TerminalReporter writes a pass/fail line per test plus a summary tally,
// colored the way the teacher's run output is (style package).
type TerminalReporter struct{}

func (TerminalReporter) Report(w io.Writer, suiteName string, outcomes []TestOutcome) error {
	fmt.Fprintf(w, "%s\n", style.BrightWhite(suiteName))

	passed, failed := 0, 0
	for _, o := range outcomes {
		if o.Passed {
			passed++
			fmt.Fprintf(w, "  %s %s\n", style.BrightGreen("PASS"), o.Name)
			continue
		}
		failed++
		fmt.Fprintf(w, "  %s %s\n", style.BrightRed("FAIL"), o.Name)
		if o.Err != nil {
			fmt.Fprintf(w, "    %s\n", style.Red(o.Err.Error()))
			continue
		}
		for _, f := range o.Failures {
			fmt.Fprintf(w, "    %s\n", style.Red(f))
		}
	}

	fmt.Fprintf(w, "\n%d passed, %d failed\n", passed, failed)
	return nil
}
