package testharness

import (
	"fmt"
	"io"
	"strings"
)

// TAPReporter renders outcomes in Test Anything Protocol form.
type TAPReporter struct{}

func (TAPReporter) Report(w io.Writer, suiteName string, outcomes []TestOutcome) error {
	fmt.Fprintf(w, "TAP version 13\n1..%d\n", len(outcomes))
	for i, o := range outcomes {
		status := "ok"
		if !o.Passed {
			status = "not ok"
		}
		fmt.Fprintf(w, "%s %d - %s\n", status, i+1, o.Name)
		if o.Passed {
			continue
		}
		if o.Err != nil {
			fmt.Fprintf(w, "  ---\n  message: %q\n  ---\n", o.Err.Error())
			continue
		}
		fmt.Fprintf(w, "  ---\n  message: %q\n  ---\n", strings.Join(o.Failures, "; "))
	}
	return nil
}
