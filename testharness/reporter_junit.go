package testharness

import (
	"encoding/xml"
	"io"
	"strings"
)

// JUnitReporter renders outcomes as a JUnit XML testsuite, the one format
// CI dashboards expect verbatim — encoding/xml is used deliberately here
// rather than a third-party XML library, since the format is a fixed,
// narrow schema with no templating or streaming need.
type JUnitReporter struct{}

type junitSuite struct {
	XMLName  xml.Name    `xml:"testsuite"`
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name    string        `xml:"name,attr"`
	Failure *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

func (JUnitReporter) Report(w io.Writer, suiteName string, outcomes []TestOutcome) error {
	suite := junitSuite{Name: suiteName, Tests: len(outcomes)}
	for _, o := range outcomes {
		c := junitCase{Name: o.Name}
		if !o.Passed {
			suite.Failures++
			msg := strings.Join(o.Failures, "; ")
			if o.Err != nil {
				msg = o.Err.Error()
			}
			c.Failure = &junitFailure{Message: msg, Text: msg}
		}
		suite.Cases = append(suite.Cases, c)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(suite)
}
