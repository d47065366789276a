// Package roxerr carries rich, located errors through the six execution
// phases: parse errors point at a YAML line/column, graph errors name the
// stage/job id involved, and expression errors wrap the position
// *expr.SyntaxError already reports.
package roxerr

import "fmt"

// Kind classifies which phase raised the error, so a CLI reporter can
// group and color them consistently (spec.md §6.3 "error reporting").
type Kind string

// Error kinds, one per pipeline phase that can fail.
const (
	KindParse     Kind = "parse"
	KindTemplate  Kind = "template"
	KindGraph     Kind = "graph"
	KindMatrix    Kind = "matrix"
	KindExecution Kind = "execution"
	KindConfig    Kind = "config"
)

// Error is a located error: it names the phase, the pipeline file, the
// stage/job/step id (when known), and wraps the underlying cause.
type Error struct {
	Kind    Kind
	File    string
	Line    int
	Column  int
	ScopeID string
	Cause   error
}

func (e *Error) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	}
	switch {
	case loc != "" && e.ScopeID != "":
		return fmt.Sprintf("%s: [%s] %s: %v", loc, e.Kind, e.ScopeID, e.Cause)
	case loc != "":
		return fmt.Sprintf("%s: [%s] %v", loc, e.Kind, e.Cause)
	case e.ScopeID != "":
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.ScopeID, e.Cause)
	default:
		return fmt.Sprintf("[%s] %v", e.Kind, e.Cause)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// New wraps cause as a located Error of the given kind.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// WithLocation attaches a file/line/column to an existing Error, returning
// it for chaining.
func (e *Error) WithLocation(file string, line, col int) *Error {
	e.File, e.Line, e.Column = file, line, col
	return e
}

// WithScope attaches the stage/job/step id the error occurred in.
func (e *Error) WithScope(id string) *Error {
	e.ScopeID = id
	return e
}
