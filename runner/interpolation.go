package runner

import "github.com/roxid-ci/roxid/expr"

// InterpolateMacros expands $(variable) textual macros in s against rc's
// current variables, mirroring Azure DevOps' non-recursive macro
// substitution (spec.md §4.1 "$(...) macro syntax").
func InterpolateMacros(s string, rc *RuntimeContext) string {
	return expr.SubstituteMacros(s, rc.ExprContext(expr.ModeRuntime))
}

// InterpolateRuntimeForm evaluates s as a $[ ] runtime expression against
// rc's current state when s is exactly one such form, returning its
// stringified value (spec.md §4.1 "$[ ] runtime syntax"). Strings that
// aren't a whole $[ ] form are returned unchanged.
func InterpolateRuntimeForm(s string, rc *RuntimeContext) (string, error) {
	body, ok := expr.IsWholeRuntimeForm(s)
	if !ok {
		return s, nil
	}
	v, err := expr.EvaluateRuntime(body, rc.ExprContext(expr.ModeRuntime))
	if err != nil {
		return "", err
	}
	return v.String(), nil
}
