package runner

import (
	"fmt"

	"github.com/roxid-ci/roxid/expr"
)

// EvaluateCondition runs condition (already defaulted to "succeeded()" by
// the model layer) as a $[ ] runtime expression against rc, restricted to
// the dependsOn ids the scope declared (spec.md §4.5.3 "condition
// evaluation restricts succeeded()/failed() to declared dependencies").
func EvaluateCondition(condition string, rc *RuntimeContext, dependsOn []string) (bool, error) {
	ctx := rc.ExprContext(expr.ModeRuntime)

	v, err := evaluateConditionExpr(condition, ctx, dependsOn, rc.Status)
	if err != nil {
		return false, fmt.Errorf("runner: evaluating condition %q: %w", condition, err)
	}
	return v.Truthy(), nil
}

func evaluateConditionExpr(condition string, ctx *expr.Context, dependsOn []string, status *StatusTracker) (expr.Value, error) {
	scoped := &scopedStatus{dependsOn: dependsOn, tracker: status}
	ctx.Status = scoped
	return expr.EvaluateRuntime(condition, ctx)
}

// scopedStatus adapts a StatusTracker's full history to the
// succeeded()/failed()-without-arguments form, which spec.md §4.5.3
// defines over the scope's own declared dependencies only.
type scopedStatus struct {
	dependsOn []string
	tracker   *StatusTracker
}

func (s *scopedStatus) DependencyStatuses(ids []string) []expr.ScopeStatus {
	if len(ids) == 0 {
		ids = s.dependsOn
	}
	return s.tracker.DependencyStatuses(ids)
}
