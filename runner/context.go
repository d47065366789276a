// Package runner implements phase (E) Execute: scheduling stages/jobs by
// their graph levels, expanding matrix instances, running each job's
// steps through psexec, and scanning their output for Azure DevOps
// logging commands, generalizing the teacher's errgroup-based
// executor (runner/executor.go in the retrieved source) from a flat
// job/step task runner to the full stage→job→matrix-instance→step model.
package runner

import (
	"context"
	"time"

	"github.com/roxid-ci/roxid/expr"
	"github.com/roxid-ci/roxid/model"
)

// RuntimeContext carries everything a running stage/job/step needs:
// accumulated variables, the live expression namespaces, and the status
// of every scope that has already finished (spec.md §3
// "ExpressionContext").
type RuntimeContext struct {
	Context context.Context

	Pipeline *model.Pipeline

	// Variables holds the merged, precedence-resolved variable set
	// (spec.md §4.5.1 "variable precedence"), keyed by name.
	Variables map[string]string

	// Env holds process environment overlaid with step/job env blocks.
	Env map[string]string

	// Outputs holds each step's declared outputs, keyed by stepID then
	// variable name (spec.md §4.5.5 "steps.<stepName>.outputs.<varName>").
	Outputs map[string]map[string]string

	// JobOutputs is the union of a job's step outputs under
	// dependencies.<jobId>.outputs['<stepName>.<varName>'] once the job
	// finishes (spec.md §4.5.5).
	JobOutputs map[string]map[string]string

	// StageOutputs mirrors JobOutputs one level up, keyed by
	// "<stageId>.<jobId>" for stageDependencies lookups (spec.md §4.5.5).
	StageOutputs map[string]map[string]string

	Status *StatusTracker

	// Dir is the working directory task steps run in.
	Dir string

	// QuietMode is carried from Options into every child scope; nothing in
	// this package reads it.
	QuietMode bool
}

// ExprContext builds the expr.Context a condition or runtime ($[ ]/$())
// expression should evaluate against, wiring every SPEC_FULL.md root
// namespace to this RuntimeContext's live state.
func (rc *RuntimeContext) ExprContext(mode expr.Mode) *expr.Context {
	vars := make(map[string]expr.Value, len(rc.Variables))
	keys := make([]string, 0, len(rc.Variables))
	for k, v := range rc.Variables {
		vars[k] = expr.String(v)
		keys = append(keys, k)
	}
	envVals := make(map[string]expr.Value, len(rc.Env))
	envKeys := make([]string, 0, len(rc.Env))
	for k, v := range rc.Env {
		envVals[k] = expr.String(v)
		envKeys = append(envKeys, k)
	}

	return &expr.Context{
		Mode: mode,
		Namespaces: map[string]expr.Namespace{
			"variables":         expr.MapNamespace{Root: expr.Object(vars, keys)},
			"env":               expr.MapNamespace{Root: expr.Object(envVals, envKeys)},
			"steps":             outputsNamespace(rc.Outputs),
			"dependencies":      outputsNamespace(rc.JobOutputs),
			"stagedependencies": outputsNamespace(rc.StageOutputs),
		},
		Status:   rc.Status,
		Counters: globalCounters,
	}
}

// outputsNamespace builds the dependencies/stageDependencies namespace
// spec.md §4.5.5 describes: scopeId -> {outputs: {"<stepName>.<varName>": value}}.
func outputsNamespace(outputs map[string]map[string]string) expr.Namespace {
	scopes := make(map[string]expr.Value, len(outputs))
	scopeKeys := make([]string, 0, len(outputs))
	for scopeID, vars := range outputs {
		vals := make(map[string]expr.Value, len(vars))
		keys := make([]string, 0, len(vars))
		for k, v := range vars {
			vals[k] = expr.String(v)
			keys = append(keys, k)
		}
		outputsObj := map[string]expr.Value{"outputs": expr.Object(vals, keys)}
		scopes[scopeID] = expr.Object(outputsObj, []string{"outputs"})
		scopeKeys = append(scopeKeys, scopeID)
	}
	return expr.MapNamespace{Root: expr.Object(scopes, scopeKeys)}
}

var globalCounters = expr.NewCounterStore()

// Clone returns a copy of rc for a child scope (stage, job, or matrix
// instance): Variables, Env and Outputs are copied so the child's
// mutations don't leak back to siblings running concurrently; JobOutputs,
// StageOutputs and Status are shared with rc.
func (rc *RuntimeContext) Clone() *RuntimeContext {
	vars := make(map[string]string, len(rc.Variables))
	for k, v := range rc.Variables {
		vars[k] = v
	}
	env := make(map[string]string, len(rc.Env))
	for k, v := range rc.Env {
		env[k] = v
	}
	outputs := make(map[string]map[string]string, len(rc.Outputs))
	for id, stepVars := range rc.Outputs {
		cp := make(map[string]string, len(stepVars))
		for k, v := range stepVars {
			cp[k] = v
		}
		outputs[id] = cp
	}
	return &RuntimeContext{
		Context:      rc.Context,
		Pipeline:     rc.Pipeline,
		Variables:    vars,
		Env:          env,
		Outputs:      outputs,
		JobOutputs:   rc.JobOutputs,
		StageOutputs: rc.StageOutputs,
		Status:       rc.Status,
		Dir:          rc.Dir,
		QuietMode:    rc.QuietMode,
	}
}

// WithTimeout returns a child RuntimeContext whose Context is bound to a
// timeout, and the cancel function the caller must defer.
func (rc *RuntimeContext) WithTimeout(d time.Duration) (*RuntimeContext, context.CancelFunc) {
	child := rc.Clone()
	ctx, cancel := context.WithTimeout(rc.Context, d)
	child.Context = ctx
	return child, cancel
}

// mergeVariables folds entries into the live scope map into, evaluating
// any `$[ ... ]` runtime form against rc once the prior entries in this
// same block are already visible (spec.md §4.5.2 "$[ ] evaluated at
// merge time and stored as values"). rc.Variables and into are the same
// map at every real call site, so each entry sees its predecessors.
func mergeVariables(rc *RuntimeContext, entries model.VariablesBlock, into map[string]string) {
	for _, e := range entries {
		if e.IsGroup() || e.IsTemplate() {
			continue
		}
		if e.Name == "" {
			continue
		}
		val := toStringValue(e.Value)
		if evaluated, err := InterpolateRuntimeForm(val, rc); err == nil {
			val = evaluated
		}
		into[e.Name] = val
	}
}

func toStringValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		return expr.FromAny(x).String()
	}
}
