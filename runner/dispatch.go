package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/roxid-ci/roxid/collaborators"
	"github.com/roxid-ci/roxid/container"
	"github.com/roxid-ci/roxid/model"
	"github.com/roxid-ci/roxid/psexec"
	"github.com/roxid-ci/roxid/shell"
	"github.com/roxid-ci/roxid/taskcache"
)

// Collaborators bundles the external collaborators a dispatch needs
// (spec.md §6.4): the shell/container subprocess executor and the task
// cache. All fields are optional: a nil Executor or Tasks makes the steps
// that need it fail with an error instead of a panic, and a nil
// Containers skips starting a job's services.
type Collaborators struct {
	Executor   *psexec.Executor
	Tasks      *taskcache.Cache
	Containers *container.Runner
}

// dispatchResult is what dispatch reports back to the step loop: the
// collected stdout (for logging-command scanning and output assertions)
// and the process outcome. failOnStderr is already folded into ExitCode
// by shell.Run.
type dispatchResult struct {
	Output   string
	ExitCode int
	Err      error
}

// dispatch resolves step's action variant and runs it, mirroring
// spec.md §4.5.4 point 3's per-kind dispatch table.
func dispatch(ctx context.Context, rc *RuntimeContext, step *model.Step, collab Collaborators, onLine func(string)) dispatchResult {
	env := buildEnv(rc, step)

	if script, ok := step.Command(); ok {
		if collab.Executor == nil {
			return dispatchResult{Err: fmt.Errorf("runner: no shell executor configured")}
		}
		res := shell.Run(ctx, collab.Executor, shell.Request{
			Script:       InterpolateMacros(script, rc),
			Kind:         shellKind(step.Kind),
			Env:          env,
			WorkingDir:   InterpolateMacros(step.WorkingDirectory, rc),
			OnLine:       onLine,
			FailOnStderr: step.FailOnStderr,
		})
		return dispatchResult{Output: res.Stdout, ExitCode: res.ExitCode, Err: res.Err}
	}

	switch step.Kind {
	case model.StepTask:
		return dispatchTask(ctx, rc, step, collab)
	case model.StepCheckout:
		out := collaborators.Checkout(step.Checkout)
		return dispatchResult{Output: out.Message}
	case model.StepDownload:
		out := collaborators.Download(step.Download)
		return dispatchResult{Output: out.Message}
	case model.StepPublish:
		out := collaborators.Publish(step.Publish)
		return dispatchResult{Output: out.Message}
	default:
		return dispatchResult{Err: fmt.Errorf("runner: step kind %v has no dispatch target", step.Kind)}
	}
}

func dispatchTask(ctx context.Context, rc *RuntimeContext, step *model.Step, collab Collaborators) dispatchResult {
	if collab.Tasks == nil {
		return dispatchResult{Err: fmt.Errorf("runner: no task cache configured")}
	}
	name, major, ok := splitTaskRef(step.Task)
	if !ok {
		return dispatchResult{Err: fmt.Errorf("runner: task reference %q must be Name@Major", step.Task)}
	}
	t, err := collab.Tasks.Fetch(name, major)
	if err != nil {
		return dispatchResult{Err: err}
	}

	supplied := make(map[string]string, len(step.Inputs))
	for k, v := range step.Inputs {
		supplied[k] = InterpolateMacros(toStringValue(v), rc)
	}
	inputEnv, err := t.BindInputs(supplied)
	if err != nil {
		return dispatchResult{Err: err}
	}

	if collab.Executor == nil {
		return dispatchResult{Err: fmt.Errorf("runner: no shell executor configured")}
	}
	name2, args := taskEntryCommand(t)
	res := collab.Executor.Run(ctx, &psexec.Command{
		Name: name2,
		Args: append(args, t.Entrypoint),
		Env:  append(buildEnv(rc, step), inputEnv...),
		Dir:  rc.Dir,
	})
	return dispatchResult{Output: res.Output(), ExitCode: res.ExitCode(), Err: res.Err()}
}

func taskEntryCommand(t *taskcache.Task) (string, []string) {
	switch t.Manifest.Execution {
	case taskcache.ExecutionPowerShell:
		return "pwsh", []string{"-NoProfile", "-File"}
	default:
		return "node", nil
	}
}

func splitTaskRef(ref string) (name, major string, ok bool) {
	i := strings.LastIndex(ref, "@")
	if i < 0 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}

func shellKind(k model.StepKind) shell.Kind {
	switch k {
	case model.StepBash:
		return shell.Bash
	case model.StepPwsh:
		return shell.Pwsh
	case model.StepPowerShell:
		return shell.PowerShell
	default:
		return shell.Script
	}
}

// buildEnv assembles process env + job env + step env, later overriding
// earlier (spec.md §4.5.4 point 3).
func buildEnv(rc *RuntimeContext, step *model.Step) []string {
	merged := make(map[string]string, len(rc.Env)+len(step.Env))
	for k, v := range rc.Env {
		merged[k] = v
	}
	for k, v := range step.Env {
		merged[k] = InterpolateMacros(v, rc)
	}
	env := make([]string, 0, len(merged))
	for k, v := range merged {
		env = append(env, k+"="+v)
	}
	return env
}

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(x, "true")
	default:
		return false
	}
}
