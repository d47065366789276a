package runner

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roxid-ci/roxid/eventlog"
	"github.com/roxid-ci/roxid/graph"
	"github.com/roxid-ci/roxid/matrix"
	"github.com/roxid-ci/roxid/model"
	"github.com/roxid-ci/roxid/roxerr"
)

// Options configures one Execute run: the collaborators steps dispatch
// to, where logs go, and the working directory/environment steps start
// from (spec.md §4.5, §6.4).
type Options struct {
	Collaborators Collaborators
	Logger        *eventlog.Logger
	Dir           string
	Env           map[string]string
	QuietMode     bool

	// OnlyStage restricts the run to this stage and its transitive
	// dependencies (CLI `run <file> --stage NAME`, spec.md §6.1).
	OnlyStage string
}

// Execute runs every reachable stage of p to completion and returns the
// aggregated result, implementing phase (E) Execute and (F) Collect
// Results (spec.md §4.5, §4.6).
func Execute(ctx context.Context, p *model.Pipeline, callerVars map[string]string, opts Options) (*model.ExecutionResult, error) {
	started := time.Now()

	rootVars := make(map[string]string)
	root := &RuntimeContext{
		Context:      ctx,
		Pipeline:     p,
		Variables:    rootVars,
		Env:          processEnv(opts.Env),
		Outputs:      make(map[string]map[string]string),
		JobOutputs:   make(map[string]map[string]string),
		StageOutputs: make(map[string]map[string]string),
		Status:       NewStatusTracker(),
		Dir:          opts.Dir,
		QuietMode:    opts.QuietMode,
	}
	mergeVariables(root, p.Variables, rootVars)
	for k, v := range callerVars {
		rootVars[k] = v
	}

	stages, err := selectStages(p.Stages, opts.OnlyStage)
	if err != nil {
		return nil, err
	}

	nodes := make([]graph.Node, len(stages))
	byID := make(map[string]*model.Stage, len(stages))
	for i, st := range stages {
		nodes[i] = graph.Node{ID: st.ID, DependsOn: []string(st.DependsOn)}
		byID[st.ID] = st
	}
	g, err := graph.Build(nodes)
	if err != nil {
		return nil, roxerr.New(roxerr.KindExecution, err)
	}

	result := &model.ExecutionResult{Stages: make(map[string]*model.StageResult), StartedAt: started}
	var mu sync.Mutex
	var allStatuses []model.Status

	for _, level := range g.Levels {
		grp, gctx := errgroup.WithContext(ctx)
		for _, stageID := range level {
			st := byID[stageID]
			grp.Go(func() error {
				stageRC := root.Clone()
				stageRC.Context = gctx
				sr := executeStage(stageRC, st, opts)
				root.Status.Record(st.ID, sr.Status)

				mu.Lock()
				result.Stages[st.ID] = sr
				allStatuses = append(allStatuses, sr.Status)
				recordStageOutputs(root, st.ID, sr)
				mu.Unlock()
				return nil
			})
		}
		_ = grp.Wait()
	}

	result.Status = model.Aggregate(allStatuses)
	result.Duration = time.Since(started)
	result.Variables = root.Variables
	return result, nil
}

func processEnv(overlay map[string]string) map[string]string {
	env := make(map[string]string, len(overlay))
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	for k, v := range overlay {
		env[k] = v
	}
	return env
}

func recordStageOutputs(root *RuntimeContext, stageID string, sr *model.StageResult) {
	for jobID, jr := range sr.Jobs {
		key := stageID + "." + jobID
		for _, inst := range jr.Instances {
			for k, v := range inst.Outputs {
				if root.StageOutputs[key] == nil {
					root.StageOutputs[key] = make(map[string]string)
				}
				root.StageOutputs[key][k] = v
			}
		}
	}
}

// selectStages returns the stages to run: every stage, or (when only is
// set) only the named stage plus its transitive dependsOn closure
// (spec.md §6.1 "run <file> --stage NAME").
func selectStages(stages []*model.Stage, only string) ([]*model.Stage, error) {
	if only == "" {
		return stages, nil
	}
	byID := make(map[string]*model.Stage, len(stages))
	for _, st := range stages {
		byID[st.ID] = st
	}
	if _, ok := byID[only]; !ok {
		return nil, fmt.Errorf("runner: unknown stage %q", only)
	}

	keep := make(map[string]bool)
	var visit func(id string)
	visit = func(id string) {
		if keep[id] {
			return
		}
		keep[id] = true
		for _, dep := range byID[id].DependsOn {
			visit(dep)
		}
	}
	visit(only)

	var selected []*model.Stage
	for _, st := range stages {
		if keep[st.ID] {
			selected = append(selected, st)
		}
	}
	return selected, nil
}

// executeStage evaluates the stage's condition, then runs its job graph
// by levels (spec.md §4.5.1 "Jobs within a stage").
func executeStage(rc *RuntimeContext, st *model.Stage, opts Options) *model.StageResult {
	mergeVariables(rc, st.Variables, rc.Variables)

	run, err := EvaluateCondition(st.EffectiveCondition(), rc, st.DependsOn)
	if err != nil || !run {
		return &model.StageResult{ID: st.ID, Status: model.StatusSkipped, Jobs: skipJobResults(st.Jobs)}
	}

	nodes := make([]graph.Node, len(st.Jobs))
	byID := make(map[string]*model.Job, len(st.Jobs))
	for i, j := range st.Jobs {
		nodes[i] = graph.Node{ID: j.ID, DependsOn: []string(j.DependsOn)}
		byID[j.ID] = j
	}
	g, err := graph.Build(nodes)
	if err != nil {
		return &model.StageResult{ID: st.ID, Status: model.StatusFailed, Jobs: skipJobResults(st.Jobs)}
	}

	jobs := make(map[string]*model.JobResult, len(st.Jobs))
	var mu sync.Mutex
	var statuses []model.Status

	for _, level := range g.Levels {
		grp, gctx := errgroup.WithContext(rc.Context)
		for _, jobID := range level {
			job := byID[jobID]
			grp.Go(func() error {
				jobRC := rc.Clone()
				jobRC.Context = gctx
				jr, status := executeJob(jobRC, job, opts)
				if status == model.StatusFailed && job.ContinueOnError {
					status = model.StatusSucceededWithIssues
				}
				rc.Status.Record(job.ID, status)

				mu.Lock()
				jobs[job.ID] = jr
				statuses = append(statuses, status)
				for _, inst := range jr.Instances {
					if rc.JobOutputs[job.ID] == nil {
						rc.JobOutputs[job.ID] = make(map[string]string)
					}
					for k, v := range inst.Outputs {
						rc.JobOutputs[job.ID][k] = v
					}
				}
				mu.Unlock()
				return nil
			})
		}
		_ = grp.Wait()
	}

	return &model.StageResult{ID: st.ID, Status: model.Aggregate(statuses), Jobs: jobs}
}

// executeJob evaluates the job's condition, expands its matrix/parallel
// strategy, and runs every instance up to maxParallel concurrently
// (spec.md §4.5.1 "Matrix instances within a job").
func executeJob(rc *RuntimeContext, job *model.Job, opts Options) (*model.JobResult, model.Status) {
	mergeVariables(rc, job.Variables, rc.Variables)

	run, err := EvaluateCondition(job.EffectiveCondition(), rc, job.DependsOn)
	if err != nil || !run {
		return skipInstanceResult(job), model.StatusSkipped
	}

	instances, err := matrix.Expand(job)
	if err != nil {
		return &model.JobResult{ID: job.ID, Instances: []*model.JobInstanceResult{{
			InstanceName: job.ID,
			Status:       model.StatusFailed,
			StartedAt:    time.Now(),
		}}}, model.StatusFailed
	}

	limit := len(instances)
	if job.Strategy.IsMatrix() && job.Strategy.MaxParallel > 0 && job.Strategy.MaxParallel < limit {
		limit = job.Strategy.MaxParallel
	}
	sem := make(chan struct{}, limit)

	results := make([]*model.JobInstanceResult, len(instances))
	var statuses []model.Status
	var mu sync.Mutex
	if len(job.Services) > 0 && opts.Collaborators.Containers != nil {
		services, _ := opts.Collaborators.Containers.StartServices(rc.Context, job.Services)
		defer opts.Collaborators.Containers.Stop(rc.Context, services)
	}

	grp, gctx := errgroup.WithContext(rc.Context)
	for i, inst := range instances {
		i, inst := i, inst
		grp.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			instRC := rc.Clone()
			instRC.Context = gctx
			for k, v := range inst.Variables {
				instRC.Variables[k] = v
			}

			var cancel context.CancelFunc
			if job.TimeoutInMinutes != nil {
				instRC, cancel = instRC.WithTimeout(time.Duration(*job.TimeoutInMinutes) * time.Minute)
				defer cancel()
			}

			ir := runInstance(instRC, job, inst, opts)

			mu.Lock()
			results[i] = ir
			statuses = append(statuses, ir.Status)
			mu.Unlock()
			return nil
		})
	}
	_ = grp.Wait()

	return &model.JobResult{ID: job.ID, Instances: results}, model.Aggregate(statuses)
}

// runInstance runs one matrix/parallel instance's effective step list
// sequentially (spec.md §4.5.1 "Steps within a job... strictly
// sequential").
func runInstance(rc *RuntimeContext, job *model.Job, inst matrix.Instance, opts Options) *model.JobInstanceResult {
	start := time.Now()
	steps := job.EffectiveSteps()
	stepResults, status := runSteps(rc, steps, opts, job.ID, inst.Name)

	outputs := make(map[string]string)
	for stepID, vars := range rc.Outputs {
		for k, v := range vars {
			outputs[stepID+"."+k] = v
		}
	}

	return &model.JobInstanceResult{
		InstanceName: inst.Name,
		Status:       status,
		StartedAt:    start,
		Duration:     time.Since(start),
		Steps:        stepResults,
		Outputs:      outputs,
	}
}

// runSteps runs steps one at a time, evaluating each one's condition
// against the accumulated status of prior steps in this same scope
// (spec.md §4.5.3 "Default step condition").
func runSteps(rc *RuntimeContext, steps []*model.Step, opts Options, jobID, instanceName string) ([]*model.StepResult, model.Status) {
	stepTracker := NewStatusTracker()
	stepRC := &RuntimeContext{
		Context:      rc.Context,
		Pipeline:     rc.Pipeline,
		Variables:    rc.Variables,
		Env:          rc.Env,
		Outputs:      rc.Outputs,
		JobOutputs:   rc.JobOutputs,
		StageOutputs: rc.StageOutputs,
		Status:       stepTracker,
		Dir:          rc.Dir,
		QuietMode:    rc.QuietMode,
	}

	var results []*model.StepResult
	var statuses []model.Status

	for i, step := range steps {
		name := stepName(step, i)
		run, err := EvaluateCondition(step.EffectiveCondition(), stepRC, []string{"previous"})
		if err != nil || !step.EffectiveEnabled() || !run {
			sr := &model.StepResult{Name: name, Status: model.StatusSkipped, StartedAt: time.Now()}
			results = append(results, sr)
			statuses = append(statuses, model.StatusSkipped)
			stepTracker.Record("previous", model.Aggregate(statuses))
			if opts.Logger != nil {
				opts.Logger.LogExec(eventlog.ResultSkipped, name, instanceName, opts.Logger.GetElapsed(), 0, nil)
			}
			continue
		}

		sr := runStep(stepRC, step, name, jobID, opts)
		results = append(results, sr)
		statuses = append(statuses, sr.Status)
		stepTracker.Record("previous", model.Aggregate(statuses))

		if opts.Logger != nil {
			var stepErr error
			if sr.Error != "" {
				stepErr = fmt.Errorf("%s", sr.Error)
			}
			opts.Logger.LogExec(eventlogResult(sr.Status), name, instanceName, opts.Logger.GetElapsed(), float64(sr.Duration.Milliseconds()), stepErr)
		}
	}

	return results, model.Aggregate(statuses)
}

func runStep(rc *RuntimeContext, step *model.Step, name, jobID string, opts Options) *model.StepResult {
	start := time.Now()

	stepCtx := rc.Context
	var cancel context.CancelFunc
	if step.TimeoutInMinutes != nil {
		stepCtx, cancel = context.WithTimeout(rc.Context, time.Duration(*step.TimeoutInMinutes)*time.Minute)
		defer cancel()
	}

	res := dispatch(stepCtx, rc, step, opts.Collaborators, func(line string) {
		ApplyLoggingCommands(rc, name, line)
	})
	ApplyLoggingCommands(rc, name, res.Output)

	status := model.StatusSuccess
	switch {
	case stepCtx.Err() == context.DeadlineExceeded:
		status = model.StatusFailed
	case res.ExitCode != 0:
		if step.ContinueOnError {
			status = model.StatusSucceededWithIssues
		} else {
			status = model.StatusFailed
		}
	case res.Err != nil:
		status = model.StatusFailed
	}

	sr := &model.StepResult{
		Name:      name,
		Status:    status,
		StartedAt: start,
		Duration:  time.Since(start),
		ExitCode:  res.ExitCode,
		Output:    res.Output,
	}
	if res.Err != nil {
		sr.Error = res.Err.Error()
	}
	return sr
}

func stepName(step *model.Step, index int) string {
	switch {
	case step.Name != "":
		return step.Name
	case step.DisplayName != "":
		return step.DisplayName
	default:
		return fmt.Sprintf("step%d", index+1)
	}
}

func eventlogResult(s model.Status) eventlog.Result {
	switch s {
	case model.StatusFailed, model.StatusCanceled:
		return eventlog.ResultFail
	case model.StatusSkipped:
		return eventlog.ResultSkipped
	default:
		return eventlog.ResultPass
	}
}

func skipJobResults(jobs []*model.Job) map[string]*model.JobResult {
	out := make(map[string]*model.JobResult, len(jobs))
	for _, j := range jobs {
		out[j.ID] = skipInstanceResult(j)
	}
	return out
}

func skipInstanceResult(job *model.Job) *model.JobResult {
	steps := job.EffectiveSteps()
	stepResults := make([]*model.StepResult, len(steps))
	for i, s := range steps {
		stepResults[i] = &model.StepResult{Name: stepName(s, i), Status: model.StatusSkipped, StartedAt: time.Now()}
	}
	return &model.JobResult{ID: job.ID, Instances: []*model.JobInstanceResult{{
		InstanceName: job.ID,
		Status:       model.StatusSkipped,
		StartedAt:    time.Now(),
		Steps:        stepResults,
	}}}
}
