package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/titpetric/cli"

	"github.com/roxid-ci/roxid/container"
	"github.com/roxid-ci/roxid/eventlog"
	"github.com/roxid-ci/roxid/model"
	"github.com/roxid-ci/roxid/psexec"
	"github.com/roxid-ci/roxid/runner"
	"github.com/roxid-ci/roxid/spinner"
	"github.com/roxid-ci/roxid/taskcache"
	"github.com/roxid-ci/roxid/treeview"
)

// RunPipeline provides the `run` command: parse, resolve, execute, then
// print the final JSON summary to stdout (spec.md §6.1).
func RunPipeline() *cli.Command {
	opts := NewRunOptions()

	return &cli.Command{
		Name:    "run",
		Title:   "Run a pipeline",
		Default: true,
		Bind: func(fs *pflag.FlagSet) {
			opts.Bind(fs)
		},
		Run: func(ctx context.Context, args []string) error {
			return runPipeline(ctx, opts, args)
		},
	}
}

func runPipeline(ctx context.Context, opts *RunOptions, args []string) error {
	file := opts.File
	if file == "" && len(args) > 0 {
		file = args[0]
	}
	if file == "" {
		return fmt.Errorf("run: no pipeline file given")
	}

	callerVars, err := parseVarFlags(opts.Vars)
	if err != nil {
		return err
	}

	p, err := runner.Load(file, nil)
	if err != nil {
		return err
	}

	exec := psexec.New()
	wd, _ := os.Getwd()
	logger := eventlog.NewLogger(opts.LogFile, p.Name, file, opts.Debug)

	var spin *spinner.Spinner
	if !opts.QuietMode {
		spin = spinner.New()
		spin.Start()
		defer spin.Stop()
	}

	result, err := runner.Execute(ctx, p, callerVars, runner.Options{
		Collaborators: runner.Collaborators{
			Executor:   exec,
			Tasks:      taskcache.New(),
			Containers: container.New(exec),
		},
		Logger:    logger,
		Dir:       wd,
		QuietMode: opts.QuietMode,
		OnlyStage: opts.Stage,
	})
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	if logger != nil {
		if err := logger.Write(nil, summarize(result)); err != nil {
			fmt.Fprintf(os.Stderr, "run: writing log: %v\n", err)
		}
	}

	if !opts.QuietMode {
		fmt.Fprint(os.Stderr, renderExecutionTree(p.Name, result))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}

	if result.Status == model.StatusFailed || result.Status == model.StatusCanceled {
		os.Exit(1)
	}
	return nil
}

// renderExecutionTree builds a treeview.ExecutionTree from the finished
// run's stage/job/step results and renders it as a static summary tree,
// generalizing the teacher's live-run tree to a post-run report.
func renderExecutionTree(pipelineName string, result *model.ExecutionResult) string {
	tree := treeview.NewExecutionTree(pipelineName)
	tree.SetStatus(mapTreeStatus(result.Status))

	for stageID, sr := range result.Stages {
		stageNode := tree.AddJobWithDeps(stageID, nil)
		stageNode.SetStatus(mapTreeStatus(sr.Status))

		for jobID, jr := range sr.Jobs {
			jobNode := stageNode.AddStep(jobID)
			var jobStatuses []model.Status
			for _, inst := range jr.Instances {
				jobStatuses = append(jobStatuses, inst.Status)
				instName := inst.InstanceName
				if instName == "" {
					instName = jobID
				}
				for _, step := range inst.Steps {
					stepNode := jobNode.AddStep(fmt.Sprintf("%s: %s", instName, step.Name))
					stepNode.SetStatus(mapTreeStatus(step.Status))
					stepNode.SetDuration(step.Duration.Seconds())
				}
			}
			jobNode.SetStatus(mapTreeStatus(model.Aggregate(jobStatuses)))
		}
	}

	renderer := treeview.NewRenderer()
	return renderer.RenderStatic(tree.Node)
}

func mapTreeStatus(s model.Status) treeview.Status {
	switch s {
	case model.StatusSuccess, model.StatusSucceededWithIssues:
		return treeview.StatusPassed
	case model.StatusFailed, model.StatusCanceled:
		return treeview.StatusFailed
	case model.StatusSkipped:
		return treeview.StatusSkipped
	default:
		return treeview.StatusPending
	}
}

func parseVarFlags(vars []string) (map[string]string, error) {
	out := make(map[string]string, len(vars))
	for _, kv := range vars {
		i := strings.IndexByte(kv, '=')
		if i < 0 {
			return nil, fmt.Errorf("run: --var %q must be K=V", kv)
		}
		out[kv[:i]] = kv[i+1:]
	}
	return out, nil
}

func summarize(result *model.ExecutionResult) *eventlog.RunSummary {
	summary := &eventlog.RunSummary{Duration: result.Duration.Seconds()}
	switch result.Status {
	case model.StatusFailed, model.StatusCanceled:
		summary.Result = eventlog.ResultFail
	case model.StatusSkipped:
		summary.Result = eventlog.ResultSkipped
	default:
		summary.Result = eventlog.ResultPass
	}
	for _, stage := range result.Stages {
		for _, job := range stage.Jobs {
			for _, inst := range job.Instances {
				for _, step := range inst.Steps {
					summary.TotalSteps++
					switch step.Status {
					case model.StatusFailed, model.StatusCanceled:
						summary.FailedSteps++
					case model.StatusSkipped:
						summary.SkippedSteps++
					default:
						summary.PassedSteps++
					}
				}
			}
		}
	}
	return summary
}
