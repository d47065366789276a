package runner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roxid-ci/roxid/model"
	"github.com/roxid-ci/roxid/psexec"
	"github.com/roxid-ci/roxid/runner"
)

func scriptStep(name, script string) *model.Step {
	return &model.Step{Kind: model.StepScript, Script: script, Name: name}
}

func collaborators() runner.Collaborators {
	return runner.Collaborators{Executor: psexec.New()}
}

func TestExecute_SingleStageSingleJobSuccess(t *testing.T) {
	p := &model.Pipeline{
		Name: "simple",
		Stages: []*model.Stage{
			{
				ID: "build",
				Jobs: []*model.Job{
					{
						ID: "compile",
						Steps: []*model.Step{
							scriptStep("echo", "echo 'hello world'"),
						},
					},
				},
			},
		},
	}

	result, err := runner.Execute(context.Background(), p, nil, runner.Options{
		Collaborators: collaborators(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, result.Status)

	stage := result.Stages["build"]
	require.NotNil(t, stage)
	assert.Equal(t, model.StatusSuccess, stage.Status)

	job := stage.Jobs["compile"]
	require.NotNil(t, job)
	require.Len(t, job.Instances, 1)
	inst := job.Instances[0]
	assert.Equal(t, model.StatusSuccess, inst.Status)
	require.Len(t, inst.Steps, 1)
	assert.Equal(t, model.StatusSuccess, inst.Steps[0].Status)
	assert.Contains(t, inst.Steps[0].Output, "hello world")
}

func TestExecute_MultiStageDependencyOrder(t *testing.T) {
	p := &model.Pipeline{
		Name: "chain",
		Stages: []*model.Stage{
			{
				ID: "build",
				Jobs: []*model.Job{
					{ID: "compile", Steps: []*model.Step{scriptStep("build-step", "echo building")}},
				},
			},
			{
				ID:        "test",
				DependsOn: model.DependsOn{"build"},
				Jobs: []*model.Job{
					{ID: "unit", Steps: []*model.Step{scriptStep("test-step", "echo testing")}},
				},
			},
			{
				ID:        "deploy",
				DependsOn: model.DependsOn{"test"},
				Jobs: []*model.Job{
					{ID: "ship", Steps: []*model.Step{scriptStep("deploy-step", "echo deploying")}},
				},
			},
		},
	}

	result, err := runner.Execute(context.Background(), p, nil, runner.Options{
		Collaborators: collaborators(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, result.Status)

	for _, id := range []string{"build", "test", "deploy"} {
		require.NotNil(t, result.Stages[id], "stage %s should have a result", id)
		assert.Equal(t, model.StatusSuccess, result.Stages[id].Status)
	}
}

func TestExecute_FailedStepFailsJobStageAndRun(t *testing.T) {
	p := &model.Pipeline{
		Name: "failing",
		Stages: []*model.Stage{
			{
				ID: "build",
				Jobs: []*model.Job{
					{
						ID: "compile",
						Steps: []*model.Step{
							scriptStep("boom", "exit 1"),
						},
					},
				},
			},
		},
	}

	result, err := runner.Execute(context.Background(), p, nil, runner.Options{
		Collaborators: collaborators(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Equal(t, model.StatusFailed, result.Stages["build"].Status)

	job := result.Stages["build"].Jobs["compile"]
	require.Len(t, job.Instances, 1)
	assert.Equal(t, model.StatusFailed, job.Instances[0].Status)
	assert.Equal(t, 1, job.Instances[0].Steps[0].ExitCode)
}

func TestExecute_ContinueOnErrorSucceedsWithIssues(t *testing.T) {
	p := &model.Pipeline{
		Name: "soft-fail",
		Stages: []*model.Stage{
			{
				ID: "build",
				Jobs: []*model.Job{
					{
						ID: "compile",
						Steps: []*model.Step{
							{Kind: model.StepScript, Script: "exit 1", Name: "flaky", ContinueOnError: true},
							scriptStep("after", "echo still running"),
						},
					},
				},
			},
		},
	}

	result, err := runner.Execute(context.Background(), p, nil, runner.Options{
		Collaborators: collaborators(),
	})
	require.NoError(t, err)

	inst := result.Stages["build"].Jobs["compile"].Instances[0]
	assert.Equal(t, model.StatusSucceededWithIssues, inst.Steps[0].Status)
	assert.Equal(t, model.StatusSuccess, inst.Steps[1].Status)
}

func TestExecute_ContinueOnErrorJobDoesNotFailStage(t *testing.T) {
	p := &model.Pipeline{
		Name: "soft-fail-job",
		Stages: []*model.Stage{
			{
				ID: "build",
				Jobs: []*model.Job{
					{
						ID:              "flaky",
						ContinueOnError: true,
						Steps:           []*model.Step{scriptStep("boom", "exit 1")},
					},
				},
			},
		},
	}

	result, err := runner.Execute(context.Background(), p, nil, runner.Options{
		Collaborators: collaborators(),
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusSucceededWithIssues, result.Stages["build"].Status)
	assert.NotEqual(t, model.StatusFailed, result.Status)
}

func TestExecute_StepOutputVisibleToLaterStepViaStepsNamespace(t *testing.T) {
	p := &model.Pipeline{
		Name: "steps-namespace",
		Stages: []*model.Stage{
			{
				ID: "build",
				Jobs: []*model.Job{
					{
						ID: "compile",
						Steps: []*model.Step{
							scriptStep("setver", "echo '##vso[task.setvariable variable=buildVersion]1.2.3'"),
							{
								Kind:      model.StepScript,
								Name:      "gate",
								Script:    "echo gated",
								Condition: "eq(steps.setver.outputs['buildVersion'], '1.2.3')",
							},
						},
					},
				},
			},
		},
	}

	result, err := runner.Execute(context.Background(), p, nil, runner.Options{
		Collaborators: collaborators(),
	})
	require.NoError(t, err)

	steps := result.Stages["build"].Jobs["compile"].Instances[0].Steps
	require.Len(t, steps, 2)
	assert.Equal(t, model.StatusSuccess, steps[1].Status, "gate step's condition should see setver's output via steps.<id>.outputs")
}

func TestExecute_RuntimeFormVariableEvaluatedAtMergeTime(t *testing.T) {
	p := &model.Pipeline{
		Name: "runtime-var",
		Variables: model.VariablesBlock{
			{Name: "reason", Value: "Manual"},
			{Name: "release", Value: "$[eq(variables['reason'], 'Manual')]"},
		},
		Stages: []*model.Stage{
			{
				ID: "deploy",
				Jobs: []*model.Job{
					{ID: "ship", Steps: []*model.Step{scriptStep("show", "echo $(release)")}},
				},
			},
		},
	}

	result, err := runner.Execute(context.Background(), p, nil, runner.Options{
		Collaborators: collaborators(),
	})
	require.NoError(t, err)

	assert.Equal(t, "True", result.Variables["release"])
	step := result.Stages["deploy"].Jobs["ship"].Instances[0].Steps[0]
	assert.Contains(t, step.Output, "True")
}

func TestExecute_StageConditionSkipsOnFailedDependency(t *testing.T) {
	p := &model.Pipeline{
		Name: "conditional",
		Stages: []*model.Stage{
			{
				ID: "build",
				Jobs: []*model.Job{
					{ID: "compile", Steps: []*model.Step{scriptStep("boom", "exit 1")}},
				},
			},
			{
				ID:        "deploy",
				DependsOn: model.DependsOn{"build"},
				Jobs: []*model.Job{
					{ID: "ship", Steps: []*model.Step{scriptStep("deploy-step", "echo deploying")}},
				},
			},
		},
	}

	result, err := runner.Execute(context.Background(), p, nil, runner.Options{
		Collaborators: collaborators(),
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, result.Stages["build"].Status)
	assert.Equal(t, model.StatusSkipped, result.Stages["deploy"].Status)
	assert.Equal(t, model.StatusFailed, result.Status)
}

func TestExecute_LoggingCommandPromotesVariableToLaterStepInSameJob(t *testing.T) {
	p := &model.Pipeline{
		Name: "propagation",
		Stages: []*model.Stage{
			{
				ID: "build",
				Jobs: []*model.Job{
					{
						ID: "compile",
						Steps: []*model.Step{
							scriptStep("setver", "echo '##vso[task.setvariable variable=buildVersion;isOutput=true]1.2.3'"),
							scriptStep("show", "echo $(buildVersion)"),
						},
					},
				},
			},
		},
	}

	result, err := runner.Execute(context.Background(), p, nil, runner.Options{
		Collaborators: collaborators(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, result.Status)

	steps := result.Stages["build"].Jobs["compile"].Instances[0].Steps
	require.Len(t, steps, 2)
	assert.Contains(t, steps[1].Output, "1.2.3")
}

func TestExecute_StepOutputVariableRecordedOnInstanceOutputs(t *testing.T) {
	p := &model.Pipeline{
		Name: "outputs",
		Stages: []*model.Stage{
			{
				ID: "build",
				Jobs: []*model.Job{
					{
						ID: "compile",
						Steps: []*model.Step{
							scriptStep("setver", "echo '##vso[task.setvariable variable=buildVersion;isOutput=true]1.2.3'"),
						},
					},
				},
			},
		},
	}

	result, err := runner.Execute(context.Background(), p, nil, runner.Options{
		Collaborators: collaborators(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, result.Status)

	inst := result.Stages["build"].Jobs["compile"].Instances[0]
	assert.Equal(t, "1.2.3", inst.Outputs["setver.buildVersion"])
}

func TestExecute_OnlyStageRunsSelectedStageAndDependencies(t *testing.T) {
	p := &model.Pipeline{
		Name: "selective",
		Stages: []*model.Stage{
			{
				ID:   "build",
				Jobs: []*model.Job{{ID: "compile", Steps: []*model.Step{scriptStep("build-step", "echo build")}}},
			},
			{
				ID:        "test",
				DependsOn: model.DependsOn{"build"},
				Jobs:      []*model.Job{{ID: "unit", Steps: []*model.Step{scriptStep("test-step", "echo test")}}},
			},
			{
				ID:   "lint",
				Jobs: []*model.Job{{ID: "check", Steps: []*model.Step{scriptStep("lint-step", "echo lint")}}},
			},
		},
	}

	result, err := runner.Execute(context.Background(), p, nil, runner.Options{
		Collaborators: collaborators(),
		OnlyStage:     "test",
	})
	require.NoError(t, err)

	assert.NotNil(t, result.Stages["build"])
	assert.NotNil(t, result.Stages["test"])
	assert.Nil(t, result.Stages["lint"], "unselected, unrelated stage should not run")
}

func TestExecute_CallerVarsOverridePipelineVariables(t *testing.T) {
	p := &model.Pipeline{
		Name: "vars",
		Variables: model.VariablesBlock{
			{Name: "environment", Value: "staging"},
		},
		Stages: []*model.Stage{
			{
				ID: "deploy",
				Jobs: []*model.Job{
					{ID: "ship", Steps: []*model.Step{scriptStep("show-env", "echo $(environment)")}},
				},
			},
		},
	}

	result, err := runner.Execute(context.Background(), p, map[string]string{"environment": "production"}, runner.Options{
		Collaborators: collaborators(),
	})
	require.NoError(t, err)

	step := result.Stages["deploy"].Jobs["ship"].Instances[0].Steps[0]
	assert.Contains(t, step.Output, "production")
	assert.Equal(t, "production", result.Variables["environment"])
}
