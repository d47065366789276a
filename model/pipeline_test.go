package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/roxid-ci/roxid/model"
)

func TestPipelineShapeRejectsMixedTopLevel(t *testing.T) {
	p := &model.Pipeline{
		Stages: []*model.Stage{{ID: "a"}},
		Jobs:   []*model.Job{{ID: "b"}},
	}
	_, err := p.Shape()
	require.Error(t, err)
}

func TestNormalizeStepsOnly(t *testing.T) {
	p := &model.Pipeline{Steps: []*model.Step{{Kind: model.StepScript, Script: "echo hi"}}}
	require.NoError(t, p.Normalize())
	require.Len(t, p.Stages, 1)
	require.Len(t, p.Stages[0].Jobs, 1)
	assert.Len(t, p.Stages[0].Jobs[0].Steps, 1)
}

func TestNormalizeJobsOnly(t *testing.T) {
	p := &model.Pipeline{Jobs: []*model.Job{{ID: "build"}, {ID: "test"}}}
	require.NoError(t, p.Normalize())
	require.Len(t, p.Stages, 1)
	assert.Len(t, p.Stages[0].Jobs, 2)
}

func TestNormalizeFillsImplicitStageDependsOn(t *testing.T) {
	p := &model.Pipeline{Stages: []*model.Stage{
		{ID: "build"},
		{ID: "test"},
		{ID: "deploy", DependsOn: model.DependsOn{"build"}},
	}}
	require.NoError(t, p.Normalize())
	assert.Empty(t, p.Stages[0].DependsOn)
	assert.Equal(t, model.DependsOn{"build"}, p.Stages[1].DependsOn)
	assert.Equal(t, model.DependsOn{"build"}, p.Stages[2].DependsOn)
}

func TestNormalizeRejectsDuplicateStageIDs(t *testing.T) {
	p := &model.Pipeline{Stages: []*model.Stage{{ID: "build"}, {ID: "build"}}}
	require.Error(t, p.Normalize())
}

func TestDependsOnUnmarshalsScalarAndSequence(t *testing.T) {
	var scalar model.DependsOn
	require.NoError(t, yaml.Unmarshal([]byte(`build`), &scalar))
	assert.Equal(t, model.DependsOn{"build"}, scalar)

	var seq model.DependsOn
	require.NoError(t, yaml.Unmarshal([]byte(`[build, lint]`), &seq))
	assert.Equal(t, model.DependsOn{"build", "lint"}, seq)
}

func TestVariablesBlockUnmarshalsMappingForm(t *testing.T) {
	var vars model.VariablesBlock
	require.NoError(t, yaml.Unmarshal([]byte(`
foo: bar
count: 2
`), &vars))
	require.Len(t, vars, 2)
	assert.Equal(t, "foo", vars[0].Name)
	assert.Equal(t, "bar", vars[0].Value)
}

func TestVariablesBlockUnmarshalsSequenceForm(t *testing.T) {
	var vars model.VariablesBlock
	require.NoError(t, yaml.Unmarshal([]byte(`
- name: foo
  value: bar
- group: shared-secrets
`), &vars))
	require.Len(t, vars, 2)
	assert.Equal(t, "foo", vars[0].Name)
	assert.True(t, vars[1].IsGroup())
	assert.Equal(t, "shared-secrets", vars[1].Group)
}

func TestStepUnmarshalDiscriminatesKind(t *testing.T) {
	var step model.Step
	require.NoError(t, yaml.Unmarshal([]byte(`
script: echo hi
displayName: say hi
`), &step))
	assert.Equal(t, model.StepScript, step.Kind)
	cmd, ok := step.Command()
	assert.True(t, ok)
	assert.Equal(t, "echo hi", cmd)
}

func TestStepUnmarshalRejectsMultipleDiscriminators(t *testing.T) {
	var step model.Step
	err := yaml.Unmarshal([]byte(`
script: echo hi
bash: echo bye
`), &step)
	require.Error(t, err)
}

func TestJobEffectiveStepsConcatenatesDeploymentHooks(t *testing.T) {
	job := &model.Job{
		Deployment: &model.Deployment{
			PreDeploy: []*model.Step{{Kind: model.StepScript, Script: "pre"}},
			Deploy:    []*model.Step{{Kind: model.StepScript, Script: "deploy"}},
		},
	}
	steps := job.EffectiveSteps()
	require.Len(t, steps, 2)
	assert.Equal(t, "pre", steps[0].Script)
	assert.Equal(t, "deploy", steps[1].Script)
}

func TestAggregateStatusPriority(t *testing.T) {
	assert.Equal(t, model.StatusFailed, model.Aggregate([]model.Status{model.StatusSuccess, model.StatusFailed}))
	assert.Equal(t, model.StatusSucceededWithIssues, model.Aggregate([]model.Status{model.StatusSuccess, model.StatusSucceededWithIssues}))
	assert.Equal(t, model.StatusSkipped, model.Aggregate([]model.Status{model.StatusSkipped, model.StatusSkipped}))
	assert.Equal(t, model.StatusSuccess, model.Aggregate([]model.Status{model.StatusSuccess, model.StatusSuccess}))
}
