package runner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roxid-ci/roxid/runner"
)

func TestScanLoggingCommandsParsesSetVariable(t *testing.T) {
	output := "building...\n##vso[task.setvariable variable=buildId]12345\ndone\n"
	cmds := runner.ScanLoggingCommands(output)
	if assert.Len(t, cmds, 1) {
		assert.Equal(t, "task.setvariable", cmds[0].Command)
		assert.Equal(t, "buildId", cmds[0].Properties["variable"])
		assert.Equal(t, "12345", cmds[0].Value)
	}
}

func TestApplyLoggingCommandsRecordsStepOutputAndPromotesVariable(t *testing.T) {
	rc := &runner.RuntimeContext{
		Context:   context.Background(),
		Variables: map[string]string{},
		Outputs:   map[string]map[string]string{},
	}
	output := "##vso[task.setvariable variable=version;isOutput=true]1.2.3\n"
	runner.ApplyLoggingCommands(rc, "build", output)

	assert.Equal(t, "1.2.3", rc.Outputs["build"]["version"])
	assert.Equal(t, "1.2.3", rc.Variables["version"])
}

func TestApplyLoggingCommandsPromotesPlainSetVariableWithoutIsOutput(t *testing.T) {
	rc := &runner.RuntimeContext{
		Context:   context.Background(),
		Variables: map[string]string{},
		Outputs:   map[string]map[string]string{},
	}
	output := "##vso[task.setvariable variable=environment]staging\n"
	runner.ApplyLoggingCommands(rc, "configure", output)

	assert.Equal(t, "staging", rc.Outputs["configure"]["environment"])
	assert.Equal(t, "staging", rc.Variables["environment"], "tier-5 runtime precedence applies regardless of isOutput")
}
