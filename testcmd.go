package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/titpetric/cli"

	"github.com/roxid-ci/roxid/container"
	"github.com/roxid-ci/roxid/psexec"
	"github.com/roxid-ci/roxid/runner"
	"github.com/roxid-ci/roxid/taskcache"
	"github.com/roxid-ci/roxid/testharness"
)

// TestCmd provides the `test` command: run every test in a
// roxid-test.yml suite and report pass/fail per its declared assertions
// (spec.md §6.3).
func TestCmd() *cli.Command {
	opts := NewTestOptions()

	return &cli.Command{
		Name:  "test",
		Title: "Run a roxid-test.yml test suite",
		Bind: func(fs *pflag.FlagSet) {
			opts.Bind(fs)
		},
		Run: func(ctx context.Context, args []string) error {
			return runTestSuite(ctx, opts, args)
		},
	}
}

func runTestSuite(ctx context.Context, opts *TestOptions, args []string) error {
	file := "roxid-test.yml"
	if len(args) > 0 {
		file = args[0]
	}

	suite, err := testharness.Load(file)
	if err != nil {
		return err
	}

	var outcomes []testharness.TestOutcome
	for _, t := range suite.Tests {
		if opts.Filter != "" {
			match, err := filepath.Match(opts.Filter, t.Name)
			if err != nil {
				return fmt.Errorf("test: bad --filter pattern: %w", err)
			}
			if !match {
				continue
			}
		}

		outcome := runOneTest(ctx, suite, t)
		outcomes = append(outcomes, outcome)
		if !outcome.Passed && opts.FailFast {
			break
		}
	}

	reporter := testharness.ReporterFor(opts.Output)
	if err := reporter.Report(os.Stdout, suite.Name, outcomes); err != nil {
		return err
	}

	for _, o := range outcomes {
		if !o.Passed {
			os.Exit(1)
		}
	}
	return nil
}

func runOneTest(ctx context.Context, suite *testharness.Suite, t testharness.Test) testharness.TestOutcome {
	outcome := testharness.TestOutcome{Name: t.Name}

	p, err := runner.Load(suite.PipelinePath(t), t.Parameters)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	exec := psexec.New()
	wd, _ := os.Getwd()

	result, err := runner.Execute(ctx, p, suite.MergedVariables(t), runner.Options{
		Collaborators: runner.Collaborators{
			Executor:   exec,
			Tasks:      taskcache.New(),
			Containers: container.New(exec),
		},
		Dir:       wd,
		QuietMode: true,
	})
	if err != nil {
		outcome.Err = err
		return outcome
	}

	for _, a := range t.Assertions {
		if err := testharness.Evaluate(a, result, result.Variables); err != nil {
			outcome.Failures = append(outcome.Failures, err.Error())
		}
	}
	outcome.Passed = len(outcome.Failures) == 0
	return outcome
}
