package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/titpetric/cli"

	"github.com/roxid-ci/roxid/graph"
	"github.com/roxid-ci/roxid/runner"
)

// Validate provides the `validate` command: parse a pipeline, expand its
// ${{ }} template directives and normalize it, without executing a
// single step. Template expansion always runs; there is no parse-only
// mode. --templates additionally builds the stage dependency graph.
func Validate() *cli.Command {
	opts := NewValidateOptions()

	return &cli.Command{
		Name:  "validate",
		Title: "Parse and resolve a pipeline without executing it",
		Bind: func(fs *pflag.FlagSet) {
			opts.Bind(fs)
		},
		Run: func(ctx context.Context, args []string) error {
			return validatePipeline(opts, args)
		},
	}
}

func validatePipeline(opts *ValidateOptions, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("validate: no pipeline file given")
	}
	file := args[0]

	p, err := runner.Load(file, nil)
	if err != nil {
		return err
	}

	if !opts.Templates {
		fmt.Printf("%s: OK (%d stages)\n", file, len(p.Stages))
		return nil
	}

	nodes := make([]graph.Node, len(p.Stages))
	for i, st := range p.Stages {
		nodes[i] = graph.Node{ID: st.ID, DependsOn: []string(st.DependsOn)}
	}
	g, err := graph.Build(nodes)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	fmt.Printf("%s: OK (%d stages, %d dependency levels)\n", file, len(p.Stages), len(g.Levels))
	return nil
}
