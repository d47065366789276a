package main

import (
	"fmt"
	"os"

	"github.com/titpetric/cli"

	"github.com/roxid-ci/roxid/version"
)

// Version, Commit, CommitTime and Branch are set via -ldflags at build
// time, matching the teacher's root main.go.
var (
	Version    string
	Commit     string
	CommitTime string
	Branch     string
)

func main() {
	if err := start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func start() error {
	app := cli.NewApp("roxid")
	app.AddCommand("run", "Run a pipeline", RunPipeline)
	app.AddCommand("validate", "Parse and resolve a pipeline without executing it", Validate)
	app.AddCommand("test", "Run a roxid-test.yml test suite", TestCmd)
	app.AddCommand("task", "Manage the task cache", TaskCmd)
	app.AddCommand("version", version.Name, func() *cli.Command {
		return version.NewCommand(version.Info{
			Version:    Version,
			Commit:     Commit,
			CommitTime: CommitTime,
			Branch:     Branch,
		})
	})

	app.DefaultCommand = "run"

	return app.Run()
}
