// Command roxid-lite is a flag-only fallback runner: no pflag/cli
// dependency, just the stdlib flag package, mirroring the teacher's
// two-main layout (a cli.App-based root main.go plus a bare cmd/<name>
// entry point for scripted/CI contexts that only want `-file`/`-stage`).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/roxid-ci/roxid/container"
	"github.com/roxid-ci/roxid/model"
	"github.com/roxid-ci/roxid/psexec"
	"github.com/roxid-ci/roxid/runner"
	"github.com/roxid-ci/roxid/style"
	"github.com/roxid-ci/roxid/taskcache"
)

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func main() {
	var pipelineFile string
	var stage string
	var quiet bool

	flag.StringVar(&pipelineFile, "file", "azure-pipelines.yml", "Path to pipeline file")
	flag.StringVar(&stage, "stage", "", "Run only this stage and its dependencies")
	flag.BoolVar(&quiet, "quiet", false, "Suppress step stdout echo")
	flag.Parse()

	p, err := runner.Load(pipelineFile, nil)
	if err != nil {
		fatalf("%s %v\n", style.BrightRed("ERROR:"), err)
	}

	exec := psexec.New()
	wd, _ := os.Getwd()

	result, err := runner.Execute(context.Background(), p, nil, runner.Options{
		Collaborators: runner.Collaborators{
			Executor:   exec,
			Tasks:      taskcache.New(),
			Containers: container.New(exec),
		},
		Dir:       wd,
		QuietMode: quiet,
		OnlyStage: stage,
	})
	if err != nil {
		fatalf("%s %v\n", style.BrightRed("ERROR:"), err)
	}

	if result.Status == model.StatusFailed || result.Status == model.StatusCanceled {
		fmt.Printf("%s %s\n", style.BrightRed("✗"), pipelineFile)
		os.Exit(1)
	}
	fmt.Printf("%s %s\n", style.BrightGreen("✓"), pipelineFile)
}
