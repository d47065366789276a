package main

import "github.com/spf13/pflag"

// RunOptions holds the `roxid run` command's flags (spec.md §6.1).
type RunOptions struct {
	File      string
	Stage     string
	Vars      []string
	Debug     bool
	LogFile   string
	QuietMode bool
}

func NewRunOptions() *RunOptions {
	return &RunOptions{}
}

func (o *RunOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.File, "file", "f", "", "Path to pipeline file")
	fs.StringVar(&o.Stage, "stage", "", "Execute only this stage and its transitive dependencies")
	fs.StringArrayVar(&o.Vars, "var", nil, "Caller-supplied variable override, K=V (repeatable)")
	fs.BoolVar(&o.Debug, "debug", false, "Record goroutine ids in the event log")
	fs.StringVar(&o.LogFile, "log", "", "Event log file path")
	fs.BoolVarP(&o.QuietMode, "quiet", "q", false, "Suppress step stdout echo")
}

// ValidateOptions holds the `roxid validate` command's flags.
type ValidateOptions struct {
	Templates bool
}

func NewValidateOptions() *ValidateOptions {
	return &ValidateOptions{}
}

func (o *ValidateOptions) Bind(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Templates, "templates", false, "Also build the stage dependency graph")
}

// TestOptions holds the `roxid test` command's flags (spec.md §6.3).
type TestOptions struct {
	Filter   string
	Output   string
	FailFast bool
}

func NewTestOptions() *TestOptions {
	return &TestOptions{Output: "terminal"}
}

func (o *TestOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.Filter, "filter", "", "Glob filter over test names")
	fs.StringVar(&o.Output, "output", "terminal", "Reporter: junit|tap|terminal")
	fs.BoolVar(&o.FailFast, "fail-fast", false, "Stop after the first failing test")
}
