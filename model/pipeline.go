// Package model holds the typed pipeline document produced by phase (A)
// Parse+Normalize and carried, with template references fully resolved,
// through every later phase (spec.md §3).
package model

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// Pipeline is the root document parsed from a roxid-style YAML file.
//
// Trigger, PR and Schedules are parsed but never consulted by the engine
// (spec.md §1 "Explicit non-goals" / §6.2 "parsed and ignored").
type Pipeline struct {
	Name      string         `yaml:"name,omitempty"`
	Trigger   yaml.Node      `yaml:"trigger,omitempty"`
	PR        yaml.Node      `yaml:"pr,omitempty"`
	Schedules yaml.Node      `yaml:"schedules,omitempty"`
	Resources *Resources     `yaml:"resources,omitempty"`
	Parameters []*Parameter  `yaml:"parameters,omitempty"`
	Variables VariablesBlock `yaml:"variables,omitempty"`
	Pool      *Pool          `yaml:"pool,omitempty"`
	Extends   *Extends       `yaml:"extends,omitempty"`

	Stages []*Stage `yaml:"stages,omitempty"`
	Jobs   []*Job   `yaml:"jobs,omitempty"`
	Steps  []*Step  `yaml:"steps,omitempty"`

	// ID identifies this pipeline among a set loaded together (cross-
	// pipeline template references); empty means "the main pipeline".
	ID string `yaml:"-"`
}

// Pool describes the agent pool a stage/job runs on. The engine never
// dispatches to a remote pool; the field is carried for condition/template
// expressions and collaborator interfaces only.
type Pool struct {
	Name    string   `yaml:"name,omitempty"`
	VMImage string   `yaml:"vmImage,omitempty"`
	Demands []string `yaml:"demands,omitempty"`
}

// Extends implements the `extends: {template, parameters}` root field
// (spec.md §4.2 processing order, step 2).
type Extends struct {
	Template   string         `yaml:"template"`
	Parameters map[string]any `yaml:"parameters,omitempty"`
}

// Resources carries repositories/containers/pipelines declarations. Local
// runs never dereference them; the declared aliases feed the template
// engine's cross-repo `path@alias` resolution (spec.md §4.2).
type Resources struct {
	Repositories []RepositoryResource `yaml:"repositories,omitempty"`
	Containers   []ContainerResource  `yaml:"containers,omitempty"`
	Pipelines    []PipelineResource   `yaml:"pipelines,omitempty"`
}

// RepositoryResource declares a named, aliasable external repository.
type RepositoryResource struct {
	Repository string `yaml:"repository"`
	Type       string `yaml:"type,omitempty"`
	Name       string `yaml:"name,omitempty"`
	Ref        string `yaml:"ref,omitempty"`
}

// ContainerResource declares a named container image resource.
type ContainerResource struct {
	Container string `yaml:"container"`
	Image     string `yaml:"image,omitempty"`
}

// PipelineResource declares a reference to another pipeline's artifacts.
type PipelineResource struct {
	Pipeline string `yaml:"pipeline"`
	Source   string `yaml:"source,omitempty"`
}

// TopLevelKind identifies which of stages/jobs/steps a pipeline declared,
// used by normalization and by the template engine's include-shape check.
type TopLevelKind int

// Top-level shape kinds.
const (
	KindStages TopLevelKind = iota
	KindJobs
	KindSteps
	KindEmpty
)

// Shape reports which top-level list the pipeline populated. Exactly one
// of Stages/Jobs/Steps may be non-empty before normalization (spec.md §3
// "Pipeline... root document").
func (p *Pipeline) Shape() (TopLevelKind, error) {
	n := 0
	k := KindEmpty
	if len(p.Stages) > 0 {
		n++
		k = KindStages
	}
	if len(p.Jobs) > 0 {
		n++
		k = KindJobs
	}
	if len(p.Steps) > 0 {
		n++
		k = KindSteps
	}
	if n > 1 {
		return KindEmpty, fmt.Errorf("model: pipeline declares more than one of stages/jobs/steps")
	}
	return k, nil
}
