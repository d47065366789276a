package model

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// Job is one element of a stage's jobs list (spec.md §3 "Job").
type Job struct {
	ID          string         `yaml:"job"`
	DisplayName string         `yaml:"displayName,omitempty"`
	DependsOn   DependsOn      `yaml:"dependsOn,omitempty"`
	Condition   string         `yaml:"condition,omitempty"`
	Strategy    *Strategy      `yaml:"strategy,omitempty"`
	Pool        *Pool          `yaml:"pool,omitempty"`
	Container   string         `yaml:"container,omitempty"`
	Services    map[string]*Service `yaml:"services,omitempty"`
	Variables   VariablesBlock `yaml:"variables,omitempty"`
	Steps       []*Step        `yaml:"steps,omitempty"`
	TimeoutInMinutes *int      `yaml:"timeoutInMinutes,omitempty"`
	ContinueOnError bool       `yaml:"continueOnError,omitempty"`

	// Deployment holds the hook sequence selected from strategy's
	// runOnce/rolling/canary body when this entry used `deployment:`
	// instead of `job:` (spec.md §3 "Job ... deployment").
	Deployment *Deployment `yaml:"-"`

	// DeploymentID/Environment are set when this job entry used the
	// `deployment:` key instead of `job:`.
	DeploymentID string `yaml:"deployment,omitempty"`
	Environment  string `yaml:"environment,omitempty"`

	// Template references a job template include, eliminated in phase (B).
	Template           string         `yaml:"template,omitempty"`
	TemplateParameters map[string]any `yaml:"parameters,omitempty"`
}

// UnmarshalYAML decodes a job entry's common envelope, then resolves its
// `strategy:` key according to which of `job:`/`deployment:` selected it:
// a `deployment:` entry's strategy is a runOnce/rolling/canary hook
// sequence, while a `job:` entry's strategy is a matrix/parallel fan-out
// — the two share the same YAML key but decode to different shapes,
// mirroring Step's discriminator-key dispatch (spec.md §3 "Job").
func (j *Job) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("model: job must be a mapping, got node kind %v", node.Kind)
	}

	type rawJob Job
	var raw rawJob
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("model: job: %w", err)
	}
	*j = Job(raw)

	if j.DeploymentID == "" {
		return nil
	}

	j.ID = j.DeploymentID
	j.Strategy = nil

	strategyNode := findMappingValue(node, "strategy")
	if strategyNode == nil {
		return nil
	}
	var ds DeploymentStrategy
	if err := strategyNode.Decode(&ds); err != nil {
		return fmt.Errorf("model: job %q: deployment strategy: %w", j.ID, err)
	}
	switch {
	case ds.RunOnce != nil:
		j.Deployment = ds.RunOnce
	case ds.Rolling != nil:
		j.Deployment = ds.Rolling
	case ds.Canary != nil:
		j.Deployment = ds.Canary
	}
	return nil
}

// findMappingValue returns the value node paired with key in a mapping
// node, or nil if absent.
func findMappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// Service is a sidecar container started for the duration of a job
// (spec.md §3 "Job").
type Service struct {
	Image string            `yaml:"image,omitempty"`
	Ports []string          `yaml:"ports,omitempty"`
	Env   map[string]string `yaml:"env,omitempty"`
}

// Deployment is the discriminated variant carried when a job entry uses
// `deployment:` with a `strategy.runOnce/rolling/canary` hook sequence
// (spec.md §3 "Job ... deployment").
type Deployment struct {
	PreDeploy        []*Step `yaml:"preDeploy,omitempty"`
	Deploy           []*Step `yaml:"deploy,omitempty"`
	RouteTraffic     []*Step `yaml:"routeTraffic,omitempty"`
	PostRouteTraffic []*Step `yaml:"postRouteTraffic,omitempty"`
}

// DeploymentStrategy selects which of runOnce/rolling/canary wraps the
// deployment hooks. All three carry the same hook shape locally — the
// differences between them are scheduling-only concerns this engine
// intentionally does not simulate (see DESIGN.md Open Question).
type DeploymentStrategy struct {
	RunOnce *Deployment `yaml:"runOnce,omitempty"`
	Rolling *Deployment `yaml:"rolling,omitempty"`
	Canary  *Deployment `yaml:"canary,omitempty"`
}

// EffectiveCondition returns the job's condition, defaulting to
// succeeded() over dependsOn jobs (spec.md §4.5.3).
func (j *Job) EffectiveCondition() string {
	if j.Condition != "" {
		return j.Condition
	}
	return "succeeded()"
}

// EffectiveSteps returns the step list to execute: the deployment hook
// concatenation when Deployment is set, otherwise Steps (spec.md §3 "Job
// ... the effective step list is the concatenation of those hooks").
func (j *Job) EffectiveSteps() []*Step {
	if j.Deployment != nil {
		var all []*Step
		all = append(all, j.Deployment.PreDeploy...)
		all = append(all, j.Deployment.Deploy...)
		all = append(all, j.Deployment.RouteTraffic...)
		all = append(all, j.Deployment.PostRouteTraffic...)
		return all
	}
	return j.Steps
}
