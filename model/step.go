package model

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// StepKind identifies which of the mutually exclusive step forms a Step
// decoded to (spec.md §3 "Step").
type StepKind int

// Step kinds, one per discriminator key a step entry may carry.
const (
	StepScript StepKind = iota
	StepBash
	StepPwsh
	StepPowerShell
	StepCheckout
	StepTask
	StepTemplate
	StepDownload
	StepPublish
)

// Step is one entry of a job's steps list. Exactly one discriminator key
// (script/bash/pwsh/powershell/checkout/task/template/download/publish)
// selects its Kind; the remaining fields are the common envelope shared
// by every form (spec.md §3 "Step").
type Step struct {
	Kind StepKind

	Script     string `yaml:"script,omitempty"`
	Bash       string `yaml:"bash,omitempty"`
	Pwsh       string `yaml:"pwsh,omitempty"`
	PowerShell string `yaml:"powershell,omitempty"`
	Checkout   string `yaml:"checkout,omitempty"`
	Task       string `yaml:"task,omitempty"`
	Template   string `yaml:"template,omitempty"`
	Download   string `yaml:"download,omitempty"`
	Publish    string `yaml:"publish,omitempty"`

	Name             string            `yaml:"name,omitempty"`
	DisplayName      string            `yaml:"displayName,omitempty"`
	Condition        string            `yaml:"condition,omitempty"`
	ContinueOnError  bool              `yaml:"continueOnError,omitempty"`
	Enabled          *bool             `yaml:"enabled,omitempty"`
	TimeoutInMinutes *int              `yaml:"timeoutInMinutes,omitempty"`
	Env              map[string]string `yaml:"env,omitempty"`
	WorkingDirectory string            `yaml:"workingDirectory,omitempty"`

	// FailOnStderr makes a script-like step fail whenever it writes to
	// stderr, regardless of exit code (spec.md §4.5.4's Script variant:
	// `{script, workingDirectory?, failOnStderr}`). It is a sibling key
	// of script/bash/pwsh/powershell, not an inputs:-nested value.
	FailOnStderr bool `yaml:"failOnStderr,omitempty"`

	// Inputs carries the task's free-form `inputs:` map when Kind is
	// StepTask, and the publish/download target metadata otherwise.
	Inputs map[string]any `yaml:"inputs,omitempty"`

	// TemplateParameters carries the `parameters:` map passed to a
	// `template:` step include, eliminated by the template engine.
	TemplateParameters map[string]any `yaml:"parameters,omitempty"`

	ArtifactName string `yaml:"artifact,omitempty"`
}

// EffectiveEnabled reports whether the step should run at all, defaulting
// to true when `enabled:` was not set (spec.md §3 "Step").
func (s *Step) EffectiveEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// EffectiveCondition returns the step's condition, defaulting to
// succeeded() (spec.md §4.5.3).
func (s *Step) EffectiveCondition() string {
	if s.Condition != "" {
		return s.Condition
	}
	return "succeeded()"
}

// Command returns the shell text to run for the script-like step kinds,
// and reports whether Kind is one of them.
func (s *Step) Command() (string, bool) {
	switch s.Kind {
	case StepScript:
		return s.Script, true
	case StepBash:
		return s.Bash, true
	case StepPwsh:
		return s.Pwsh, true
	case StepPowerShell:
		return s.PowerShell, true
	}
	return "", false
}

// UnmarshalYAML decodes a step's envelope fields normally, then inspects
// which discriminator key is present to set Kind, mirroring the teacher's
// IncludeDecl scalar-vs-sequence node dispatch generalized to a
// multi-way discriminator.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("model: step must be a mapping, got node kind %v", node.Kind)
	}

	type rawStep Step
	var raw rawStep
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("model: step: %w", err)
	}
	*s = Step(raw)

	present := map[string]StepKind{
		"script":     StepScript,
		"bash":       StepBash,
		"pwsh":       StepPwsh,
		"powershell": StepPowerShell,
		"checkout":   StepCheckout,
		"task":       StepTask,
		"template":   StepTemplate,
		"download":   StepDownload,
		"publish":    StepPublish,
	}

	var found []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if _, ok := present[key]; ok {
			found = append(found, key)
		}
	}
	switch len(found) {
	case 0:
		return fmt.Errorf("model: step has no recognized discriminator key (script/bash/pwsh/powershell/checkout/task/template/download/publish)")
	case 1:
		s.Kind = present[found[0]]
		return nil
	default:
		return fmt.Errorf("model: step declares more than one discriminator key: %v", found)
	}
}
