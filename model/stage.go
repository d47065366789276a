package model

// Stage is one element of the pipeline's top-level stages list
// (spec.md §3 "Stage").
type Stage struct {
	ID          string         `yaml:"stage"`
	DisplayName string         `yaml:"displayName,omitempty"`
	DependsOn   DependsOn      `yaml:"dependsOn,omitempty"`
	Condition   string         `yaml:"condition,omitempty"`
	Variables   VariablesBlock `yaml:"variables,omitempty"`
	Jobs        []*Job         `yaml:"jobs,omitempty"`
	Pool        *Pool          `yaml:"pool,omitempty"`

	// Steps supports the shorthand where a stage has an implicit single
	// job made of a bare steps list.
	Steps []*Step `yaml:"steps,omitempty"`

	// Template references a stage template include, eliminated by the
	// template engine in phase (B); never present afterward.
	Template   string         `yaml:"template,omitempty"`
	TemplateParameters map[string]any `yaml:"parameters,omitempty"`
}

// EffectiveCondition returns the stage's condition, defaulting to
// succeeded() over dependsOn stages (spec.md §4.5.3).
func (s *Stage) EffectiveCondition() string {
	if s.Condition != "" {
		return s.Condition
	}
	return "succeeded()"
}
