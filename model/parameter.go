package model

import "fmt"

// ParameterType enumerates the typed-parameter kinds allowed in a
// `parameters:` block (spec.md §3 "Parameter").
type ParameterType string

// Parameter type names, matching Azure DevOps' typed template parameters.
const (
	ParamString    ParameterType = "string"
	ParamNumber    ParameterType = "number"
	ParamBoolean   ParameterType = "boolean"
	ParamObject    ParameterType = "object"
	ParamStep      ParameterType = "step"
	ParamStepList  ParameterType = "stepList"
	ParamJob       ParameterType = "job"
	ParamJobList   ParameterType = "jobList"
	ParamStage     ParameterType = "stage"
	ParamStageList ParameterType = "stageList"
)

// Parameter declares one entry of a pipeline or template's `parameters:`
// block, including its default and, for scalar types, an optional
// whitelist of allowed values.
type Parameter struct {
	Name    string        `yaml:"name"`
	Type    ParameterType `yaml:"type,omitempty"`
	Default any           `yaml:"default,omitempty"`
	Values  []any         `yaml:"values,omitempty"`
}

// EffectiveType returns p.Type, defaulting to "string" when unset, matching
// Azure DevOps' own default (spec.md §3 "Parameter").
func (p *Parameter) EffectiveType() ParameterType {
	if p.Type == "" {
		return ParamString
	}
	return p.Type
}

// Validate checks v against the parameter's type and, for scalar types,
// its values whitelist (spec.md §4.2 "typed parameter resolution").
func (p *Parameter) Validate(v any) error {
	switch p.EffectiveType() {
	case ParamString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("model: parameter %q: expected string, got %T", p.Name, v)
		}
	case ParamNumber:
		switch v.(type) {
		case int, int64, float64:
		default:
			return fmt.Errorf("model: parameter %q: expected number, got %T", p.Name, v)
		}
	case ParamBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("model: parameter %q: expected boolean, got %T", p.Name, v)
		}
	case ParamObject, ParamStep, ParamStepList, ParamJob, ParamJobList, ParamStage, ParamStageList:
		// Structural types are validated by the template engine when it
		// splices the resolved value into its target position, not here.
		return nil
	default:
		return fmt.Errorf("model: parameter %q: unknown type %q", p.Name, p.Type)
	}
	if len(p.Values) == 0 {
		return nil
	}
	for _, allowed := range p.Values {
		if fmt.Sprint(allowed) == fmt.Sprint(v) {
			return nil
		}
	}
	return fmt.Errorf("model: parameter %q: value %v not in allowed values %v", p.Name, v, p.Values)
}
