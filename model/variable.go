package model

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// VariableEntry is one element of a variables block: a literal key/value
// pair, a variable-group reference, or a nested template include
// (spec.md §3 "Variable").
type VariableEntry struct {
	Name  string `yaml:"name,omitempty"`
	Value any    `yaml:"value,omitempty"`

	Group string `yaml:"group,omitempty"`

	Template   string         `yaml:"template,omitempty"`
	Parameters map[string]any `yaml:"parameters,omitempty"`
}

// IsGroup reports whether this entry references a variable group rather
// than declaring a literal.
func (v *VariableEntry) IsGroup() bool { return v.Group != "" }

// IsTemplate reports whether this entry is a nested variables template
// include, eliminated by the template engine before normalization sees it.
func (v *VariableEntry) IsTemplate() bool { return v.Template != "" }

// VariablesBlock accepts either the Azure DevOps mapping shorthand
// (`variables: {key: value, ...}`) or the list-of-entries form
// (`variables: [{name: key, value: v}, {group: name}, ...]`), matching
// the teacher's IncludeDecl-style node-kind dispatch.
type VariablesBlock []VariableEntry

// UnmarshalYAML dispatches on the node kind: a mapping node decodes as
// literal name/value pairs in document order; a sequence node decodes as
// a list of VariableEntry.
func (b *VariablesBlock) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var entries VariablesBlock
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			var val any
			if err := valNode.Decode(&val); err != nil {
				return fmt.Errorf("model: variables.%s: %w", keyNode.Value, err)
			}
			entries = append(entries, VariableEntry{Name: keyNode.Value, Value: val})
		}
		*b = entries
		return nil
	case yaml.SequenceNode:
		var entries []VariableEntry
		if err := node.Decode(&entries); err != nil {
			return fmt.Errorf("model: variables sequence: %w", err)
		}
		*b = entries
		return nil
	case 0:
		*b = nil
		return nil
	}
	return fmt.Errorf("model: variables must be a mapping or a list of entries, got node kind %v", node.Kind)
}
