package model

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// DependsOn is a union of string | []string, matching the YAML shorthand
// Azure DevOps allows for `dependsOn:` (spec.md §3 Stage/Job).
type DependsOn []string

// UnmarshalYAML accepts either a scalar or a sequence of scalars, mirroring
// the teacher's IncludeDecl.UnmarshalYAML node-kind dispatch.
func (d *DependsOn) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value != "" {
			*d = DependsOn{node.Value}
		}
		return nil
	case yaml.SequenceNode:
		var multi []string
		if err := node.Decode(&multi); err != nil {
			return fmt.Errorf("model: dependsOn sequence: %w", err)
		}
		*d = DependsOn(multi)
		return nil
	case 0:
		return nil
	}
	return fmt.Errorf("model: dependsOn must be a string or list of strings, got node kind %v", node.Kind)
}
