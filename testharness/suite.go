// Package testharness implements the roxid-test.yml test suite runner
// (spec.md §6.3), evaluating each test's pipeline through runner.Execute
// and checking its declared assertions against the resulting
// model.ExecutionResult.
package testharness

import (
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

// Defaults holds suite-wide fallbacks every test inherits unless it
// overrides them.
type Defaults struct {
	WorkingDir string            `yaml:"workingDir,omitempty"`
	Variables  map[string]string `yaml:"variables,omitempty"`
}

// Test is one entry of a suite's `tests:` list.
type Test struct {
	Name       string            `yaml:"name"`
	Pipeline   string            `yaml:"pipeline"`
	Variables  map[string]string `yaml:"variables,omitempty"`
	Parameters map[string]any    `yaml:"parameters,omitempty"`
	Assertions []Assertion       `yaml:"assertions"`
}

// Suite is a parsed roxid-test.yml document.
type Suite struct {
	Name     string   `yaml:"name"`
	Defaults Defaults `yaml:"defaults,omitempty"`
	Tests    []Test   `yaml:"tests"`

	// Dir is the directory the suite file lives in, used to resolve each
	// test's relative `pipeline:` path.
	Dir string `yaml:"-"`
}

// Load parses the suite file at path.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testharness: reading %s: %w", path, err)
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testharness: parsing %s: %w", path, err)
	}
	s.Dir = filepath.Dir(path)
	return &s, nil
}

// PipelinePath resolves a test's pipeline path relative to the suite.
func (s *Suite) PipelinePath(t Test) string {
	if filepath.IsAbs(t.Pipeline) {
		return t.Pipeline
	}
	return filepath.Join(s.Dir, t.Pipeline)
}

// MergedVariables overlays a test's own variables on top of the suite's
// defaults, the test winning on conflict.
func (s *Suite) MergedVariables(t Test) map[string]string {
	merged := make(map[string]string, len(s.Defaults.Variables)+len(t.Variables))
	for k, v := range s.Defaults.Variables {
		merged[k] = v
	}
	for k, v := range t.Variables {
		merged[k] = v
	}
	return merged
}
