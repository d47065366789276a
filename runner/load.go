package runner

import (
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"

	"github.com/roxid-ci/roxid/expr"
	"github.com/roxid-ci/roxid/model"
	"github.com/roxid-ci/roxid/roxerr"
	"github.com/roxid-ci/roxid/template"
)

// Load reads, template-resolves, and normalizes the pipeline at path,
// implementing phases (A) Parse+Normalize and (B) Template Resolve end to
// end (spec.md §4.2 "Processing order").
func Load(path string, parameters map[string]any) (*model.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runner: reading %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, roxerr.New(roxerr.KindParse, err).WithLocation(path, 0, 0)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("runner: %s is empty", path)
	}
	root := doc.Content[0]

	declared, err := declaredParameters(root)
	if err != nil {
		return nil, fmt.Errorf("runner: %s: %w", path, err)
	}
	bound, err := template.BindParameters(declared, parameters)
	if err != nil {
		return nil, fmt.Errorf("runner: %s: %w", path, err)
	}

	ctx := &expr.Context{
		Mode: expr.ModeCompileTime,
		Namespaces: map[string]expr.Namespace{
			"parameters": template.ParametersNamespace(bound),
			"variables":  expr.MapNamespace{Root: expr.Object(nil, nil)},
		},
		Counters: globalCounters,
	}

	loader := template.FileLoader{BaseDir: filepath.Dir(path)}
	resolved, err := template.Resolve(&doc, ctx, loader)
	if err != nil {
		return nil, roxerr.New(roxerr.KindTemplate, err).WithLocation(path, 0, 0)
	}
	if len(resolved.Content) == 0 {
		return nil, fmt.Errorf("runner: %s resolved to an empty document", path)
	}

	var p model.Pipeline
	if err := resolved.Content[0].Decode(&p); err != nil {
		return nil, fmt.Errorf("runner: decoding %s: %w", path, err)
	}
	if err := p.Normalize(); err != nil {
		return nil, fmt.Errorf("runner: normalizing %s: %w", path, err)
	}
	return &p, nil
}

// declaredParameters decodes just the root `parameters:` list from the
// raw tree, before the rest of the document is template-resolved — the
// template engine needs declared defaults to bind parameters that feed
// ${{ parameters.x }} references elsewhere in the same document.
func declaredParameters(root *yaml.Node) ([]*model.Parameter, error) {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "parameters" {
			continue
		}
		var params []*model.Parameter
		if err := root.Content[i+1].Decode(&params); err != nil {
			return nil, fmt.Errorf("decoding parameters: %w", err)
		}
		return params, nil
	}
	return nil, nil
}
