// Package template implements phase (B) Template Resolve: the
// compile-time elimination of ${{ if }}/${{ each }} directives and
// ${{ parameters.x }} substitution, leaving a YAML document the model
// package can type-decode (spec.md §4.2). `template:` includes and
// `extends:` are not resolved: those entries pass through unchanged.
package template

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"

	"github.com/roxid-ci/roxid/expr"
)

// Loader fetches the raw YAML bytes for a template path, resolved
// relative to the including document (spec.md §4.2 "template path
// resolution"). The local filesystem loader lives in include.go.
type Loader interface {
	Load(path string) ([]byte, error)
}

// Resolve expands every template directive in root against ctx, returning
// a new, directive-free document node. root must be a yaml.Node decoded
// from an entire YAML document (its Kind is yaml.DocumentNode or the
// mapping/sequence at its head). loader is stored but never called:
// no template file is loaded.
func Resolve(root *yaml.Node, ctx *expr.Context, loader Loader) (*yaml.Node, error) {
	r := &resolver{ctx: ctx, loader: loader}
	return r.expand(root)
}

type resolver struct {
	ctx    *expr.Context
	loader Loader
}

func (r *resolver) expand(node *yaml.Node) (*yaml.Node, error) {
	if node == nil {
		return nil, nil
	}
	switch node.Kind {
	case yaml.DocumentNode:
		out := shallowCopy(node)
		for _, child := range node.Content {
			expanded, err := r.expand(child)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, expanded)
		}
		return out, nil
	case yaml.ScalarNode:
		return r.expandScalar(node)
	case yaml.SequenceNode:
		return r.expandSequence(node)
	case yaml.MappingNode:
		return r.expandMapping(node)
	case yaml.AliasNode:
		return r.expand(node.Alias)
	default:
		return node, nil
	}
}

// expandScalar substitutes a whole-form "${{ ... }}" scalar with the
// typed result of the expression, and any embedded forms within a larger
// string with their stringified result (spec.md §4.1 "three expression
// forms").
func (r *resolver) expandScalar(node *yaml.Node) (*yaml.Node, error) {
	if node.Tag != "!!str" && node.Tag != "" {
		return node, nil
	}
	if !containsTemplateForm(node.Value) {
		return node, nil
	}

	v, err := expr.EvaluateCompileTimeScalar(node.Value, r.ctx)
	if err != nil {
		return nil, fmt.Errorf("template: %s: %w", node.Value, err)
	}
	out := &yaml.Node{Kind: yaml.ScalarNode, Line: node.Line, Column: node.Column}
	if err := out.Encode(v.ToAny()); err != nil {
		return nil, fmt.Errorf("template: encoding %s: %w", node.Value, err)
	}
	return out, nil
}

// expandSequence walks a sequence's items, splicing ${{ each }} loop
// bodies and ${{ if/elseif/else }} conditional bodies in place of the
// single mapping entry that declared them (spec.md §4.2).
func (r *resolver) expandSequence(node *yaml.Node) (*yaml.Node, error) {
	out := shallowCopy(node)

	items := node.Content
	for i := 0; i < len(items); i++ {
		item := items[i]

		if item.Kind == yaml.MappingNode && len(item.Content) == 2 {
			key := item.Content[0]
			value := item.Content[1]

			if each, ok := parseEachDirective(key.Value); ok {
				spliced, err := r.expandEachInSequence(each, value)
				if err != nil {
					return nil, err
				}
				out.Content = append(out.Content, spliced...)
				continue
			}

			if branches, consumed, ok := r.collectIfChain(items, i); ok {
				spliced, err := r.expandIfChainInSequence(branches)
				if err != nil {
					return nil, err
				}
				out.Content = append(out.Content, spliced...)
				i += consumed - 1
				continue
			}
		}

		expanded, err := r.expand(item)
		if err != nil {
			return nil, err
		}
		out.Content = append(out.Content, expanded)
	}
	return out, nil
}

// expandMapping walks a mapping's key/value pairs, splicing ${{ each }}
// and ${{ if }} directive entries into key/value pairs of the parent
// mapping (spec.md §4.2 "object-position directives").
func (r *resolver) expandMapping(node *yaml.Node) (*yaml.Node, error) {
	out := shallowCopy(node)

	pairs := node.Content
	for i := 0; i+1 < len(pairs); i += 2 {
		key := pairs[i]
		value := pairs[i+1]

		if each, ok := parseEachDirective(key.Value); ok {
			spliced, err := r.expandEachInMapping(each, value)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, spliced...)
			continue
		}

		if branches, consumed, ok := r.collectIfChainMapping(pairs, i); ok {
			spliced, err := r.expandIfChainInMapping(branches)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, spliced...)
			i += consumed - 2
			continue
		}

		expandedKey, err := r.expand(key)
		if err != nil {
			return nil, err
		}
		expandedValue, err := r.expand(value)
		if err != nil {
			return nil, err
		}
		out.Content = append(out.Content, expandedKey, expandedValue)
	}
	return out, nil
}

func shallowCopy(node *yaml.Node) *yaml.Node {
	return &yaml.Node{
		Kind:    node.Kind,
		Tag:     node.Tag,
		Style:   node.Style,
		Line:    node.Line,
		Column:  node.Column,
		Content: make([]*yaml.Node, 0, len(node.Content)),
	}
}

func containsTemplateForm(s string) bool {
	return expr.TemplateFormRegex.MatchString(s)
}
