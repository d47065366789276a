package template

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"

	"github.com/roxid-ci/roxid/expr"
)

type ifBranch struct {
	condition string // empty for the trailing else
	isElse    bool
	value     *yaml.Node
}

// collectIfChain gathers the ${{ if }} entry at items[i] plus any
// following ${{ elseif }}/${{ else }} sibling entries in a sequence.
func (r *resolver) collectIfChain(items []*yaml.Node, i int) ([]ifBranch, int, bool) {
	key := items[i].Content[0]
	directive, ok := parseIfDirective(key.Value)
	if !ok || directive.Kind != "if" {
		return nil, 0, false
	}

	branches := []ifBranch{{condition: directive.Condition, value: items[i].Content[1]}}
	consumed := 1

	for j := i + 1; j < len(items); j++ {
		next := items[j]
		if next.Kind != yaml.MappingNode || len(next.Content) != 2 {
			break
		}
		nextKey := next.Content[0].Value
		if d, ok := parseIfDirective(nextKey); ok && d.Kind == "elseif" {
			branches = append(branches, ifBranch{condition: d.Condition, value: next.Content[1]})
			consumed++
			continue
		}
		if isElseDirective(nextKey) {
			branches = append(branches, ifBranch{isElse: true, value: next.Content[1]})
			consumed++
		}
		break
	}
	return branches, consumed, true
}

// collectIfChainMapping is the object-position analogue of
// collectIfChain: pairs is a flattened key/value list and i is the key
// index of the ${{ if }} entry.
func (r *resolver) collectIfChainMapping(pairs []*yaml.Node, i int) ([]ifBranch, int, bool) {
	directive, ok := parseIfDirective(pairs[i].Value)
	if !ok || directive.Kind != "if" {
		return nil, 0, false
	}

	branches := []ifBranch{{condition: directive.Condition, value: pairs[i+1]}}
	consumed := 2

	for j := i + 2; j+1 < len(pairs); j += 2 {
		nextKey := pairs[j].Value
		if d, ok := parseIfDirective(nextKey); ok && d.Kind == "elseif" {
			branches = append(branches, ifBranch{condition: d.Condition, value: pairs[j+1]})
			consumed += 2
			continue
		}
		if isElseDirective(nextKey) {
			branches = append(branches, ifBranch{isElse: true, value: pairs[j+1]})
			consumed += 2
		}
		break
	}
	return branches, consumed, true
}

func (r *resolver) chosenBranch(branches []ifBranch) (*yaml.Node, error) {
	for _, b := range branches {
		if b.isElse {
			return b.value, nil
		}
		v, err := expr.EvaluateCompileTime(b.condition, r.ctx)
		if err != nil {
			return nil, fmt.Errorf("template: if %s: %w", b.condition, err)
		}
		if v.Truthy() {
			return b.value, nil
		}
	}
	return nil, nil
}

func (r *resolver) expandIfChainInSequence(branches []ifBranch) ([]*yaml.Node, error) {
	chosen, err := r.chosenBranch(branches)
	if err != nil || chosen == nil {
		return nil, err
	}
	return r.splatSequence(chosen)
}

func (r *resolver) expandIfChainInMapping(branches []ifBranch) ([]*yaml.Node, error) {
	chosen, err := r.chosenBranch(branches)
	if err != nil || chosen == nil {
		return nil, err
	}
	return r.splatMapping(chosen)
}

// splatSequence expands node and flattens it into a list of sequence
// items: a sequence splices its own items, anything else becomes one
// item.
func (r *resolver) splatSequence(node *yaml.Node) ([]*yaml.Node, error) {
	expanded, err := r.expand(node)
	if err != nil {
		return nil, err
	}
	if expanded.Kind == yaml.SequenceNode {
		return expanded.Content, nil
	}
	return []*yaml.Node{expanded}, nil
}

// splatMapping expands node and flattens it into a list of key/value
// pairs to merge into the parent mapping.
func (r *resolver) splatMapping(node *yaml.Node) ([]*yaml.Node, error) {
	expanded, err := r.expand(node)
	if err != nil {
		return nil, err
	}
	if expanded.Kind == yaml.MappingNode {
		return expanded.Content, nil
	}
	return nil, fmt.Errorf("template: if/each body in object position must be a mapping")
}

func (r *resolver) iterate(each *eachDirective) ([]expr.Value, error) {
	node, err := expr.Parse(each.Expr)
	if err != nil {
		return nil, fmt.Errorf("template: each %s: %w", each.Expr, err)
	}
	v, err := expr.Eval(node, r.ctx)
	if err != nil {
		return nil, fmt.Errorf("template: each %s: %w", each.Expr, err)
	}
	switch v.Kind() {
	case expr.KindArray:
		return v.RawArray(), nil
	case expr.KindObject:
		// spec.md §4.2 phase 3a: "${{ each }}" accepts an array or
		// object; for an object each.Var is bound to each value in the
		// object's key order (sorted, for objects built from decoded
		// YAML); keys are not separately exposed.
		obj, keys := v.RawObject()
		values := make([]expr.Value, 0, len(keys))
		for _, k := range keys {
			values = append(values, obj[k])
		}
		return values, nil
	default:
		return nil, fmt.Errorf("template: each %s: expected a list or object, got %s", each.Expr, v.Kind())
	}
}

// withLoopVar returns a new resolver whose context copies r.ctx's
// namespaces and binds name to item; r.ctx itself is left unchanged, so
// no restore is needed after the iteration.
func (r *resolver) withLoopVar(name string, item expr.Value) *resolver {
	namespaces := make(map[string]expr.Namespace, len(r.ctx.Namespaces)+1)
	for k, v := range r.ctx.Namespaces {
		namespaces[k] = v
	}
	namespaces[name] = expr.MapNamespace{Root: item}
	return &resolver{ctx: &expr.Context{Namespaces: namespaces, Mode: r.ctx.Mode, Status: r.ctx.Status, Counters: r.ctx.Counters}, loader: r.loader}
}

func (r *resolver) expandEachInSequence(each *eachDirective, body *yaml.Node) ([]*yaml.Node, error) {
	items, err := r.iterate(each)
	if err != nil {
		return nil, err
	}
	var out []*yaml.Node
	for _, item := range items {
		sub := r.withLoopVar(each.Var, item)
		spliced, err := sub.splatSequence(body)
		if err != nil {
			return nil, err
		}
		out = append(out, spliced...)
	}
	return out, nil
}

func (r *resolver) expandEachInMapping(each *eachDirective, body *yaml.Node) ([]*yaml.Node, error) {
	items, err := r.iterate(each)
	if err != nil {
		return nil, err
	}
	var out []*yaml.Node
	for _, item := range items {
		sub := r.withLoopVar(each.Var, item)
		spliced, err := sub.splatMapping(body)
		if err != nil {
			return nil, err
		}
		out = append(out, spliced...)
	}
	return out, nil
}
