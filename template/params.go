package template

import (
	"fmt"

	"github.com/roxid-ci/roxid/expr"
	"github.com/roxid-ci/roxid/model"
)

// BindParameters applies defaults for any parameter the caller omitted,
// validates every supplied value against its declared type/values
// whitelist, and returns the resulting name->value map ready to become
// the "parameters" namespace (spec.md §4.2 "typed parameter resolution").
func BindParameters(declared []*model.Parameter, supplied map[string]any) (map[string]any, error) {
	bound := make(map[string]any, len(declared))

	for _, p := range declared {
		v, ok := supplied[p.Name]
		if !ok {
			if p.Default == nil {
				return nil, fmt.Errorf("template: parameter %q has no default and was not supplied", p.Name)
			}
			v = p.Default
		}
		if err := p.Validate(v); err != nil {
			return nil, err
		}
		bound[p.Name] = v
	}

	for name := range supplied {
		if !declaredContains(declared, name) {
			return nil, fmt.Errorf("template: unknown parameter %q", name)
		}
	}

	return bound, nil
}

func declaredContains(declared []*model.Parameter, name string) bool {
	for _, p := range declared {
		if p.Name == name {
			return true
		}
	}
	return false
}

// ParametersNamespace converts a bound parameter map into the
// expr.Namespace the resolver's "parameters" root dispatches to.
func ParametersNamespace(bound map[string]any) expr.Namespace {
	values := make(map[string]expr.Value, len(bound))
	keys := make([]string, 0, len(bound))
	for k, v := range bound {
		values[k] = expr.FromAny(v)
		keys = append(keys, k)
	}
	return expr.MapNamespace{Root: expr.Object(values, keys)}
}
