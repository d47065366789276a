package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// FuncEntry is a registered built-in function.
type FuncEntry func(args []Value, ctx *Context) (Value, error)

var builtins map[string]FuncEntry

func init() {
	builtins = map[string]FuncEntry{
		// Comparison
		"eq":     func(a []Value, c *Context) (Value, error) { return arity2(a, "eq", func(x, y Value) Value { return Bool(valuesEqual(x, y)) }) },
		"ne":     func(a []Value, c *Context) (Value, error) { return arity2(a, "ne", func(x, y Value) Value { return Bool(!valuesEqual(x, y)) }) },
		"lt":     func(a []Value, c *Context) (Value, error) { return arity2(a, "lt", func(x, y Value) Value { return Bool(compareOrdered(x, y, TokLt)) }) },
		"le":     func(a []Value, c *Context) (Value, error) { return arity2(a, "le", func(x, y Value) Value { return Bool(compareOrdered(x, y, TokLe)) }) },
		"gt":     func(a []Value, c *Context) (Value, error) { return arity2(a, "gt", func(x, y Value) Value { return Bool(compareOrdered(x, y, TokGt)) }) },
		"ge":     func(a []Value, c *Context) (Value, error) { return arity2(a, "ge", func(x, y Value) Value { return Bool(compareOrdered(x, y, TokGe)) }) },
		"in":     fnIn,
		"notin":  func(a []Value, c *Context) (Value, error) { v, err := fnIn(a, c); return Bool(!v.Truthy()), err },

		// Logical
		"and": fnAnd,
		"or":  fnOr,
		"not": func(a []Value, c *Context) (Value, error) {
			if err := checkArity("not", a, 1, 1); err != nil {
				return Null, err
			}
			return Bool(!a[0].Truthy()), nil
		},
		"xor": func(a []Value, c *Context) (Value, error) {
			if err := checkArity("xor", a, 2, 2); err != nil {
				return Null, err
			}
			return Bool(a[0].Truthy() != a[1].Truthy()), nil
		},

		// String
		"contains":   fnContains,
		"startswith": fnStartsWith,
		"endswith":   fnEndsWith,
		"format":     fnFormat,
		"join":       fnJoin,
		"replace":    fnReplace,
		"split":      fnSplit,
		"lower":      fnLower,
		"upper":      fnUpper,
		"trim":       fnTrim,

		// Conversion
		"converttojson": func(a []Value, c *Context) (Value, error) {
			if err := checkArity("convertToJson", a, 1, 1); err != nil {
				return Null, err
			}
			return String(a[0].ToJSON()), nil
		},

		// Status
		"succeeded":        fnSucceeded,
		"failed":           fnFailed,
		"canceled":         fnCanceled,
		"always":           func(a []Value, c *Context) (Value, error) { return Bool(true), nil },
		"succeededorfailed": fnSucceededOrFailed,

		// Utility
		"coalesce": fnCoalesce,
		"counter":  fnCounter,
		"iif":      fnIif,
	}
}

// CallFunction dispatches a case-insensitive built-in function call.
func CallFunction(name string, args []Value, ctx *Context) (Value, error) {
	fn, ok := builtins[strings.ToLower(name)]
	if !ok {
		return Null, fmt.Errorf("expr: unknown function %q", name)
	}
	return fn(args, ctx)
}

func checkArity(name string, args []Value, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		want := strconv.Itoa(min)
		if max != min {
			if max < 0 {
				want = fmt.Sprintf("at least %d", min)
			} else {
				want = fmt.Sprintf("%d-%d", min, max)
			}
		}
		return &ArityError{Func: name, Want: want, Got: len(args)}
	}
	return nil
}

func arity2(a []Value, name string, f func(x, y Value) Value) (Value, error) {
	if err := checkArity(name, a, 2, 2); err != nil {
		return Null, err
	}
	return f(a[0], a[1]), nil
}

func fnIn(a []Value, _ *Context) (Value, error) {
	if err := checkArity("in", a, 2, -1); err != nil {
		return Null, err
	}
	needle := a[0]
	for _, hay := range a[1:] {
		if valuesEqual(needle, hay) {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func fnAnd(a []Value, _ *Context) (Value, error) {
	if err := checkArity("and", a, 2, -1); err != nil {
		return Null, err
	}
	for _, v := range a {
		if !v.Truthy() {
			return Bool(false), nil
		}
	}
	return Bool(true), nil
}

func fnOr(a []Value, _ *Context) (Value, error) {
	if err := checkArity("or", a, 2, -1); err != nil {
		return Null, err
	}
	for _, v := range a {
		if v.Truthy() {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func fnContains(a []Value, _ *Context) (Value, error) {
	if err := checkArity("contains", a, 2, 2); err != nil {
		return Null, err
	}
	if a[0].Kind() == KindArray {
		for _, e := range a[0].RawArray() {
			if valuesEqual(e, a[1]) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	}
	return Bool(strings.Contains(strings.ToLower(a[0].String()), strings.ToLower(a[1].String()))), nil
}

func fnStartsWith(a []Value, _ *Context) (Value, error) {
	if err := checkArity("startsWith", a, 2, 2); err != nil {
		return Null, err
	}
	return Bool(strings.HasPrefix(strings.ToLower(a[0].String()), strings.ToLower(a[1].String()))), nil
}

func fnEndsWith(a []Value, _ *Context) (Value, error) {
	if err := checkArity("endsWith", a, 2, 2); err != nil {
		return Null, err
	}
	return Bool(strings.HasSuffix(strings.ToLower(a[0].String()), strings.ToLower(a[1].String()))), nil
}

// fnFormat implements format(template, args...) with {0}, {1}, ... indexed
// placeholders (spec.md §4.1).
func fnFormat(a []Value, _ *Context) (Value, error) {
	if err := checkArity("format", a, 1, -1); err != nil {
		return Null, err
	}
	tmpl := a[0].String()
	args := a[1:]
	var sb strings.Builder
	i := 0
	for i < len(tmpl) {
		if tmpl[i] == '{' {
			end := strings.IndexByte(tmpl[i:], '}')
			if end > 0 {
				idxStr := tmpl[i+1 : i+end]
				if idx, err := strconv.Atoi(idxStr); err == nil && idx >= 0 && idx < len(args) {
					sb.WriteString(args[idx].String())
					i += end + 1
					continue
				}
			}
		}
		sb.WriteByte(tmpl[i])
		i++
	}
	return String(sb.String()), nil
}

func fnJoin(a []Value, _ *Context) (Value, error) {
	if err := checkArity("join", a, 2, 2); err != nil {
		return Null, err
	}
	sep := a[1].String()
	if a[0].Kind() != KindArray {
		return String(a[0].String()), nil
	}
	parts := make([]string, len(a[0].RawArray()))
	for i, e := range a[0].RawArray() {
		parts[i] = e.String()
	}
	return String(strings.Join(parts, sep)), nil
}

func fnReplace(a []Value, _ *Context) (Value, error) {
	if err := checkArity("replace", a, 3, 3); err != nil {
		return Null, err
	}
	return String(strings.ReplaceAll(a[0].String(), a[1].String(), a[2].String())), nil
}

func fnSplit(a []Value, _ *Context) (Value, error) {
	if err := checkArity("split", a, 2, 2); err != nil {
		return Null, err
	}
	parts := strings.Split(a[0].String(), a[1].String())
	vals := make([]Value, len(parts))
	for i, p := range parts {
		vals[i] = String(p)
	}
	return Array(vals), nil
}

func fnLower(a []Value, _ *Context) (Value, error) {
	if err := checkArity("lower", a, 1, 1); err != nil {
		return Null, err
	}
	return String(strings.ToLower(a[0].String())), nil
}

func fnUpper(a []Value, _ *Context) (Value, error) {
	if err := checkArity("upper", a, 1, 1); err != nil {
		return Null, err
	}
	return String(strings.ToUpper(a[0].String())), nil
}

func fnTrim(a []Value, _ *Context) (Value, error) {
	if err := checkArity("trim", a, 1, 1); err != nil {
		return Null, err
	}
	return String(strings.TrimSpace(a[0].String())), nil
}

func statusArgs(a []Value, ctx *Context) []ScopeStatus {
	if ctx == nil || ctx.Status == nil {
		return nil
	}
	if len(a) == 0 {
		return ctx.Status.DependencyStatuses(nil)
	}
	ids := make([]string, len(a))
	for i, v := range a {
		ids[i] = v.String()
	}
	return ctx.Status.DependencyStatuses(ids)
}

func fnSucceeded(a []Value, ctx *Context) (Value, error) {
	statuses := statusArgs(a, ctx)
	if statuses == nil {
		return Bool(true), nil
	}
	for _, s := range statuses {
		if s.Failed || s.Canceled {
			return Bool(false), nil
		}
	}
	return Bool(true), nil
}

func fnFailed(a []Value, ctx *Context) (Value, error) {
	statuses := statusArgs(a, ctx)
	for _, s := range statuses {
		if s.Failed {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func fnCanceled(a []Value, ctx *Context) (Value, error) {
	statuses := statusArgs(a, ctx)
	for _, s := range statuses {
		if s.Canceled {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func fnSucceededOrFailed(a []Value, ctx *Context) (Value, error) {
	statuses := statusArgs(a, ctx)
	for _, s := range statuses {
		if s.Canceled {
			return Bool(false), nil
		}
	}
	return Bool(true), nil
}

// fnCoalesce returns the first argument that is neither Null nor an empty
// string (spec.md §4.1 "first non-null/non-empty").
func fnCoalesce(a []Value, _ *Context) (Value, error) {
	for _, v := range a {
		if v.IsNull() {
			continue
		}
		if v.Kind() == KindString && v.String() == "" {
			continue
		}
		return v, nil
	}
	return Null, nil
}

func fnCounter(a []Value, ctx *Context) (Value, error) {
	if err := checkArity("counter", a, 2, 2); err != nil {
		return Null, err
	}
	name := a[0].String()
	seed, _ := a[1].AsNumber()
	if ctx == nil || ctx.Counters == nil {
		return Number(seed), nil
	}
	return Number(float64(ctx.Counters.Next(name, int64(seed)))), nil
}

func fnIif(a []Value, _ *Context) (Value, error) {
	if err := checkArity("iif", a, 3, 3); err != nil {
		return Null, err
	}
	if a[0].Truthy() {
		return a[1], nil
	}
	return a[2], nil
}
