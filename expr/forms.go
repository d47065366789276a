package expr

import (
	"fmt"
	"regexp"
	"strings"
)

// TemplateFormRegex matches ${{ expr }} occurrences in scalar text.
var TemplateFormRegex = regexp.MustCompile(`\$\{\{\s*(.*?)\s*\}\}`)

// RuntimeFormRegex matches $[ expr ] occurrences in variable values.
var RuntimeFormRegex = regexp.MustCompile(`\$\[\s*(.*?)\s*\]`)

// macroRegex matches $(identifier) occurrences for textual macro
// substitution (spec.md §4.1: "Not recursive").
var macroRegex = regexp.MustCompile(`\$\(([A-Za-z_][A-Za-z0-9_.]*)\)`)

// IsWholeTemplateForm reports whether s is exactly one ${{ ... }} form
// with nothing else around it — used by the template engine to decide
// whether to preserve the evaluated Value's type or coerce it to string.
func IsWholeTemplateForm(s string) (body string, ok bool) {
	m := TemplateFormRegex.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	if m[0] != s {
		return "", false
	}
	return m[1], true
}

// IsWholeRuntimeForm reports whether s is exactly one $[ ... ] form.
func IsWholeRuntimeForm(s string) (body string, ok bool) {
	if !strings.HasPrefix(s, "$[") || !strings.HasSuffix(s, "]") {
		return "", false
	}
	body = s[2 : len(s)-1]
	if strings.Contains(body, "$[") {
		return "", false
	}
	return strings.TrimSpace(body), true
}

// EvaluateCompileTime parses and evaluates the body of a ${{ }} form.
// Per spec.md §4.1, references into runtime-only namespaces degrade to
// Null rather than erroring; only syntax/arity problems are hard errors.
func EvaluateCompileTime(body string, ctx *Context) (Value, error) {
	node, err := Parse(body)
	if err != nil {
		return Null, err
	}
	saved := ctx.Mode
	ctx.Mode = ModeCompileTime
	defer func() { ctx.Mode = saved }()
	return Eval(node, ctx)
}

// EvaluateRuntime parses and evaluates the body of a $[ ] form with full
// runtime context; missing references return Null.
func EvaluateRuntime(body string, ctx *Context) (Value, error) {
	node, err := Parse(body)
	if err != nil {
		return Null, err
	}
	saved := ctx.Mode
	ctx.Mode = ModeRuntime
	defer func() { ctx.Mode = saved }()
	return Eval(node, ctx)
}

// SubstituteMacros performs textual $(identifier) replacement using the
// variables namespace's current string values. Unresolved occurrences are
// left literal; the result is not re-scanned (non-recursive).
func SubstituteMacros(text string, ctx *Context) string {
	return macroRegex.ReplaceAllStringFunc(text, func(match string) string {
		sub := macroRegex.FindStringSubmatch(match)
		name := sub[1]
		val := ctx.Lookup("variables", pathFromDotted(name))
		if val.IsNull() {
			return match
		}
		return val.String()
	})
}

func pathFromDotted(name string) []PathSegment {
	var segs []PathSegment
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '.' {
			segs = append(segs, PathSegment{Field: name[start:i]})
			start = i + 1
		}
	}
	return segs
}

// EvaluateCompileTimeScalar evaluates every ${{ }} occurrence in a scalar
// string. If the whole scalar is a single form, the evaluated Value is
// returned with its native type; otherwise occurrences are coerced to
// strings and spliced back in, and the result is a String.
func EvaluateCompileTimeScalar(s string, ctx *Context) (Value, error) {
	if body, ok := IsWholeTemplateForm(s); ok {
		return EvaluateCompileTime(body, ctx)
	}
	var evalErr error
	result := TemplateFormRegex.ReplaceAllStringFunc(s, func(match string) string {
		if evalErr != nil {
			return match
		}
		sub := TemplateFormRegex.FindStringSubmatch(match)
		v, err := EvaluateCompileTime(sub[1], ctx)
		if err != nil {
			evalErr = err
			return match
		}
		return v.String()
	})
	if evalErr != nil {
		return Null, fmt.Errorf("expr: evaluating embedded template expression: %w", evalErr)
	}
	return String(result), nil
}
