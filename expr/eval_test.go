package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roxid-ci/roxid/expr"
)

func evalStr(t *testing.T, src string, ctx *expr.Context) expr.Value {
	t.Helper()
	node, err := expr.Parse(src)
	require.NoError(t, err)
	v, err := expr.Eval(node, ctx)
	require.NoError(t, err)
	return v
}

func TestLiteralsAndArithmetic(t *testing.T) {
	ctx := &expr.Context{Namespaces: map[string]expr.Namespace{}}

	assert.Equal(t, "7", evalStr(t, "3 + 4", ctx).String())
	assert.Equal(t, "12", evalStr(t, "3 * 4", ctx).String())
	assert.Equal(t, "True", evalStr(t, "1 == 1", ctx).String())
	assert.Equal(t, "False", evalStr(t, "1 == 2", ctx).String())
	assert.Equal(t, "hi there", evalStr(t, "'hi' + ' there'", ctx).String())
}

func TestTernaryAndLogic(t *testing.T) {
	ctx := &expr.Context{Namespaces: map[string]expr.Namespace{}}
	assert.Equal(t, "yes", evalStr(t, "true ? 'yes' : 'no'", ctx).String())
	assert.Equal(t, "True", evalStr(t, "true && true", ctx).String())
	assert.Equal(t, "False", evalStr(t, "true && false", ctx).String())
	assert.Equal(t, "True", evalStr(t, "false || true", ctx).String())
}

func TestVariableLookupCaseInsensitive(t *testing.T) {
	vars := expr.Object(map[string]expr.Value{"Build.Reason": expr.String("Manual")}, []string{"Build.Reason"})
	ctx := &expr.Context{Namespaces: map[string]expr.Namespace{
		"variables": expr.MapNamespace{Root: vars},
	}}
	assert.Equal(t, "Manual", evalStr(t, "VARIABLES['Build.Reason']", ctx).String())
	assert.Equal(t, "Manual", evalStr(t, "variables['Build.Reason']", ctx).String())
}

func TestMissingReferenceReturnsNull(t *testing.T) {
	ctx := &expr.Context{Namespaces: map[string]expr.Namespace{}}
	v := evalStr(t, "variables.doesNotExist", ctx)
	assert.True(t, v.IsNull())
}

func TestFunctions(t *testing.T) {
	ctx := &expr.Context{Namespaces: map[string]expr.Namespace{}}
	assert.Equal(t, "True", evalStr(t, "eq('a', 'A')", ctx).String())
	assert.Equal(t, "True", evalStr(t, "contains('hello world', 'WORLD')", ctx).String())
	assert.Equal(t, "a,b,c", evalStr(t, "join(['a','b','c'], ',')", ctx).String())
	assert.Equal(t, "HELLO", evalStr(t, "upper('hello')", ctx).String())
	assert.Equal(t, "True", evalStr(t, "in('b', 'a', 'b', 'c')", ctx).String())
	assert.Equal(t, "yes", evalStr(t, "iif(1 > 0, 'yes', 'no')", ctx).String())
}

func TestCompileTimeRuntimeOnlyIsNull(t *testing.T) {
	ctx := &expr.Context{Namespaces: map[string]expr.Namespace{
		"steps": expr.MapNamespace{Root: expr.Object(map[string]expr.Value{}, nil)},
	}}
	v, err := expr.EvaluateCompileTime("steps.build.outputs.version", ctx)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestSubstituteMacrosNotRecursive(t *testing.T) {
	vars := expr.Object(map[string]expr.Value{"a": expr.String("$(b)"), "b": expr.String("final")}, []string{"a", "b"})
	ctx := &expr.Context{Namespaces: map[string]expr.Namespace{"variables": expr.MapNamespace{Root: vars}}}
	out := expr.SubstituteMacros("value=$(a)", ctx)
	assert.Equal(t, "value=$(b)", out)
}

func TestSyntaxErrorHasPosition(t *testing.T) {
	_, err := expr.Parse("1 +")
	require.Error(t, err)
	var synErr *expr.SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestArityError(t *testing.T) {
	_, err := expr.CallFunction("eq", []expr.Value{expr.String("a")}, &expr.Context{})
	require.Error(t, err)
	var arErr *expr.ArityError
	require.ErrorAs(t, err, &arErr)
}
