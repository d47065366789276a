package template_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/roxid-ci/roxid/expr"
	"github.com/roxid-ci/roxid/template"
)

func parseYAML(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	return &doc
}

func ctxWithParams(bound map[string]any) *expr.Context {
	return &expr.Context{
		Mode:       expr.ModeCompileTime,
		Namespaces: map[string]expr.Namespace{"parameters": template.ParametersNamespace(bound)},
	}
}

func TestResolveSubstitutesWholeFormParameter(t *testing.T) {
	doc := parseYAML(t, `name: ${{ parameters.greeting }}`)
	resolved, err := template.Resolve(doc, ctxWithParams(map[string]any{"greeting": "hello"}), nil)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, resolved.Content[0].Decode(&out))
	assert.Equal(t, "hello", out["name"])
}

func TestResolveIfDirectiveSplicesTrueBranch(t *testing.T) {
	doc := parseYAML(t, `
- a
- ${{ if eq(parameters.env, 'prod') }}:
  - deployProd
- ${{ else }}:
  - deployDev
- z
`)
	resolved, err := template.Resolve(doc, ctxWithParams(map[string]any{"env": "prod"}), nil)
	require.NoError(t, err)

	var out []string
	require.NoError(t, resolved.Content[0].Decode(&out))
	assert.Equal(t, []string{"a", "deployProd", "z"}, out)
}

func TestResolveIfDirectiveSplicesElseBranch(t *testing.T) {
	doc := parseYAML(t, `
- a
- ${{ if eq(parameters.env, 'prod') }}:
  - deployProd
- ${{ else }}:
  - deployDev
- z
`)
	resolved, err := template.Resolve(doc, ctxWithParams(map[string]any{"env": "dev"}), nil)
	require.NoError(t, err)

	var out []string
	require.NoError(t, resolved.Content[0].Decode(&out))
	assert.Equal(t, []string{"a", "deployDev", "z"}, out)
}

func TestResolveEachDirectiveExpandsList(t *testing.T) {
	doc := parseYAML(t, `
- ${{ each platform in parameters.platforms }}:
  - ${{ platform }}
`)
	resolved, err := template.Resolve(doc, ctxWithParams(map[string]any{
		"platforms": []any{"linux", "windows"},
	}), nil)
	require.NoError(t, err)

	var out []string
	require.NoError(t, resolved.Content[0].Decode(&out))
	assert.Equal(t, []string{"linux", "windows"}, out)
}

func TestResolveEachDirectiveExpandsObject(t *testing.T) {
	doc := parseYAML(t, `
- ${{ each region in parameters.regions }}:
  - ${{ region }}
`)
	resolved, err := template.Resolve(doc, ctxWithParams(map[string]any{
		"regions": map[string]any{"a": "us-east", "b": "eu-west"},
	}), nil)
	require.NoError(t, err)

	var out []string
	require.NoError(t, resolved.Content[0].Decode(&out))
	assert.Equal(t, []string{"us-east", "eu-west"}, out)
}

func TestSplitResourceAlias(t *testing.T) {
	path, alias := template.SplitResourceAlias("templates/build.yml@shared")
	assert.Equal(t, "templates/build.yml", path)
	assert.Equal(t, "shared", alias)

	path, alias = template.SplitResourceAlias("templates/build.yml")
	assert.Equal(t, "templates/build.yml", path)
	assert.Equal(t, "", alias)
}
