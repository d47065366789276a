package roxerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roxid-ci/roxid/roxerr"
)

func TestErrorFormatsLocationAndScope(t *testing.T) {
	err := roxerr.New(roxerr.KindGraph, errors.New("cycle detected")).
		WithLocation("pipeline.yml", 12, 3).
		WithScope("deploy")
	assert.Equal(t, `pipeline.yml:12:3: [graph] deploy: cycle detected`, err.Error())
}

func TestErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := roxerr.New(roxerr.KindParse, cause)
	assert.ErrorIs(t, err, cause)
}

func TestSuggestFindsSubstringMatches(t *testing.T) {
	got := roxerr.Suggest([]string{"build", "buildAndTest", "deploy"}, "build")
	assert.ElementsMatch(t, []string{"build", "buildAndTest"}, got)
}

func TestUnknownNameErrorWithoutSubstringMatchHasNoSuggestions(t *testing.T) {
	err := roxerr.NewUnknownName("job", "biuld", []string{"build", "deploy"})
	assert.Empty(t, err.Suggestions)
	assert.Contains(t, err.Error(), `unknown job "biuld"`)
}
