package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roxid-ci/roxid/graph"
)

func TestBuildAssignsParallelLevels(t *testing.T) {
	g, err := graph.Build([]graph.Node{
		{ID: "build"},
		{ID: "lint"},
		{ID: "test", DependsOn: []string{"build"}},
		{ID: "package", DependsOn: []string{"build", "lint"}},
		{ID: "deploy", DependsOn: []string{"test", "package"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, g.Level("build"))
	assert.Equal(t, 0, g.Level("lint"))
	assert.Equal(t, 1, g.Level("test"))
	assert.Equal(t, 1, g.Level("package"))
	assert.Equal(t, 2, g.Level("deploy"))
	assert.Len(t, g.Levels, 3)
}

func TestBuildDetectsCycle(t *testing.T) {
	_, err := graph.Build([]graph.Node{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
	})
	require.Error(t, err)
}

func TestBuildRejectsUnknownDependency(t *testing.T) {
	_, err := graph.Build([]graph.Node{
		{ID: "a", DependsOn: []string{"ghost"}},
	})
	require.Error(t, err)
}

func TestBuildRejectsDuplicateID(t *testing.T) {
	_, err := graph.Build([]graph.Node{{ID: "a"}, {ID: "a"}})
	require.Error(t, err)
}
