// Package graph builds the dependency DAG for a pipeline's stages, and
// for the jobs inside one stage, and assigns each node a parallel
// execution level via Kahn's algorithm — generalizing the teacher's
// depth-first resolveDependencyChain (runner/linter.go) into an explicit
// level-producing topological sort so the executor can run every node at
// the same level concurrently (spec.md §4.3 "Graph Build").
package graph

import (
	"fmt"
	"sort"

	"github.com/roxid-ci/roxid/roxerr"
)

// Node is one entry of the graph: a stage id or a job id, along with the
// ids of the nodes it depends on.
type Node struct {
	ID        string
	DependsOn []string
}

// Graph is a built DAG: nodes grouped into levels, where every node in
// level N depends only on nodes in levels < N, and no two nodes in the
// same level depend on each other — so a scheduler can run a whole level
// concurrently (spec.md §4.3).
type Graph struct {
	Levels [][]string
	index  map[string]int // node id -> level
}

// Level returns the level index assigned to id, or -1 if id is unknown.
func (g *Graph) Level(id string) int {
	if lvl, ok := g.index[id]; ok {
		return lvl
	}
	return -1
}

// Build runs Kahn's algorithm over nodes, producing parallel levels.
// It reports an error naming the first unresolved dependency or, failing
// that, the remaining cyclic node set.
func Build(nodes []Node) (*Graph, error) {
	byID := make(map[string]Node, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string)

	for _, n := range nodes {
		if _, dup := byID[n.ID]; dup {
			return nil, roxerr.New(roxerr.KindGraph, fmt.Errorf("duplicate node id %q", n.ID)).WithScope(n.ID)
		}
		byID[n.ID] = n
	}

	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			if _, ok := byID[dep]; !ok {
				return nil, roxerr.New(roxerr.KindGraph, fmt.Errorf("depends on unknown node %q", dep)).WithScope(n.ID)
			}
			inDegree[n.ID]++
			dependents[dep] = append(dependents[dep], n.ID)
		}
	}

	g := &Graph{index: make(map[string]int, len(nodes))}

	remaining := len(nodes)
	level := 0
	frontier := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			frontier = append(frontier, n.ID)
		}
	}

	for len(frontier) > 0 {
		sort.Strings(frontier)
		g.Levels = append(g.Levels, frontier)
		for _, id := range frontier {
			g.index[id] = level
		}
		remaining -= len(frontier)

		var next []string
		for _, id := range frontier {
			for _, dependent := range dependents[id] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		frontier = next
		level++
	}

	if remaining > 0 {
		var cyclic []string
		for id, deg := range inDegree {
			if deg > 0 {
				cyclic = append(cyclic, id)
			}
		}
		sort.Strings(cyclic)
		return nil, roxerr.New(roxerr.KindGraph, fmt.Errorf("dependency cycle involving %v", cyclic))
	}

	return g, nil
}
