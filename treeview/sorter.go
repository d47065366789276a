package treeview

import (
	"sort"
	"strings"
)

// countDepth returns how many ':'-separated segments follow the first
// one in name (a root-level "build" is depth 0, "build:run" is depth 1).
func countDepth(name string) int {
	return strings.Count(name, ":")
}

// compareByDepthThenName orders a before b when a is shallower, or, at
// equal depth, when a sorts alphabetically before b.
func compareByDepthThenName(a, b string) int {
	da, db := countDepth(a), countDepth(b)
	switch {
	case da < db:
		return -1
	case da > db:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SortJobsByDepth returns a copy of names ordered shallowest-first, ties
// broken alphabetically, so a rendered tree lists parent-level work
// before the nested jobs/steps beneath it.
func SortJobsByDepth(names []string) []string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareByDepthThenName(sorted[i], sorted[j]) < 0
	})
	return sorted
}
