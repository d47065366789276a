// Package matrix expands a job's strategy.matrix or strategy.parallel
// block into the concrete named instances the executor runs, mirroring
// Azure DevOps' own job fan-out semantics (spec.md §4.4 "Matrix Expand").
package matrix

import (
	"fmt"
	"sort"

	"github.com/roxid-ci/roxid/model"
)

// Instance is one expanded copy of a job: its generated name and, for a
// matrix strategy, the variable overlay that copy runs with.
type Instance struct {
	Name      string
	Variables map[string]string
}

// Expand returns the instances a job's strategy produces. A job without
// a strategy, or with neither matrix nor parallel set, expands to a
// single instance named after the job's id.
func Expand(job *model.Job) ([]Instance, error) {
	switch {
	case job.Strategy.IsMatrix():
		return expandMatrix(job.Strategy)
	case job.Strategy.IsParallel():
		return expandParallel(job.Strategy), nil
	default:
		return []Instance{{Name: job.ID}}, nil
	}
}

func expandMatrix(strategy *model.Strategy) ([]Instance, error) {
	names := make([]string, 0, len(strategy.Matrix))
	for name := range strategy.Matrix {
		names = append(names, name)
	}
	sort.Strings(names)

	instances := make([]Instance, 0, len(names))
	for _, name := range names {
		vars := strategy.Matrix[name]
		if len(vars) == 0 {
			return nil, fmt.Errorf("matrix: entry %q has no variables", name)
		}
		copied := make(map[string]string, len(vars))
		for k, v := range vars {
			copied[k] = v
		}
		instances = append(instances, Instance{Name: name, Variables: copied})
	}

	// MaxParallel bounds scheduling concurrency, not the instance count;
	// the executor consults strategy.MaxParallel directly when it runs
	// these instances.
	return instances, nil
}

func expandParallel(strategy *model.Strategy) []Instance {
	instances := make([]Instance, strategy.Parallel)
	for i := range instances {
		instances[i] = Instance{Name: fmt.Sprintf("Job_%d", i+1)}
	}
	return instances
}
