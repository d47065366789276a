package model

// Strategy describes a job's matrix or parallel execution fan-out
// (spec.md §3 "Strategy", §4.4 "Matrix Expand").
type Strategy struct {
	Matrix      map[string]map[string]string `yaml:"matrix,omitempty"`
	Parallel    int                           `yaml:"parallel,omitempty"`
	MaxParallel int                           `yaml:"maxParallel,omitempty"`
}

// IsMatrix reports whether the strategy declares a matrix fan-out.
func (s *Strategy) IsMatrix() bool { return s != nil && len(s.Matrix) > 0 }

// IsParallel reports whether the strategy declares a `parallel:` count
// fan-out instead of a matrix.
func (s *Strategy) IsParallel() bool { return s != nil && s.Parallel > 0 }
