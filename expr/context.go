package expr

import (
	"strings"
	"sync"
)

// Sentinel marks a reference into runtime-only data observed during
// compile-time evaluation (spec.md §4.1: "never an error" — compile-time
// evaluation of runtime references degrades to Null). It is the same value
// as Null, so callers cannot tell it apart from a genuinely missing value.
var Sentinel = Null

// NotYetKnown is returned by Context.Lookup for the sentinel case; it is
// bit-identical to Null by design (see SPEC_FULL.md §9 Open Question 1).
var NotYetKnown = Null

// Namespace is one of the root segments addressable in an expression:
// variables, parameters, pipeline, stage, job, steps, dependencies,
// stageDependencies, resources, env.
type Namespace interface {
	// Get resolves a dotted/indexed path under this namespace. Missing
	// paths return (Null, false); "false" never surfaces as an error —
	// callers treat it identically to Null, the bool just aids testing.
	Get(path []PathSegment) (Value, bool)
}

// PathSegment is either a field name or a computed index/key.
type PathSegment struct {
	Field string // set when this segment came from `.name`
	Key   Value  // set when this segment came from `[expr]`
	IsKey bool
}

// MapNamespace is a Namespace backed by a Value (typically an Object).
type MapNamespace struct {
	Root Value
}

func (m MapNamespace) Get(path []PathSegment) (Value, bool) {
	cur := m.Root
	for _, seg := range path {
		var key string
		if seg.IsKey {
			key = seg.Key.String()
		} else {
			key = seg.Field
		}
		switch cur.Kind() {
		case KindObject:
			obj, _ := cur.RawObject()
			v, ok := lookupCaseInsensitive(obj, key)
			if !ok {
				return Null, false
			}
			cur = v
		case KindArray:
			idx, ok := parseIndex(key)
			arr := cur.RawArray()
			if !ok || idx < 0 || idx >= len(arr) {
				return Null, false
			}
			cur = arr[idx]
		default:
			return Null, false
		}
	}
	return cur, true
}

func parseIndex(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func lookupCaseInsensitive(m map[string]Value, key string) (Value, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return Null, false
}

// FuncNamespace resolves a namespace by calling a Go function, used for
// namespaces computed lazily (status functions read live execution state).
type FuncNamespace func(path []PathSegment) (Value, bool)

func (f FuncNamespace) Get(path []PathSegment) (Value, bool) { return f(path) }

// Context is the ExpressionContext from spec.md §3: the shared namespace
// map mutated by the runtime as execution progresses.
type Context struct {
	Namespaces map[string]Namespace

	// Mode distinguishes compile-time (template resolution) from runtime
	// evaluation. Runtime-only namespaces resolve to Null at compile time
	// instead of erroring (spec.md §4.1).
	Mode Mode

	// Status provides succeeded()/failed()/canceled()/always() semantics
	// against the governing scope. Nil at compile time.
	Status StatusProvider

	// Counters backs the counter(name, seed) built-in; shared across all
	// Contexts derived from the same run (process-local, per SPEC_FULL.md
	// Open Question decision).
	Counters *CounterStore
}

// Mode tags whether a Context is being used for compile-time (template)
// or runtime (condition/variable) evaluation.
type Mode int

// Evaluation modes.
const (
	ModeCompileTime Mode = iota
	ModeRuntime
)

// runtimeOnlyNamespaces lists namespace roots that are unavailable during
// template resolution.
var runtimeOnlyNamespaces = map[string]bool{
	"steps":             true,
	"dependencies":      true,
	"stagedependencies": true,
}

// Lookup resolves a case-insensitive root namespace plus path. Missing
// namespaces, missing paths, and (at compile time) runtime-only namespaces
// all return Null — per spec.md, undefined references never error.
func (c *Context) Lookup(root string, path []PathSegment) Value {
	lowerRoot := strings.ToLower(root)
	if c.Mode == ModeCompileTime && runtimeOnlyNamespaces[lowerRoot] {
		return NotYetKnown
	}
	ns := c.findNamespace(root)
	if ns == nil {
		return Null
	}
	v, ok := ns.Get(path)
	if !ok {
		return Null
	}
	return v
}

func (c *Context) findNamespace(root string) Namespace {
	if ns, ok := c.Namespaces[root]; ok {
		return ns
	}
	for k, ns := range c.Namespaces {
		if strings.EqualFold(k, root) {
			return ns
		}
	}
	return nil
}

// CounterStore backs the counter() built-in: a monotonic, per-name
// in-process sequence, safe for concurrent use.
type CounterStore struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewCounterStore creates an empty counter store.
func NewCounterStore() *CounterStore {
	return &CounterStore{values: make(map[string]int64)}
}

// Next returns the next value for name, seeding it with seed on first use.
func (s *CounterStore) Next(name string, seed int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[name]; ok {
		s.values[name] = v + 1
		return s.values[name]
	}
	s.values[name] = seed
	return seed
}

// StatusProvider answers succeeded()/failed()/canceled()/always() queries
// against the scope that owns the currently-evaluating condition. It is
// the Go-side implementation of the spec.md §6.4 "Expression-context
// state observer" collaborator.
type StatusProvider interface {
	// DependencyStatuses returns the terminal status of each id the
	// governing scope depends on (its dependsOn stages/jobs, or the
	// current job's prior steps). ids == nil means "all dependencies".
	DependencyStatuses(ids []string) []ScopeStatus
}

// ScopeStatus is a minimal terminal-status view used by status functions.
type ScopeStatus struct {
	ID      string
	Success bool
	Failed  bool
	Skipped bool
	Canceled bool
}
