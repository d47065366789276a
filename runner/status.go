package runner

import (
	"sync"

	"github.com/roxid-ci/roxid/expr"
	"github.com/roxid-ci/roxid/model"
)

// StatusTracker records the outcome of every stage/job/step scope as it
// finishes, and implements expr.StatusProvider so succeeded()/failed()/
// canceled()/always() can read it (spec.md §4.5.3 "status functions").
type StatusTracker struct {
	mu       sync.Mutex
	statuses map[string]model.Status
}

// NewStatusTracker creates an empty tracker.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{statuses: make(map[string]model.Status)}
}

// Record stores the final status of scope id.
func (t *StatusTracker) Record(id string, status model.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[id] = status
}

// Get returns the recorded status of id, or "" if it hasn't finished.
func (t *StatusTracker) Get(id string) (model.Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.statuses[id]
	return s, ok
}

// DependencyStatuses implements expr.StatusProvider.
func (t *StatusTracker) DependencyStatuses(ids []string) []expr.ScopeStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]expr.ScopeStatus, len(ids))
	for i, id := range ids {
		s := t.statuses[id]
		out[i] = expr.ScopeStatus{
			ID:       id,
			Success:  s == model.StatusSuccess || s == model.StatusSucceededWithIssues,
			Failed:   s == model.StatusFailed,
			Skipped:  s == model.StatusSkipped,
			Canceled: s == model.StatusCanceled,
		}
	}
	return out
}
