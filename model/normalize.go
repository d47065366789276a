package model

import "fmt"

// Normalize rewrites a parsed Pipeline into the canonical stages/jobs/steps
// shape the rest of the engine assumes: a steps-only pipeline becomes one
// synthetic stage containing one synthetic job; a jobs-only pipeline
// becomes one synthetic stage wrapping its jobs as-is (spec.md §4.1 "Parse
// + Normalize").
//
// It also fills each stage's implicit dependsOn chain (every stage depends
// on the one immediately before it, unless dependsOn was set explicitly)
// and rejects duplicate stage ids and duplicate job ids within a stage;
// step names are not checked for uniqueness.
func (p *Pipeline) Normalize() error {
	shape, err := p.Shape()
	if err != nil {
		return err
	}

	switch shape {
	case KindSteps:
		p.Stages = []*Stage{{
			ID: "__default",
			Jobs: []*Job{{
				ID:    "__default",
				Steps: p.Steps,
			}},
		}}
		p.Steps = nil
	case KindJobs:
		p.Stages = []*Stage{{
			ID:   "__default",
			Jobs: p.Jobs,
		}}
		p.Jobs = nil
	case KindEmpty:
		p.Stages = nil
	case KindStages:
		for _, st := range p.Stages {
			if len(st.Steps) > 0 && len(st.Jobs) == 0 {
				st.Jobs = []*Job{{ID: "__default", Steps: st.Steps}}
				st.Steps = nil
			}
		}
	}

	if err := fillImplicitStageDependsOn(p.Stages); err != nil {
		return err
	}
	if err := checkUniqueIDs(p.Stages); err != nil {
		return err
	}
	return nil
}

// fillImplicitStageDependsOn gives every stage that declared no dependsOn
// an implicit dependency on its immediate predecessor, matching Azure
// DevOps' default sequential-stage behavior (spec.md §4.3 "Graph Build").
func fillImplicitStageDependsOn(stages []*Stage) error {
	for i, st := range stages {
		if len(st.DependsOn) > 0 || i == 0 {
			continue
		}
		st.DependsOn = DependsOn{stages[i-1].ID}
	}
	return nil
}

// checkUniqueIDs rejects a pipeline where two stages, or two jobs within
// the same stage, share an id (spec.md §3 "Stage"/"Job" invariants).
func checkUniqueIDs(stages []*Stage) error {
	seenStages := map[string]bool{}
	for _, st := range stages {
		if seenStages[st.ID] {
			return fmt.Errorf("model: duplicate stage id %q", st.ID)
		}
		seenStages[st.ID] = true

		seenJobs := map[string]bool{}
		for _, j := range st.Jobs {
			if seenJobs[j.ID] {
				return fmt.Errorf("model: duplicate job id %q in stage %q", j.ID, st.ID)
			}
			seenJobs[j.ID] = true
		}
	}
	return nil
}
