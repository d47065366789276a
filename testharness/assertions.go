package testharness

import (
	"fmt"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/roxid-ci/roxid/model"
)

// Assertion is one entry of a test's `assertions:` list: a bare string
// (`pipeline_succeeded`) or a single-key map (`step_succeeded: Build`,
// `step_output_equals: {step, output, value}`, ...), matching spec.md
// §6.3's fifteen recognized forms.
type Assertion struct {
	Form string

	Name    string // step/job/stage name, or variable name
	Step    string
	Output  string
	Value   string
	Pattern string
	First   string
	Second  string
	Names   []string
}

// UnmarshalYAML dispatches on node kind: a scalar is a bare form with no
// payload; a single-key mapping decodes its value per that form's shape.
func (a *Assertion) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		a.Form = node.Value
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("testharness: assertion mapping must have exactly one key")
		}
		a.Form = node.Content[0].Value
		payload := node.Content[1]
		return a.decodePayload(payload)
	}
	return fmt.Errorf("testharness: assertion must be a string or single-key mapping, got node kind %v", node.Kind)
}

func (a *Assertion) decodePayload(payload *yaml.Node) error {
	switch a.Form {
	case "step_succeeded", "step_failed", "step_skipped",
		"job_succeeded", "job_failed", "stage_succeeded", "stage_failed",
		"variable_equals", "variable_contains":
		if payload.Kind == yaml.ScalarNode {
			a.Name = payload.Value
			return nil
		}
		var m map[string]string
		if err := payload.Decode(&m); err != nil {
			return fmt.Errorf("testharness: %s: %w", a.Form, err)
		}
		a.Name = m["name"]
		a.Value = m["value"]
		return nil
	case "step_output_equals":
		var m map[string]string
		if err := payload.Decode(&m); err != nil {
			return fmt.Errorf("testharness: step_output_equals: %w", err)
		}
		a.Step, a.Output, a.Value = m["step"], m["output"], m["value"]
		return nil
	case "step_output_contains":
		var m map[string]string
		if err := payload.Decode(&m); err != nil {
			return fmt.Errorf("testharness: step_output_contains: %w", err)
		}
		a.Step, a.Pattern = m["step"], m["pattern"]
		return nil
	case "step_ran_before":
		var m map[string]string
		if err := payload.Decode(&m); err != nil {
			return fmt.Errorf("testharness: step_ran_before: %w", err)
		}
		a.First, a.Second = m["first"], m["second"]
		return nil
	case "steps_ran_in_parallel":
		return payload.Decode(&a.Names)
	default:
		return fmt.Errorf("testharness: unrecognized assertion form %q", a.Form)
	}
}

// String renders the assertion for failure messages.
func (a *Assertion) String() string {
	if a.Name != "" {
		return fmt.Sprintf("%s: %s", a.Form, a.Name)
	}
	return a.Form
}

// stepObservation is one step's recorded outcome, flattened out of the
// nested stage/job/instance result tree for assertion lookups.
type stepObservation struct {
	result *model.StepResult
}

// Evaluate checks a against result, returning an error describing the
// failure when it doesn't hold.
func Evaluate(a Assertion, result *model.ExecutionResult, finalVars map[string]string) error {
	switch a.Form {
	case "pipeline_succeeded":
		if result.Status != model.StatusSuccess && result.Status != model.StatusSucceededWithIssues {
			return fmt.Errorf("pipeline_succeeded: overall status was %s", result.Status)
		}
	case "pipeline_failed":
		if result.Status != model.StatusFailed {
			return fmt.Errorf("pipeline_failed: overall status was %s", result.Status)
		}
	case "step_succeeded", "step_failed", "step_skipped":
		obs, ok := findStep(result, a.Name)
		if !ok {
			return fmt.Errorf("%s: no step named %q ran", a.Form, a.Name)
		}
		return checkStatus(a.Form, a.Name, obs.result.Status)
	case "job_succeeded", "job_failed":
		status, ok := findJobStatus(result, a.Name)
		if !ok {
			return fmt.Errorf("%s: no job named %q ran", a.Form, a.Name)
		}
		return checkStatus(a.Form, a.Name, status)
	case "stage_succeeded", "stage_failed":
		stage, ok := result.Stages[a.Name]
		if !ok {
			return fmt.Errorf("%s: no stage named %q ran", a.Form, a.Name)
		}
		return checkStatus(a.Form, a.Name, stage.Status)
	case "step_output_equals":
		if _, ok := findStep(result, a.Step); !ok {
			return fmt.Errorf("step_output_equals: no step named %q ran", a.Step)
		}
		got := stepOutput(result, a.Step, a.Output)
		if got != a.Value {
			return fmt.Errorf("step_output_equals: %s.%s = %q, want %q", a.Step, a.Output, got, a.Value)
		}
	case "step_output_contains":
		obs, ok := findStep(result, a.Step)
		if !ok {
			return fmt.Errorf("step_output_contains: no step named %q ran", a.Step)
		}
		if !strings.Contains(obs.result.Output, a.Pattern) {
			return fmt.Errorf("step_output_contains: %s's output does not contain %q", a.Step, a.Pattern)
		}
	case "step_ran_before":
		first, ok1 := findStep(result, a.First)
		second, ok2 := findStep(result, a.Second)
		if !ok1 || !ok2 {
			return fmt.Errorf("step_ran_before: %s or %s did not run", a.First, a.Second)
		}
		if !first.result.StartedAt.Before(second.result.StartedAt) {
			return fmt.Errorf("step_ran_before: %s did not start before %s", a.First, a.Second)
		}
	case "steps_ran_in_parallel":
		if !ranInParallel(result, a.Names) {
			return fmt.Errorf("steps_ran_in_parallel: %v did not overlap", a.Names)
		}
	case "variable_equals":
		got := finalVars[a.Name]
		if got != a.Value {
			return fmt.Errorf("variable_equals: %s = %q, want %q", a.Name, got, a.Value)
		}
	case "variable_contains":
		got := finalVars[a.Name]
		if !strings.Contains(got, a.Value) {
			return fmt.Errorf("variable_contains: %s = %q does not contain %q", a.Name, got, a.Value)
		}
	default:
		return fmt.Errorf("unrecognized assertion form %q", a.Form)
	}
	return nil
}

func checkStatus(form, name string, status model.Status) error {
	wantFailed := strings.HasSuffix(form, "_failed")
	wantSkipped := strings.HasSuffix(form, "_skipped")
	switch {
	case wantSkipped:
		if status != model.StatusSkipped {
			return fmt.Errorf("%s: %q had status %s, want Skipped", form, name, status)
		}
	case wantFailed:
		if status != model.StatusFailed && status != model.StatusCanceled {
			return fmt.Errorf("%s: %q had status %s, want Failed", form, name, status)
		}
	default:
		if status != model.StatusSuccess && status != model.StatusSucceededWithIssues {
			return fmt.Errorf("%s: %q had status %s, want Succeeded", form, name, status)
		}
	}
	return nil
}

func findStep(result *model.ExecutionResult, name string) (stepObservation, bool) {
	for _, stage := range result.Stages {
		for _, job := range stage.Jobs {
			for _, inst := range job.Instances {
				for _, step := range inst.Steps {
					if step.Name == name {
						return stepObservation{result: step}, true
					}
				}
			}
		}
	}
	return stepObservation{}, false
}

func findJobStatus(result *model.ExecutionResult, name string) (model.Status, bool) {
	for _, stage := range result.Stages {
		if job, ok := stage.Jobs[name]; ok {
			var statuses []model.Status
			for _, inst := range job.Instances {
				statuses = append(statuses, inst.Status)
			}
			return model.Aggregate(statuses), true
		}
	}
	return "", false
}

func stepOutput(result *model.ExecutionResult, step, output string) string {
	for _, stage := range result.Stages {
		for _, job := range stage.Jobs {
			for _, inst := range job.Instances {
				if v, ok := inst.Outputs[step+"."+output]; ok {
					return v
				}
			}
		}
	}
	return ""
}

type stepInterval struct {
	start, end time.Time
}

func (a stepInterval) overlaps(b stepInterval) bool {
	return a.start.Before(b.end) && b.start.Before(a.end)
}

func ranInParallel(result *model.ExecutionResult, names []string) bool {
	var intervals []stepInterval
	for _, name := range names {
		obs, ok := findStep(result, name)
		if !ok {
			return false
		}
		intervals = append(intervals, stepInterval{
			start: obs.result.StartedAt,
			end:   obs.result.StartedAt.Add(obs.result.Duration),
		})
	}
	for i := range intervals {
		for j := range intervals {
			if i == j {
				continue
			}
			if !intervals[i].overlaps(intervals[j]) {
				return false
			}
		}
	}
	return true
}
