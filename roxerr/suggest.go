package roxerr

import "strings"

// Suggest finds candidates in names that look like the user meant
// pattern instead — a substring/suffix match against a lowercased
// comparison, generalized from the teacher's job-name fuzzy matcher to
// any identifier list (stage ids, job ids, parameter names, template
// parameter names).
func Suggest(names []string, pattern string) []string {
	lowerPattern := strings.ToLower(pattern)

	var matches []string
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), lowerPattern) {
			matches = append(matches, name)
		}
	}
	return matches
}

// UnknownNameError reports a reference to an id that doesn't exist,
// along with any fuzzy-matched suggestions for what the caller probably
// meant (spec.md §6.3 "did you mean" diagnostics).
type UnknownNameError struct {
	Kind        string // "stage", "job", "step", "parameter", ...
	Name        string
	Suggestions []string
}

func (e *UnknownNameError) Error() string {
	if len(e.Suggestions) == 0 {
		return "unknown " + e.Kind + " " + quote(e.Name)
	}
	return "unknown " + e.Kind + " " + quote(e.Name) + "; did you mean " + joinQuoted(e.Suggestions) + "?"
}

func quote(s string) string { return "\"" + s + "\"" }

func joinQuoted(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, ", ")
}

// NewUnknownName builds an UnknownNameError, filling Suggestions from
// candidates via Suggest.
func NewUnknownName(kind, name string, candidates []string) *UnknownNameError {
	return &UnknownNameError{Kind: kind, Name: name, Suggestions: Suggest(candidates, name)}
}
