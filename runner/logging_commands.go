package runner

import (
	"regexp"
	"strings"
)

// loggingCommandRegex matches Azure DevOps' `##vso[area.action property=value;...]value`
// logging command syntax emitted on a step's stdout (spec.md §4.5.4
// "output propagation via logging commands").
var loggingCommandRegex = regexp.MustCompile(`^##vso\[([a-zA-Z.]+)([^\]]*)\](.*)$`)

// LoggingCommand is one parsed ##vso[...] line.
type LoggingCommand struct {
	Command    string
	Properties map[string]string
	Value      string
}

// ScanLoggingCommands finds every ##vso[...] line in output and returns
// them in document order. Non-matching lines are ignored; a step's
// regular output is otherwise untouched.
func ScanLoggingCommands(output string) []LoggingCommand {
	var commands []LoggingCommand
	for _, line := range strings.Split(output, "\n") {
		m := loggingCommandRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		commands = append(commands, LoggingCommand{
			Command:    m[1],
			Properties: parseProperties(m[2]),
			Value:      m[3],
		})
	}
	return commands
}

// parseProperties parses the " key=value;key2=value2" property list that
// follows a logging command's name inside the brackets. Keys are trimmed
// of surrounding space and lowercased.
func parseProperties(s string) map[string]string {
	props := make(map[string]string)
	for _, part := range strings.Split(strings.TrimPrefix(s, ";"), ";") {
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		props[strings.ToLower(strings.TrimSpace(kv[0]))] = kv[1]
	}
	return props
}

// ApplyLoggingCommands scans output for ##vso[task.setvariable] commands
// and records each one as an output variable of stepID on rc, matching
// Azure DevOps' `task.setvariable` output propagation (spec.md §4.5.4).
func ApplyLoggingCommands(rc *RuntimeContext, stepID, output string) {
	for _, cmd := range ScanLoggingCommands(output) {
		if !strings.EqualFold(cmd.Command, "task.setvariable") {
			continue
		}
		name, ok := cmd.Properties["variable"]
		if !ok {
			continue
		}
		if rc.Outputs[stepID] == nil {
			rc.Outputs[stepID] = make(map[string]string)
		}
		rc.Outputs[stepID][name] = cmd.Value

		// Tier-5 runtime-variable precedence (spec.md §4.5.2) applies to
		// every task.setvariable command, not only isOutput=true ones;
		// isOutput only additionally qualifies the value for cross-scope
		// dependencies.*.outputs visibility, recorded above regardless.
		rc.Variables[name] = cmd.Value
	}
}
