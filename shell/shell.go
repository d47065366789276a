// Package shell adapts psexec.Executor into the §6.4 "Shell runner"
// collaborator contract: run(script, shellKind, env, workingDir, timeout,
// failOnStderr) with a per-line stdout callback, so runner/dispatch.go can
// dispatch Script/Bash/Pwsh/PowerShell steps without knowing psexec's
// Command/Result shapes directly.
package shell

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/roxid-ci/roxid/psexec"
)

// Kind selects which shell interprets a step's script body.
type Kind int

// Shell kinds, one per Azure DevOps script step variant.
const (
	Bash Kind = iota
	Pwsh
	PowerShell
	Script // platform default: sh on POSIX
)

func (k Kind) command() (name string, args []string) {
	switch k {
	case Bash:
		return "bash", nil
	case Pwsh:
		return "pwsh", nil
	case PowerShell:
		return "powershell", nil
	default:
		return "sh", nil
	}
}

// Request is one shell invocation.
type Request struct {
	Script       string
	Kind         Kind
	Env          []string
	WorkingDir   string
	Timeout      time.Duration
	FailOnStderr bool

	// OnLine, when set, is called with every stdout line once the process
	// has exited, before the full output is returned (spec.md §4.5.4 point
	// 3: "every stdout line is scanned for... logging commands"). No line
	// is delivered while the process is still running.
	OnLine func(line string)
}

// Result is the outcome of one shell invocation (spec.md §6.4).
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	Err      error
}

// Run executes req via exec's configured shell. Stdout is buffered while
// the process runs and, after it exits, split into lines that are passed
// to req.OnLine one by one (spec.md §4.5.4 point 3).
func Run(ctx context.Context, exec *psexec.Executor, req Request) Result {
	name, baseArgs := req.Kind.command()
	cmd := &psexec.Command{
		Name:    name,
		Args:    append(append([]string{}, baseArgs...), scriptArg(req.Kind, req.Script)...),
		Dir:     req.WorkingDir,
		Env:     req.Env,
		Timeout: req.Timeout,
	}

	var lineBuf lineScanner
	if req.OnLine != nil {
		cmd.Stdout = &lineBuf
	}

	res := exec.Run(ctx, cmd)
	if req.OnLine != nil {
		lineBuf.flush(req.OnLine)
	}

	result := Result{
		Stdout:   res.Output(),
		Stderr:   res.ErrorOutput(),
		ExitCode: res.ExitCode(),
		Err:      res.Err(),
	}
	if req.FailOnStderr && strings.TrimSpace(result.Stderr) != "" && result.Err == nil {
		result.ExitCode = 1
	}
	return result
}

func scriptArg(k Kind, script string) []string {
	switch k {
	case Pwsh, PowerShell:
		return []string{"-NoProfile", "-Command", script}
	default:
		return []string{"-c", script}
	}
}

// lineScanner is an io.Writer that buffers everything written to it;
// flush then invokes a callback for each buffered line, generalizing the teacher's
// line_capturing_writer.go to a shared-package collaborator.
type lineScanner struct {
	buf strings.Builder
}

func (w *lineScanner) Write(p []byte) (int, error) {
	w.buf.Write(p)
	return len(p), nil
}

func (w *lineScanner) flush(onLine func(string)) {
	scanner := bufio.NewScanner(strings.NewReader(w.buf.String()))
	for scanner.Scan() {
		onLine(scanner.Text())
	}
}
