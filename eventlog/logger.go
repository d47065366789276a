package eventlog

import (
	"bytes"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	yaml "gopkg.in/yaml.v3"
)

// Logger accumulates Events for one run and writes them, along with the
// final execution state tree and summary, to a YAML log file. A Logger
// built from an empty path is nil and every method on it is a safe no-op,
// so callers can pass it around unconditionally when logging is disabled.
type Logger struct {
	mu        sync.Mutex
	path      string
	debug     bool
	startTime time.Time
	metadata  RunMetadata
	events    []*Event
}

// NewLogger creates a Logger that will write to path, or nil if path is
// empty (logging disabled).
func NewLogger(path, pipeline, file string, debug bool) *Logger {
	if path == "" {
		return nil
	}
	return &Logger{
		path:      path,
		debug:     debug,
		startTime: time.Now(),
		metadata: RunMetadata{
			RunID:      ulid.Make().String(),
			CreatedAt:  time.Now(),
			Pipeline:   pipeline,
			File:       file,
			ModulePath: CaptureModulePath(),
			Git:        CaptureGitInfo(),
		},
	}
}

// LogExec records one step's (or step iteration's) execution outcome.
// durationMs is in milliseconds for caller convenience; it's stored as
// seconds, matching Event.Duration.
func (l *Logger) LogExec(result Result, id, run string, start, durationMs float64, err error) {
	if l == nil {
		return
	}
	var errMsg string
	if err != nil {
		errMsg = err.Error()
	}

	event := &Event{
		ID:       id,
		Type:     EventTypeStep,
		Start:    start,
		Duration: durationMs / 1000,
		Error:    errMsg,
		Run:      run,
		Result:   result,
	}
	if l.debug {
		event.GoroutineID = getGoroutineID()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

// LogCommand records a $(...) command substitution or logging-command
// scan result observed while interpolating or running a step.
func (l *Logger) LogCommand(entry LogEntry) {
	if l == nil {
		return
	}
	event := &Event{
		ID:       entry.ID,
		Type:     entry.Type,
		Start:    entry.Start,
		Duration: float64(entry.DurationMs) / 1000,
		Error:    entry.Error,
		Command:  entry.Command,
		Dir:      entry.Dir,
		Output:   entry.Output,
		ExitCode: entry.ExitCode,
		ParentID: entry.ParentID,
	}
	if l.debug {
		event.GoroutineID = getGoroutineID()
		event.Env = entry.Env
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

// GetEvents returns every event logged so far.
func (l *Logger) GetEvents() []*Event {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events
}

// GetElapsed returns the seconds elapsed since the Logger was created.
func (l *Logger) GetElapsed() float64 {
	if l == nil {
		return 0
	}
	return time.Since(l.startTime).Seconds()
}

// GetStartTime returns the run's start time.
func (l *Logger) GetStartTime() time.Time {
	if l == nil {
		return time.Time{}
	}
	return l.startTime
}

// Write serializes the metadata, final state tree, events and summary to
// the Logger's configured path.
func (l *Logger) Write(state *StateNode, summary *RunSummary) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	log := Log{
		Metadata: l.metadata,
		State:    state,
		Events:   l.events,
		Summary:  summary,
	}
	l.mu.Unlock()

	data, err := yaml.Marshal(log)
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0o644)
}

// getGoroutineID extracts the calling goroutine's id from its stack
// trace header, for debug-mode event correlation only.
func getGoroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	fields := bytes.Fields(buf)
	if len(fields) < 2 {
		return 0
	}
	id, _ := strconv.ParseUint(string(fields[1]), 10, 64)
	return id
}
