// Package taskcache implements the §6.4 "Task cache" collaborator:
// fetching and executing versioned Azure DevOps-style tasks under
// $XDG_DATA_HOME/roxid/tasks/<Name>@<Major>/ (spec.md §6.5 "Persisted
// state"), generalizing the teacher's on-disk layout conventions to a
// task manifest store instead of a skill store.
package taskcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExecutionKind selects which runtime a task's entry point runs under.
type ExecutionKind string

// Execution kinds a task manifest may declare (spec.md §4.5.4 point 3).
const (
	ExecutionNode       ExecutionKind = "node"
	ExecutionPowerShell ExecutionKind = "powershell"
)

// Input describes one declared task input.
type Input struct {
	Name    string `json:"name"`
	Default string `json:"default"`
	Type    string `json:"type,omitempty"`
}

// Manifest is a task's task.json-equivalent descriptor.
type Manifest struct {
	Name       string        `json:"name"`
	Version    string        `json:"version"`
	Execution  ExecutionKind `json:"execution"`
	Entrypoint string        `json:"entrypoint"`
	Inputs     []Input       `json:"inputs"`
}

// Task is a fetched task ready to execute: its manifest plus the absolute
// path to its entry point on disk.
type Task struct {
	Manifest   Manifest
	Dir        string
	Entrypoint string
}

// Cache roots task storage at a base directory (defaulting to
// $XDG_DATA_HOME/roxid/tasks, or ~/.local/share/roxid/tasks).
type Cache struct {
	BaseDir string
}

// New creates a Cache rooted at the platform task-cache directory.
func New() *Cache {
	return &Cache{BaseDir: defaultBaseDir()}
}

func defaultBaseDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "roxid", "tasks")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".roxid", "tasks")
	}
	return filepath.Join(home, ".local", "share", "roxid", "tasks")
}

// dirFor returns the on-disk directory for name@majorVersion.
func (c *Cache) dirFor(name, majorVersion string) string {
	return filepath.Join(c.BaseDir, fmt.Sprintf("%s@%s", name, majorVersion))
}

// Fetch loads a previously-cached task's manifest from
// <Name>@<Major>/task.json. It does not reach the network itself — a
// task must already have been placed in the cache directory; the `task
// fetch` command in the root task.go also only reads from the cache —
// matching spec.md §6.5's local-directory persistence model.
func (c *Cache) Fetch(name, majorVersion string) (*Task, error) {
	dir := c.dirFor(name, majorVersion)
	manifestPath := filepath.Join(dir, "task.json")

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("taskcache: %s@%s not found in cache: %w", name, majorVersion, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("taskcache: %s@%s: invalid task.json: %w", name, majorVersion, err)
	}

	return &Task{
		Manifest:   m,
		Dir:        dir,
		Entrypoint: filepath.Join(dir, m.Entrypoint),
	}, nil
}

// List returns every "Name@Major" entry currently in the cache.
func (c *Cache) List() ([]string, error) {
	entries, err := os.ReadDir(c.BaseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Clear removes every cached task.
func (c *Cache) Clear() error {
	return os.RemoveAll(c.BaseDir)
}

// Path returns the cache's root directory.
func (c *Cache) Path() string {
	return c.BaseDir
}

// BindInputs validates supplied against the task's declared inputs,
// applies declared defaults, and returns the INPUT_<UPPERCASE_NAME>
// environment entries spec.md §4.5.4 point 3 requires.
func (t *Task) BindInputs(supplied map[string]string) ([]string, error) {
	bound := make(map[string]string, len(t.Manifest.Inputs))
	for _, in := range t.Manifest.Inputs {
		bound[in.Name] = in.Default
	}
	for name, val := range supplied {
		if _, declared := bound[name]; !declared {
			return nil, fmt.Errorf("taskcache: %s@%s has no input %q", t.Manifest.Name, t.Manifest.Version, name)
		}
		bound[name] = val
	}

	env := make([]string, 0, len(bound))
	for name, val := range bound {
		env = append(env, fmt.Sprintf("INPUT_%s=%s", strings.ToUpper(name), val))
	}
	return env, nil
}
