package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileLoader resolves template paths relative to a base directory,
// matching the local-repository resolution the spec treats as the
// default collaborator (spec.md §6.4 "repository resource resolution").
type FileLoader struct {
	BaseDir string
}

// Load reads the file at path, resolved relative to BaseDir unless path
// is already absolute.
func (l FileLoader) Load(path string) ([]byte, error) {
	full := path
	if !filepath.IsAbs(path) {
		full = filepath.Join(l.BaseDir, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("template: loading %s: %w", path, err)
	}
	return data, nil
}

// SplitResourceAlias splits a "path@alias" template reference into its
// file path and the resources.repositories alias it should be fetched
// from, matching Azure DevOps' cross-repository template syntax
// (spec.md §4.2).
func SplitResourceAlias(ref string) (path, alias string) {
	if idx := strings.LastIndex(ref, "@"); idx >= 0 {
		return ref[:idx], ref[idx+1:]
	}
	return ref, ""
}
