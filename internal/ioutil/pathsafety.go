// Package ioutil resolves and verifies caller-supplied file paths against an
// allowed base directory before any open, per §6's path-safety contract.
package ioutil

import (
	"path/filepath"
	"strings"

	"github.com/kgraph/kgcore/internal/kgerr"
)

// ResolveWithinBase resolves path relative to base and verifies the result
// lies within base. Returns a PathTraversal error if it escapes.
func ResolveWithinBase(base, path string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", kgerr.Wrap(kgerr.FileOperation, err, "resolve base directory %s", base)
	}
	var candidate string
	if filepath.IsAbs(path) {
		candidate = filepath.Clean(path)
	} else {
		candidate = filepath.Clean(filepath.Join(absBase, path))
	}
	rel, err := filepath.Rel(absBase, candidate)
	if err != nil {
		return "", kgerr.Wrap(kgerr.PathTraversal, err, "path %s does not resolve relative to base %s", path, base)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", kgerr.New(kgerr.PathTraversal, "path %s escapes allowed base directory %s", path, base)
	}
	return candidate, nil
}
