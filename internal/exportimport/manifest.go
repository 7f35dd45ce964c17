package exportimport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/kgraph/kgcore/internal/kgerr"
)

// Manifest summarises one export or import call, written alongside the
// payload file so a later reader can tell what happened without reparsing
// the export itself. Grounded on the teacher's export manifest shape
// (exported-at timestamp, error policy, completeness flag).
type Manifest struct {
	Format        Format        `json:"format"`
	ExportedAt    time.Time     `json:"exportedAt"`
	EntityCount   int           `json:"entityCount"`
	RelationCount int           `json:"relationCount"`
	ErrorPolicy   MergeStrategy `json:"errorPolicy,omitempty"`
	Complete      bool          `json:"complete"`
	Errors        []string      `json:"errors,omitempty"`
}

// NewManifest builds a completed export manifest.
func NewManifest(format Format, entityCount, relationCount int) *Manifest {
	return &Manifest{
		Format:        format,
		ExportedAt:    time.Now().UTC(),
		EntityCount:   entityCount,
		RelationCount: relationCount,
		Complete:      true,
	}
}

// WriteManifest writes m as "<basePath>.manifest.json", atomically: encode
// to a temp file in the same directory, then rename over the final path.
// Mirrors internal/export/manifest.go's WriteManifest in the teacher.
func WriteManifest(basePath string, m *Manifest) error {
	manifestPath := basePath + ".manifest.json"
	dir := filepath.Dir(manifestPath)

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return kgerr.Wrap(kgerr.ExportError, err, "marshal manifest")
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.tmp")
	if err != nil {
		return kgerr.Wrap(kgerr.FileOperation, err, "create temp manifest in %s", dir)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return kgerr.Wrap(kgerr.FileOperation, err, "write temp manifest")
	}
	if err := tmp.Close(); err != nil {
		return kgerr.Wrap(kgerr.FileOperation, err, "close temp manifest")
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return kgerr.Wrap(kgerr.FileOperation, err, "chmod temp manifest")
	}
	if err := os.Rename(tmpPath, manifestPath); err != nil {
		return kgerr.Wrap(kgerr.FileOperation, err, "rename manifest into place")
	}
	return nil
}

// ReadManifest reads the manifest written by WriteManifest.
func ReadManifest(basePath string) (*Manifest, error) {
	data, err := os.ReadFile(basePath + ".manifest.json")
	if err != nil {
		return nil, kgerr.Wrap(kgerr.FileOperation, err, "read manifest for %s", basePath)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, kgerr.Wrap(kgerr.ImportError, err, "parse manifest for %s", basePath)
	}
	return &m, nil
}
