package exportimport

import (
	"encoding/json"

	"github.com/kgraph/kgcore/internal/durable"
	"github.com/kgraph/kgcore/internal/kgerr"
)

// SavedSearch is a named, parameterised query persisted to the secondary
// "<base>-saved-searches" JSONL file (§6: "same tolerant semantics" as the
// main log).
type SavedSearch struct {
	Name        string         `json:"name"`
	Method      string         `json:"method"`
	Query       string         `json:"query,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
	LastRunUnix int64          `json:"lastRunUnix,omitempty"`
}

// SavedSearchPath derives the sidecar path from an export's base path.
func SavedSearchPath(basePath string) string {
	return basePath + "-saved-searches"
}

// AppendSavedSearch appends one entry to the sidecar, fsync'd like every
// other durable append in the store (internal/durable.Append).
func AppendSavedSearch(basePath string, s SavedSearch) error {
	data, err := json.Marshal(s)
	if err != nil {
		return kgerr.Wrap(kgerr.ExportError, err, "marshal saved search %q", s.Name)
	}
	if err := durable.Append(SavedSearchPath(basePath), data, 0o644); err != nil {
		return kgerr.Wrap(kgerr.FileOperation, err, "append saved search %q", s.Name)
	}
	return nil
}

// LoadSavedSearches replays the sidecar, keeping only the latest record per
// name and tolerating a truncated trailing line — the same semantics §6
// requires of the main log reader.
func LoadSavedSearches(basePath string) ([]SavedSearch, error) {
	path := SavedSearchPath(basePath)
	lines, err := durable.ReadAllTolerant(path)
	if err != nil {
		return nil, kgerr.Wrap(kgerr.StorageRead, err, "read saved searches at %s", path)
	}

	byName := make(map[string]SavedSearch)
	order := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		var s SavedSearch
		if err := json.Unmarshal(line, &s); err != nil {
			continue
		}
		if _, seen := byName[s.Name]; !seen {
			order = append(order, s.Name)
		}
		byName[s.Name] = s
	}

	out := make([]SavedSearch, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, nil
}
