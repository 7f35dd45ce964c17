package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/kgraph/kgcore/internal/kgerr"
)

// WriteExampleTOML emits every §6 Configuration key at its default value
// as a plain TOML file (no comments) at path, for `kg config write-example`.
// The live config itself stays YAML (matching the teacher's config.yaml);
// TOML is only used for this one-shot example, since
// BurntSushi/toml's struct-tag marshalling produces cleaner grouped
// output than hand-formatting YAML would.
func WriteExampleTOML(path string) error {
	grouped := groupedDefaults()
	f, err := os.Create(path)
	if err != nil {
		return kgerr.Wrap(kgerr.FileOperation, err, "create example config %s", path)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	enc.Indent = "  "
	if err := enc.Encode(grouped); err != nil {
		return kgerr.Wrap(kgerr.FileOperation, err, "encode example config")
	}
	return nil
}

// groupedDefaults reshapes the flat dotted-key defaults map into nested
// tables (storage.backend -> {"storage": {"backend": ...}}) so the TOML
// output reads as sectioned configuration rather than one flat table.
func groupedDefaults() map[string]any {
	root := map[string]any{}
	for key, val := range defaults {
		parts := splitKey(key)
		cur := root
		for i, part := range parts {
			if i == len(parts)-1 {
				cur[part] = val
				break
			}
			next, ok := cur[part].(map[string]any)
			if !ok {
				next = map[string]any{}
				cur[part] = next
			}
			cur = next
		}
	}
	return root
}

func splitKey(key string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			parts = append(parts, key[start:i])
			start = i + 1
		}
	}
	parts = append(parts, key[start:])
	return parts
}
