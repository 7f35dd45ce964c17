// Package exportimport implements the exchange-only import/export
// contract (§6 "Import/export formats (exchange only, not persistence)"):
// full round-trip codecs for JSON and CSV, the two formats the spec
// describes in enough wire-level detail to implement safely, plus
// format-named stubs for GraphML/GEXF/DOT/Mermaid/Markdown (§6 lists
// these among the formats the core's encoders must support, but does not
// specify their wire shape here).
package exportimport

import (
	"github.com/kgraph/kgcore/internal/kgerr"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

// MaxInputBytes and MaxItems bound every decoder (§6: "cap input at ~10
// MiB, cap item count at ~100k... to resist pathological inputs").
const (
	MaxInputBytes = 10 * 1024 * 1024
	MaxItems      = 100_000
)

// MergeStrategy controls how Import handles a name/key collision with an
// existing entity or relation (§8 scenario 8, §9 partial-failure note).
type MergeStrategy string

const (
	// MergeFail aborts the whole import on the first conflict, leaving the
	// store untouched — all-or-nothing, like the transaction manager.
	MergeFail MergeStrategy = "fail"
	// MergeSkip leaves the existing record alone and counts the conflict.
	MergeSkip MergeStrategy = "skip"
	// MergeMerge combines the incoming record into the existing one
	// (observations/tags appended and deduplicated; scalar fields from the
	// incoming record win when set).
	MergeMerge MergeStrategy = "merge"
	// MergeReplace overwrites the existing record outright.
	MergeReplace MergeStrategy = "replace"
)

// ImportResult reports the per-item outcome of one Import call (§8
// scenario 8: "entitiesAdded=49999, entitiesSkipped=1, errors=[]").
type ImportResult struct {
	EntitiesAdded    int
	EntitiesSkipped  int
	EntitiesMerged   int
	RelationsAdded   int
	RelationsSkipped int
	RelationsMerged  int
	Errors           []string
}

// Import applies a decoded Graph onto target according to strategy,
// mutating target in place. It never touches disk; callers pair it with a
// store.Backend's AppendEntity/AppendRelation (or the transaction manager,
// for an atomic MergeFail import) to persist the result.
func Import(target *kgtypes.Graph, incoming *kgtypes.Graph, strategy MergeStrategy) (*ImportResult, error) {
	if len(incoming.Entities) > MaxItems || len(incoming.Relations) > MaxItems {
		return nil, kgerr.New(kgerr.ImportError, "import exceeds item cap of %d", MaxItems)
	}
	if strategy == MergeFail {
		for name := range incoming.Entities {
			if _, ok := target.Entities[name]; ok {
				return nil, kgerr.New(kgerr.DuplicateEntity, "entity %q already exists", name)
			}
		}
		for key := range incoming.Relations {
			if _, ok := target.Relations[key]; ok {
				return nil, kgerr.New(kgerr.DuplicateRelation, "relation %s->%s (%s) already exists", key.From, key.To, key.Type)
			}
		}
	}

	result := &ImportResult{}
	for name, e := range incoming.Entities {
		if err := importEntity(target, name, e, strategy, result); err != nil {
			if strategy == MergeFail {
				return nil, err
			}
			result.Errors = append(result.Errors, err.Error())
		}
	}
	for key, r := range incoming.Relations {
		if err := importRelation(target, key, r, strategy, result); err != nil {
			if strategy == MergeFail {
				return nil, err
			}
			result.Errors = append(result.Errors, err.Error())
		}
	}
	return result, nil
}

func importEntity(target *kgtypes.Graph, name string, e *kgtypes.Entity, strategy MergeStrategy, result *ImportResult) error {
	existing, conflict := target.Entities[name]
	if !conflict {
		target.Entities[name] = e.Clone()
		result.EntitiesAdded++
		return nil
	}
	switch strategy {
	case MergeFail:
		return kgerr.New(kgerr.DuplicateEntity, "entity %q already exists", name)
	case MergeSkip:
		result.EntitiesSkipped++
		return nil
	case MergeReplace:
		target.Entities[name] = e.Clone()
		result.EntitiesMerged++
		return nil
	case MergeMerge:
		target.Entities[name] = mergeEntities(existing, e)
		result.EntitiesMerged++
		return nil
	default:
		return kgerr.New(kgerr.ImportError, "unknown merge strategy %q", strategy)
	}
}

func mergeEntities(existing, incoming *kgtypes.Entity) *kgtypes.Entity {
	out := existing.Clone()
	out.Observations = dedupAppend(out.Observations, incoming.Observations)
	out.Tags = dedupAppend(out.Tags, incoming.Tags)
	if incoming.EntityType != "" {
		out.EntityType = incoming.EntityType
	}
	if incoming.Importance != nil {
		v := *incoming.Importance
		out.Importance = &v
	}
	if incoming.ParentID != "" {
		out.ParentID = incoming.ParentID
	}
	out.LastModified = incoming.LastModified
	return out
}

func dedupAppend(base, add []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, v := range base {
		seen[v] = struct{}{}
	}
	out := append([]string(nil), base...)
	for _, v := range add {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func importRelation(target *kgtypes.Graph, key kgtypes.RelationKey, r *kgtypes.Relation, strategy MergeStrategy, result *ImportResult) error {
	_, conflict := target.Relations[key]
	if !conflict {
		target.Relations[key] = r.Clone()
		result.RelationsAdded++
		return nil
	}
	switch strategy {
	case MergeFail:
		return kgerr.New(kgerr.DuplicateRelation, "relation %s->%s (%s) already exists", key.From, key.To, key.Type)
	case MergeSkip:
		result.RelationsSkipped++
		return nil
	case MergeReplace, MergeMerge:
		// Relations have no free-text fields worth merging field-by-field;
		// both strategies converge on taking the incoming record.
		target.Relations[key] = r.Clone()
		result.RelationsMerged++
		return nil
	default:
		return kgerr.New(kgerr.ImportError, "unknown merge strategy %q", strategy)
	}
}
