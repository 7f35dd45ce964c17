package kgtypes

import (
	"strings"

	"github.com/kgraph/kgcore/internal/kgerr"
)

// ValidateEntity checks the field-level invariants from §3: name/type/
// observation/tag length and count bounds, and importance range. It does
// not check name uniqueness or parent acyclicity — those require the view
// and are checked by the transaction manager (internal/txn), the latter via
// WouldCycle.
func ValidateEntity(e *Entity) error {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return kgerr.New(kgerr.ValidationFailure, "entity name must not be empty")
	}
	if len(e.Name) > MaxNameLen {
		return kgerr.New(kgerr.ValidationFailure, "entity name exceeds %d characters", MaxNameLen)
	}
	if len(e.EntityType) > MaxEntityTypeLen {
		return kgerr.New(kgerr.ValidationFailure, "entity type exceeds %d characters", MaxEntityTypeLen)
	}
	if len(e.Observations) > MaxObservations {
		return kgerr.New(kgerr.ValidationFailure, "entity has more than %d observations", MaxObservations)
	}
	for _, o := range e.Observations {
		if len(o) > MaxObservationLen {
			return kgerr.New(kgerr.ValidationFailure, "observation exceeds %d characters", MaxObservationLen)
		}
	}
	if len(e.Tags) > MaxTags {
		return kgerr.New(kgerr.ValidationFailure, "entity has more than %d tags", MaxTags)
	}
	for _, t := range e.Tags {
		if len(t) > MaxTagLen {
			return kgerr.New(kgerr.ValidationFailure, "tag exceeds %d characters", MaxTagLen)
		}
	}
	if e.Importance != nil && (*e.Importance < MinImportance || *e.Importance > MaxImportance) {
		return kgerr.New(kgerr.ValidationFailure, "importance must be in [%d,%d]", MinImportance, MaxImportance)
	}
	return nil
}

// ValidateRelation checks from/to non-empty and confidence range; weight is
// unconstrained (spec: weight ∈ ℝ).
func ValidateRelation(r *Relation) error {
	if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" {
		return kgerr.New(kgerr.ValidationFailure, "relation requires both from and to")
	}
	if strings.TrimSpace(r.RelationType) == "" {
		return kgerr.New(kgerr.ValidationFailure, "relation requires a relationType")
	}
	if r.Confidence != nil && (*r.Confidence < 0 || *r.Confidence > 1) {
		return kgerr.New(kgerr.ValidationFailure, "confidence must be in [0,1]")
	}
	return nil
}

// WouldCycle reports whether setting child's parent to parentName would make
// child its own ancestor. The walk is bounded by the view's entity count so
// a corrupted parent chain cannot loop forever.
func WouldCycle(g *Graph, childName, parentName string) bool {
	if childName == parentName {
		return true
	}
	seen := make(map[string]bool, len(g.Entities))
	cur := parentName
	for i := 0; i <= len(g.Entities); i++ {
		if cur == "" {
			return false
		}
		if cur == childName {
			return true
		}
		if seen[cur] {
			return true
		}
		seen[cur] = true
		parent, ok := g.Entities[cur]
		if !ok {
			return false
		}
		cur = parent.ParentID
	}
	return true
}
