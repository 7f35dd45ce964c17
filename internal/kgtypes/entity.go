// Package kgtypes defines the entity/relation data model shared across the
// knowledge-graph core: every other package imports Entity, Relation, and
// Graph from here rather than redefining them.
package kgtypes

import (
	"strings"
	"time"
)

const (
	// MaxNameLen bounds an entity name.
	MaxNameLen = 500
	// MaxEntityTypeLen bounds an entity-type string.
	MaxEntityTypeLen = 100
	// MaxObservationLen bounds a single observation string.
	MaxObservationLen = 5000
	// MaxObservations bounds the observation count per entity.
	MaxObservations = 1000
	// MaxTags bounds the tag count per entity.
	MaxTags = 50
	// MaxTagLen bounds a single tag.
	MaxTagLen = 100
	// DefaultImportance is used when an entity omits importance.
	DefaultImportance = 5
	// MinImportance and MaxImportance bound the importance rank.
	MinImportance = 0
	MaxImportance = 10
)

// Entity is a named, typed node in the knowledge graph.
type Entity struct {
	Name         string    `json:"name"`
	EntityType   string    `json:"entityType"`
	Observations []string  `json:"observations,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Importance   *int      `json:"importance,omitempty"`
	ParentID     string    `json:"parentId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// ImportanceOrDefault returns the entity's importance, or DefaultImportance
// when unset.
func (e *Entity) ImportanceOrDefault() int {
	if e.Importance == nil {
		return DefaultImportance
	}
	return *e.Importance
}

// Clone returns a deep copy, safe for a caller to mutate independently of
// the cached view.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := *e
	if e.Observations != nil {
		out.Observations = append([]string(nil), e.Observations...)
	}
	if e.Tags != nil {
		out.Tags = append([]string(nil), e.Tags...)
	}
	if e.Importance != nil {
		v := *e.Importance
		out.Importance = &v
	}
	return &out
}

// LowerFields returns the lowercase projections used by substring search and
// the word index: name, entity type, and each observation.
func (e *Entity) LowerFields() (name, entityType string, observations []string) {
	name = strings.ToLower(e.Name)
	entityType = strings.ToLower(e.EntityType)
	observations = make([]string, len(e.Observations))
	for i, o := range e.Observations {
		observations[i] = strings.ToLower(o)
	}
	return
}

// NormalizeTags returns a new slice holding each tag trimmed and lowercased,
// matching ingest-time normalisation; the input slice is left unchanged.
func NormalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return out
}
