// Package codec serialises and parses the one-JSON-object-per-line entity
// and relation records that make up the durable log (§4.A). It tolerates
// missing optional fields, synthesises absent timestamps, and ignores
// unknown fields for forward compatibility.
package codec

import (
	"encoding/json"
	"time"

	"github.com/kgraph/kgcore/internal/kgerr"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

// RecordType discriminates a log line.
type RecordType string

const (
	TypeEntity   RecordType = "entity"
	TypeRelation RecordType = "relation"
)

// record is the wire shape: a superset of entity and relation fields, since
// a single line is self-describing by its "type" discriminator.
type record struct {
	Type         RecordType     `json:"type"`
	Name         string         `json:"name,omitempty"`
	EntityType   string         `json:"entityType,omitempty"`
	Observations []string       `json:"observations,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Importance   *int           `json:"importance,omitempty"`
	ParentID     string         `json:"parentId,omitempty"`
	From         string         `json:"from,omitempty"`
	To           string         `json:"to,omitempty"`
	RelationType string         `json:"relationType,omitempty"`
	Weight       *float64       `json:"weight,omitempty"`
	Confidence   *float64       `json:"confidence,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"`
	CreatedAt    *time.Time     `json:"createdAt,omitempty"`
	LastModified *time.Time     `json:"lastModified,omitempty"`
}

// EncodeEntity renders an entity as one canonical-key-order JSON line
// (without the trailing newline; callers append it via the durable writer).
func EncodeEntity(e *kgtypes.Entity) ([]byte, error) {
	r := record{
		Type:         TypeEntity,
		Name:         e.Name,
		EntityType:   e.EntityType,
		Observations: e.Observations,
		Tags:         e.Tags,
		Importance:   e.Importance,
		ParentID:     e.ParentID,
		CreatedAt:    &e.CreatedAt,
		LastModified: &e.LastModified,
	}
	return json.Marshal(r)
}

// EncodeRelation renders a relation as one JSON line.
func EncodeRelation(r *kgtypes.Relation) ([]byte, error) {
	rec := record{
		Type:         TypeRelation,
		From:         r.From,
		To:           r.To,
		RelationType: r.RelationType,
		Weight:       r.Weight,
		Confidence:   r.Confidence,
		Properties:   r.Properties,
		CreatedAt:    &r.CreatedAt,
		LastModified: &r.LastModified,
	}
	return json.Marshal(rec)
}

// Decoded is the result of parsing one line: exactly one of Entity or
// Relation is non-nil.
type Decoded struct {
	Entity   *kgtypes.Entity
	Relation *kgtypes.Relation
}

// Decode parses one log line. Missing timestamps are synthesised with now.
// Unknown fields are silently ignored by encoding/json's default behaviour.
func Decode(line []byte, now time.Time) (Decoded, error) {
	var r record
	if err := json.Unmarshal(line, &r); err != nil {
		return Decoded{}, kgerr.Wrap(kgerr.StorageCorrupted, err, "unparseable record")
	}
	created := now
	if r.CreatedAt != nil {
		created = *r.CreatedAt
	}
	modified := now
	if r.LastModified != nil {
		modified = *r.LastModified
	}
	switch r.Type {
	case TypeEntity:
		if r.Name == "" {
			return Decoded{}, kgerr.New(kgerr.StorageCorrupted, "entity record missing name")
		}
		return Decoded{Entity: &kgtypes.Entity{
			Name:         r.Name,
			EntityType:   r.EntityType,
			Observations: r.Observations,
			Tags:         r.Tags,
			Importance:   r.Importance,
			ParentID:     r.ParentID,
			CreatedAt:    created,
			LastModified: modified,
		}}, nil
	case TypeRelation:
		if r.From == "" || r.To == "" {
			return Decoded{}, kgerr.New(kgerr.StorageCorrupted, "relation record missing from/to")
		}
		return Decoded{Relation: &kgtypes.Relation{
			From:         r.From,
			To:           r.To,
			RelationType: r.RelationType,
			Weight:       r.Weight,
			Confidence:   r.Confidence,
			Properties:   r.Properties,
			CreatedAt:    created,
			LastModified: modified,
		}}, nil
	default:
		return Decoded{}, kgerr.New(kgerr.StorageCorrupted, "unknown record type %q", r.Type)
	}
}
