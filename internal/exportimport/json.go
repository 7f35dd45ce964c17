package exportimport

import (
	"encoding/json"
	"io"

	"github.com/kgraph/kgcore/internal/kgerr"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

// jsonDocument is the on-the-wire structural shape: an entities array and a
// relations array, independent of the in-memory map representation so field
// order is stable and the format doesn't leak internal key types like
// kgtypes.RelationKey.
type jsonDocument struct {
	Entities  []*kgtypes.Entity   `json:"entities"`
	Relations []*kgtypes.Relation `json:"relations"`
}

// EncodeJSON writes every entity and relation in g to w as one JSON object
// (§6 import/export formats: JSON, structural round-trip).
func EncodeJSON(w io.Writer, g *kgtypes.Graph) error {
	doc := jsonDocument{
		Entities:  make([]*kgtypes.Entity, 0, len(g.Entities)),
		Relations: make([]*kgtypes.Relation, 0, len(g.Relations)),
	}
	for _, e := range g.Entities {
		doc.Entities = append(doc.Entities, e)
	}
	for _, r := range g.Relations {
		doc.Relations = append(doc.Relations, r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return kgerr.Wrap(kgerr.ExportError, err, "encode JSON export")
	}
	return nil
}

// DecodeJSON reads a JSON export document from r, enforcing the shared
// MaxInputBytes/MaxItems caps before returning the decoded Graph.
func DecodeJSON(r io.Reader) (*kgtypes.Graph, error) {
	limited := io.LimitReader(r, MaxInputBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, kgerr.Wrap(kgerr.ImportError, err, "read JSON import")
	}
	if len(data) > MaxInputBytes {
		return nil, kgerr.New(kgerr.ImportError, "JSON import exceeds %d byte cap", MaxInputBytes)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, kgerr.Wrap(kgerr.ImportError, err, "parse JSON import")
	}
	if len(doc.Entities) > MaxItems || len(doc.Relations) > MaxItems {
		return nil, kgerr.New(kgerr.ImportError, "JSON import exceeds item cap of %d", MaxItems)
	}

	g := kgtypes.NewGraph()
	for _, e := range doc.Entities {
		if e == nil || e.Name == "" {
			return nil, kgerr.New(kgerr.ImportError, "entity missing name")
		}
		g.Entities[e.Name] = e
	}
	for _, r := range doc.Relations {
		if r == nil || r.From == "" || r.To == "" || r.RelationType == "" {
			return nil, kgerr.New(kgerr.ImportError, "relation missing from/to/relationType")
		}
		g.Relations[r.Key()] = r
	}
	return g, nil
}
